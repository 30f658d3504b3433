// Package main provides the CLI entrypoint for typeduelz.
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/typeduelz/internal/audio"
	"github.com/verte-zerg/typeduelz/internal/config"
	"github.com/verte-zerg/typeduelz/internal/engine"
	"github.com/verte-zerg/typeduelz/internal/model"
	"github.com/verte-zerg/typeduelz/internal/sentences"
	"github.com/verte-zerg/typeduelz/internal/stats"
	"github.com/verte-zerg/typeduelz/internal/statsui"
	"github.com/verte-zerg/typeduelz/internal/store"
	"github.com/verte-zerg/typeduelz/internal/tui"
)

const (
	defaultDifficulty  = model.Medium
	defaultMode        = model.Solo
	defaultCurveWindow = 5
)

var (
	logLevelFlag string

	practiceDifficulty string
	practiceMode       string
	practiceCharacter  string
	practiceNoSound    bool

	statsDifficulty  string
	statsMode        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool

	sentencesDifficulty string

	resetYes bool
)

// Populated by the root PersistentPreRunE.
var (
	fileCfg config.FileConfig
	logger  = zerolog.Nop()
	level   = zerolog.InfoLevel
)

func main() {
	if err := config.LoadEnv(); err != nil {
		logErrf("%v\n", err)
	}
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "typeduelz",
		Short:             "Sentence typing practice with solo and duel modes",
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: setup,
		RunE:              runPracticeCmd,
	}

	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.Flags().StringVar(&practiceDifficulty, "difficulty", string(defaultDifficulty), "sentence difficulty (easy, medium, hard)")
	rootCmd.Flags().StringVar(&practiceMode, "mode", string(defaultMode), "validation mode (solo, duel)")
	rootCmd.Flags().StringVar(&practiceCharacter, "character", "", "equipped character (default-typer, pro)")
	rootCmd.Flags().BoolVar(&practiceNoSound, "no-sound", false, "disable audio cues")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newSentencesCmd())
	rootCmd.AddCommand(newResetCmd())

	return rootCmd
}

func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	fileCfg = loaded
	level, err = resolveLogLevel(logLevelFlag, fileCfg.Log.Level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)
	logger = newConsoleLogger(cmd.ErrOrStderr(), level)
	return nil
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	applyStringConfig(cmd, "difficulty", &practiceDifficulty, fileCfg.Practice.Difficulty)
	applyStringConfig(cmd, "mode", &practiceMode, fileCfg.Practice.Mode)
	applyStringConfig(cmd, "character", &practiceCharacter, fileCfg.Practice.Character)

	cfg, err := parsePracticeConfig(practiceDifficulty, practiceMode, practiceCharacter)
	if err != nil {
		return err
	}

	corpus, err := sentences.LoadCorpus(config.DefaultSentencesPath())
	if err != nil {
		return fmt.Errorf("failed to load sentences: %w", err)
	}
	bank := sentences.NewWithSource(rand.NewSource(time.Now().UnixNano()), corpus)

	// The TUI owns the terminal, so logs go to a file from here on.
	fileLogger, closeLog, err := openFileLogger(config.DefaultLogPath(), level)
	if err != nil {
		logger.Warn().Err(err).Msg("logging disabled while practicing")
	}
	defer closeLog()
	logger = fileLogger

	var progression engine.ProgressionStore
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		logger.Warn().Err(err).Str("path", config.DefaultDBPath()).Msg("failed to open db; progress will not be saved")
	} else {
		progression = st
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logger.Warn().Err(cerr).Msg("failed to close db")
			}
		}()
	}

	player := audio.NewPlayer(soundConfig(fileCfg.Sound, practiceNoSound), os.Stderr, logger)
	defer player.Wait()

	ctrl, err := engine.NewController(context.Background(), engine.Deps{
		Sentences: bank,
		Store:     progression,
		Audio:     player,
		Logger:    &logger,
	})
	if err != nil {
		return err
	}
	m, err := tui.NewModel(ctrl, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to start attempt: %w", err)
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func parsePracticeConfig(difficulty, mode, character string) (model.Config, error) {
	d, err := model.ParseDifficulty(difficulty)
	if err != nil {
		return model.Config{}, fmt.Errorf("--difficulty: %w", err)
	}
	m, err := model.ParseMode(mode)
	if err != nil {
		return model.Config{}, fmt.Errorf("--mode: %w", err)
	}
	c, err := model.ParseCharacter(character)
	if err != nil {
		return model.Config{}, fmt.Errorf("--character: %w", err)
	}
	return model.Config{Difficulty: d, Mode: m, Character: c}, nil
}

func soundConfig(sc config.SoundConfig, disabled bool) audio.Config {
	cfg := audio.Config{Enabled: true}
	if sc.Enabled != nil {
		cfg.Enabled = *sc.Enabled
	}
	if disabled {
		cfg.Enabled = false
	}
	if sc.TypingCmd != nil {
		cfg.TypingCmd = *sc.TypingCmd
	}
	if sc.ErrorCmd != nil {
		cfg.ErrorCmd = *sc.ErrorCmd
	}
	if sc.ClickCmd != nil {
		cfg.ClickCmd = *sc.ClickCmd
	}
	return cfg
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := writeConfigTemplate(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// writeConfigTemplate creates the config file unless it already exists.
func writeConfigTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	logger.Info().Str("path", path).Msg("created config file")
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show progress stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsDifficulty, "difficulty", "", "difficulty filter (easy, medium, hard)")
	cmd.Flags().StringVar(&statsMode, "mode", "", "mode filter (solo, duel)")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N attempts")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the interactive view")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := parseStatsConfig(statsDifficulty, statsMode, statsSince, statsLast, statsCurveWindow)
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("failed to close db")
		}
	}()

	out := cmd.OutOrStdout()
	if statsPlain || !stats.IsTerminal(out) {
		report, err := stats.BuildReport(cmd.Context(), st, cfg)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		width := 0
		if f, ok := out.(*os.File); ok && stats.IsTerminal(out) {
			width = stats.TerminalWidth(f)
		}
		return stats.RenderReport(out, report, cfg.CurveWindow, width, stats.ShouldUseColor(out))
	}

	program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func parseStatsConfig(difficulty, mode, since string, last, window int) (model.StatsConfig, error) {
	cfg := model.StatsConfig{Last: last, CurveWindow: window}
	if difficulty != "" {
		d, err := model.ParseDifficulty(difficulty)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("--difficulty: %w", err)
		}
		cfg.Difficulty = d
	}
	if mode != "" {
		m, err := model.ParseMode(mode)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("--mode: %w", err)
		}
		cfg.Mode = m
	}
	if since != "" {
		parsed, err := time.ParseInLocation("2006-01-02", since, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		cfg.Since = &parsed
	}
	if last < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if window < 1 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be >= 1")
	}
	return cfg, nil
}

func newSentencesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sentences",
		Short: "List the sentence corpus",
		Args:  cobra.NoArgs,
		RunE:  runSentencesCmd,
	}
	cmd.Flags().StringVar(&sentencesDifficulty, "difficulty", "", "only list one difficulty")
	return cmd
}

func runSentencesCmd(cmd *cobra.Command, _ []string) error {
	tiers := model.Difficulties
	if sentencesDifficulty != "" {
		d, err := model.ParseDifficulty(sentencesDifficulty)
		if err != nil {
			return fmt.Errorf("--difficulty: %w", err)
		}
		tiers = []model.Difficulty{d}
	}
	corpus, err := sentences.LoadCorpus(config.DefaultSentencesPath())
	if err != nil {
		return fmt.Errorf("failed to load sentences: %w", err)
	}
	bank := sentences.NewWithSource(rand.NewSource(1), corpus)
	out := cmd.OutOrStdout()
	for _, d := range tiers {
		if _, err := fmt.Fprintf(out, "%s (goal %d WPM)\n", d, engine.GoalWPM(d)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		for _, s := range bank.List(d) {
			if _, err := fmt.Fprintf(out, "  %s\n", s); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
	}
	return nil
}

var errResetNotConfirmed = errors.New("refusing to reset progress without --yes")

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete skill level, duel points and attempt history",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().BoolVar(&resetYes, "yes", false, "confirm the reset")
	return cmd
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	if !resetYes {
		return errResetNotConfirmed
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("failed to close db")
		}
	}()
	if err := st.Reset(cmd.Context()); err != nil {
		return err
	}
	logger.Info().Msg("progress reset")
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# typeduelz configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# difficulty = %q        # easy, medium or hard
# mode = %q                # solo or duel
# character = ""              # default-typer (one skip per sentence) or pro (easier duel sentences)

[sound]
# enabled = true
# typing-cmd = ""             # command run on each accepted key, e.g. "paplay /path/to/key.wav"
# error-cmd = ""              # empty rings the terminal bell
# click-cmd = ""

[log]
# level = %q               # trace, debug, info, warn or error
`,
		defaultDifficulty,
		defaultMode,
		defaultLogLevel,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
