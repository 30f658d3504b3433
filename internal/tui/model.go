// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/stopwatch"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/typeduelz/internal/engine"
	"github.com/verte-zerg/typeduelz/internal/model"
)

// returnHomeMsg fires after a finished attempt has been shown long enough.
type returnHomeMsg struct {
	seq int
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	ctrl *engine.Controller
	cfg  model.Config
	log  zerolog.Logger

	keys    keyMap
	help    help.Model
	timer   stopwatch.Model
	hitBar  progress.Model
	missBar progress.Model

	width  int
	height int

	status string
	// seq invalidates return ticks scheduled for earlier attempts.
	seq int
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	resultStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// NewModel constructs a typing TUI model and starts the first attempt.
func NewModel(ctrl *engine.Controller, cfg model.Config, log zerolog.Logger) (*Model, error) {
	m := &Model{
		ctrl:    ctrl,
		cfg:     cfg,
		log:     log.With().Str("component", "tui").Logger(),
		keys:    defaultKeyMap(),
		help:    help.New(),
		timer:   stopwatch.NewWithInterval(100 * time.Millisecond),
		hitBar:  progress.New(progress.WithSolidFill("#52C41A"), progress.WithoutPercentage()),
		missBar: progress.New(progress.WithSolidFill("#C89A3A"), progress.WithoutPercentage()),
	}
	if err := ctrl.StartAttempt(cfg.Difficulty, cfg.Mode, cfg.Character); err != nil {
		return nil, err
	}
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.timer.Init()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		barWidth := min(40, max(10, msg.Width/3))
		m.hitBar.Width = barWidth
		m.missBar.Width = barWidth
		return m, nil
	case returnHomeMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		return m, m.restart()
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		var cmd tea.Cmd
		m.timer, cmd = m.timer.Update(msg)
		return m, cmd
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Restart):
		m.ctrl.Click()
		return m, m.restart()
	case key.Matches(msg, m.keys.Difficulty):
		m.cfg.Difficulty = m.cfg.Difficulty.Next()
		m.ctrl.Click()
		return m, m.restart()
	case key.Matches(msg, m.keys.Mode):
		if m.cfg.Mode == model.Solo {
			m.cfg.Mode = model.Duel
		} else {
			m.cfg.Mode = model.Solo
		}
		m.ctrl.Click()
		return m, m.restart()
	case key.Matches(msg, m.keys.Character):
		m.cfg.Character = m.cfg.Character.Next()
		m.ctrl.Click()
		return m, m.restart()
	case key.Matches(msg, m.keys.Skip):
		return m, m.apply(m.ctrl.RequestSkip())
	}

	switch msg.Type {
	case tea.KeyBackspace, tea.KeyDelete:
		_, typed := m.ctrl.Runes()
		if len(typed) == 0 {
			return m, nil
		}
		return m, m.apply(m.ctrl.ProposeInput(string(typed[:len(typed)-1])))
	case tea.KeySpace:
		return m, m.apply(m.ctrl.TypeRune(' '))
	case tea.KeyRunes:
		if msg.Paste {
			_, typed := m.ctrl.Runes()
			return m, m.apply(m.ctrl.ProposeInput(string(typed) + string(msg.Runes)))
		}
		return m, m.handleRunes(msg.Runes)
	}
	return m, nil
}

// handleRunes feeds runes one at a time, stopping at the first rejection.
func (m *Model) handleRunes(runes []rune) tea.Cmd {
	for _, r := range runes {
		res := m.ctrl.TypeRune(r)
		if !res.Accepted || res.Completion != nil {
			return m.apply(res)
		}
	}
	m.status = ""
	return nil
}

func (m *Model) apply(res engine.Result) tea.Cmd {
	if !res.Accepted {
		m.status = rejectionText(res.Reason, m.ctrl.Skip())
		return nil
	}
	m.status = ""
	if res.Completion == nil {
		return nil
	}
	seq := m.seq
	return tea.Batch(
		m.timer.Stop(),
		tea.Tick(res.Completion.ReturnAfter, func(time.Time) tea.Msg {
			return returnHomeMsg{seq: seq}
		}),
	)
}

func (m *Model) restart() tea.Cmd {
	m.seq++
	m.status = ""
	if err := m.ctrl.StartAttempt(m.cfg.Difficulty, m.cfg.Mode, m.cfg.Character); err != nil {
		m.log.Error().Err(err).Msg("failed to start attempt")
		m.status = "Could not start a new attempt."
		return nil
	}
	return tea.Sequence(m.timer.Reset(), m.timer.Start())
}

func rejectionText(reason error, skip engine.SkipAbility) string {
	switch {
	case errors.Is(reason, engine.ErrDeletion), errors.Is(reason, engine.ErrRewrite):
		return "No going back."
	case errors.Is(reason, engine.ErrMultipleRunes):
		return "One key at a time."
	case errors.Is(reason, engine.ErrSkipExhausted):
		if skip.MaxUses == 0 {
			return "No skip ability."
		}
		return "Skip already used."
	case errors.Is(reason, engine.ErrSkipRefused):
		return "Cannot skip here."
	}
	return ""
}

// View implements tea.Model.
func (m *Model) View() string {
	target, typed := m.ctrl.Runes()
	if len(target) == 0 {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return renderSentence(target, typed, 0)
	}
	contentWidth := max(1, int(float64(m.width)*0.70))
	sections := []string{m.renderHeader(), "", renderSentence(target, typed, contentWidth), ""}
	if panel := m.renderResult(); panel != "" {
		sections = append(sections, panel)
	} else {
		sections = append(sections, m.renderFooter())
	}
	if m.status != "" {
		sections = append(sections, statusStyle.Render(m.status))
	}
	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	helpLine := m.help.View(m.keys)
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	return body + "\n" + lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, helpLine)
}

func (m *Model) renderHeader() string {
	segments := []string{string(m.cfg.Difficulty), string(m.cfg.Mode), m.cfg.Character.Label()}
	if attempt, ok := m.ctrl.Attempt(); ok && attempt.Difficulty != attempt.BaseDifficulty {
		segments[0] = fmt.Sprintf("%s (eased to %s)", attempt.BaseDifficulty, attempt.Difficulty)
	}
	progress := m.ctrl.Progress()
	segments = append(segments, fmt.Sprintf("Skill %d", progress.SkillLevel), fmt.Sprintf("Duel pts %d", progress.DuelPoints))
	avg := "N/A"
	if acc, ok := m.ctrl.AverageAccuracy(); ok {
		avg = fmt.Sprintf("%d%%", acc)
	}
	segments = append(segments, "Avg acc "+avg)
	if !m.ctrl.Persistent() {
		segments = append(segments, "memory only")
	}
	return headerStyle.Render(strings.Join(segments, " · "))
}

func (m *Model) renderFooter() string {
	target, typed := m.ctrl.Runes()
	if len(target) == 0 {
		return ""
	}
	pct := int(float64(len(typed)) / float64(len(target)) * 100)
	score := m.ctrl.Score()
	segments := []string{
		fmt.Sprintf("Progress %d%%", pct),
		fmt.Sprintf("Accuracy %d%%", score.Accuracy),
		formatElapsed(m.timer.Elapsed()),
	}
	if skip := m.ctrl.Skip(); skip.MaxUses > 0 {
		segments = append(segments, fmt.Sprintf("Skips %d/%d", skip.Remaining(), skip.MaxUses))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) renderResult() string {
	c, ok := m.ctrl.Completion()
	if !ok {
		return ""
	}
	bar := m.missBar
	verdict := fmt.Sprintf("%d WPM to go for the %d WPM goal", c.GoalWPM-c.WPM, c.GoalWPM)
	if c.GoalMet {
		bar = m.hitBar
		verdict = fmt.Sprintf("Goal of %d WPM reached", c.GoalWPM)
	}
	lines := []string{
		resultStyle.Render(fmt.Sprintf("%d WPM · %d%% accuracy · %s", c.WPM, c.Accuracy, formatElapsed(c.Elapsed))),
		bar.ViewAs(c.GoalProgress),
		footerStyle.Render(verdict),
	}
	if c.DuelPointWon {
		lines = append(lines, footerStyle.Render("+1 duel point"))
	}
	if !c.Saved {
		lines = append(lines, footerStyle.Render("Progress not saved."))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func formatElapsed(d time.Duration) string {
	d = d.Round(100 * time.Millisecond)
	minutes := int(d / time.Minute)
	seconds := float64(d%time.Minute) / float64(time.Second)
	return fmt.Sprintf("%02d:%04.1f", minutes, seconds)
}
