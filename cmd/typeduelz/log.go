package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/typeduelz/internal/config"
)

const defaultLogLevel = "info"

// resolveLogLevel picks the level from the flag, then the environment, then the
// config file.
func resolveLogLevel(flagValue string, fileValue *string) (zerolog.Level, error) {
	raw := strings.TrimSpace(flagValue)
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv(config.EnvLogLevel))
	}
	if raw == "" && fileValue != nil {
		raw = strings.TrimSpace(*fileValue)
	}
	if raw == "" {
		raw = defaultLogLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", raw, err)
	}
	return level, nil
}

func newConsoleLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// openFileLogger appends JSON logs to path. The returned close func is safe to defer.
func openFileLogger(path string, level zerolog.Level) (zerolog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), func() {}, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), func() {}, fmt.Errorf("failed to open log file: %w", err)
	}
	closeFn := func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close of the log file.
			_ = cerr
		}
	}
	return zerolog.New(f).Level(level).With().Timestamp().Logger(), closeFn, nil
}
