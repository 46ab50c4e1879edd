// Package logging configures the process-wide structured logger.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Init configures the package logger. Safe to call multiple times; only the
// first call takes effect, matching the teacher's singleton-logger pattern.
func Init(levelStr, logPath string) {
	once.Do(func() {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

		var out io.Writer = os.Stdout
		if logPath != "" {
			if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
				out = io.MultiWriter(os.Stdout, f)
			}
		}

		level := zerolog.InfoLevel
		if lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(levelStr))); err == nil && levelStr != "" {
			level = lvl
		}

		logger = zerolog.New(out).Level(level).With().Timestamp().Caller().Logger()
	})
}

// L returns the process-wide logger, initializing it with defaults if Init
// was never called (useful for tests).
func L() zerolog.Logger {
	once.Do(func() {
		logger = zerolog.New(os.Stdout).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	})
	return logger
}

// Component returns a child logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return L().With().Str("component", name).Logger()
}
