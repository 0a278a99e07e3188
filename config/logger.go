package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// ParseLevel parses a zerolog level name. Empty input yields info.
func ParseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.InfoLevel, nil
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("unknown log level '%s'", level)
	}

	return lvl, nil
}

// NewLogger builds the application logger writing to stderr.
func NewLogger(c LogConfig) zerolog.Logger {
	return newLogger(c, os.Stderr)
}

func newLogger(c LogConfig, w io.Writer) zerolog.Logger {
	lvl, err := ParseLevel(c.Level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	if c.Format != FormatJSON {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}
