package config

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NewLogger builds the root zerolog logger from cfg and installs it as
// the process-wide default. Format "console" (or "text") selects
// human-readable output; anything else emits JSON.
func NewLogger(cfg LoggingConfig) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	logger := zerolog.New(logDestination(cfg.Format)).
		Level(logLevel(cfg.Level)).
		With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// logLevel maps a configured level name to a zerolog level. Unknown
// names fall back to info.
func logLevel(name string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

func logDestination(format string) io.Writer {
	switch strings.ToLower(format) {
	case "console", "text":
		return zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return os.Stdout
}
