// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultMaxSizeMB  = 50
	defaultMaxBackups = 5
	defaultMaxAgeDays = 30
)

// Config selects the log level and optional file output.
type Config struct {
	Level  string
	File   string
	Pretty bool
}

// Setup installs the global logger and returns a closer for the log file,
// if any.
func Setup(cfg Config) io.Closer {
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339

	var console io.Writer = os.Stderr
	if cfg.Pretty {
		console = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}

	var closer io.Closer = nopCloser{}
	writer := console
	if cfg.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    defaultMaxSizeMB,
			MaxBackups: defaultMaxBackups,
			MaxAge:     defaultMaxAgeDays,
			Compress:   true,
		}
		writer = zerolog.MultiLevelWriter(console, rotating)
		closer = rotating
	}

	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
	return closer
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
