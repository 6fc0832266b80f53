// Package logging builds the logrus loggers used by the server and the CLI.
package logging

import (
	"io"
	"os"
	"strings"

	"lecturenotes/internal/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Configure returns the server logger: formatted per logging.format, written
// to a rotating paths.log_path and optionally mirrored to stdout.
func Configure(cfg *config.Config) (*logrus.Logger, error) {
	if err := config.MustStatePaths(cfg); err != nil {
		return nil, err
	}
	logger := logrus.New()
	logger.SetFormatter(formatter(cfg.Logging.Format, true))
	logger.SetLevel(level(cfg.Logging.Level, logrus.InfoLevel))

	var out io.Writer = Rotator(cfg)
	if cfg.Logging.Stdout {
		out = io.MultiWriter(os.Stdout, out)
	}
	logger.SetOutput(out)
	return logger, nil
}

// Rotator returns the lumberjack writer behind paths.log_path.
func Rotator(cfg *config.Config) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   cfg.Paths.LogPath,
		MaxSize:    positive(cfg.Logging.MaxSizeMB, 20),
		MaxBackups: positive(cfg.Logging.MaxBackups, 3),
		MaxAge:     positive(cfg.Logging.MaxAgeDays, 30),
	}
}

// NewConsole returns a logger writing to stderr for short-lived client commands.
// Only warnings surface unless the config asks for debug output.
func NewConsole(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(formatter(cfg.Logging.Format, false))
	logger.SetLevel(logrus.WarnLevel)
	if lvl := level(cfg.Logging.Level, logrus.WarnLevel); lvl >= logrus.DebugLevel {
		logger.SetLevel(lvl)
	}
	return logger
}

// NewTestLogger discards output.
func NewTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.DebugLevel)
	return logger
}

func formatter(format string, timestamps bool) logrus.Formatter {
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return &logrus.JSONFormatter{DisableTimestamp: !timestamps}
	}
	return &logrus.TextFormatter{FullTimestamp: timestamps, DisableTimestamp: !timestamps}
}

func level(name string, fallback logrus.Level) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return fallback
	}
	return lvl
}

func positive(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
