package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lecturenotes/internal/config"

	"github.com/sirupsen/logrus"
)

func TestConfigureWritesJSONToLogFile(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Default()
	cfg.Paths.StateDir = dir
	cfg.Paths.DataDir = filepath.Join(dir, "data")
	cfg.Paths.AudioDir = filepath.Join(dir, "data", "audio")
	cfg.Paths.DBPath = filepath.Join(dir, "data", "lectures.db")
	cfg.Paths.LogPath = filepath.Join(dir, "logs", "lecturenotes.log")
	cfg.Logging.Format = "json"
	cfg.Logging.Level = "warn"

	logger, err := Configure(cfg)
	if err != nil {
		t.Fatalf("configure: %v", err)
	}
	if logger.GetLevel() != logrus.WarnLevel {
		t.Fatalf("expected warn level, got %s", logger.GetLevel())
	}
	logger.Info("hidden")
	logger.WithField("lecture", "abc").Warn("visible")

	data, err := os.ReadFile(cfg.Paths.LogPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered: %s", out)
	}
	if !strings.Contains(out, `"lecture":"abc"`) {
		t.Fatalf("expected json field in log: %s", out)
	}
}

func TestRotatorFallsBackToDefaults(t *testing.T) {
	cfg, _ := config.Default()
	cfg.Paths.LogPath = filepath.Join(t.TempDir(), "x.log")
	cfg.Logging.MaxSizeMB = 0
	cfg.Logging.MaxBackups = 7

	r := Rotator(cfg)
	if r.Filename != cfg.Paths.LogPath || r.MaxSize != 20 || r.MaxBackups != 7 || r.MaxAge != 30 {
		t.Fatalf("unexpected rotator: %+v", r)
	}
}

func TestNewConsoleKeepsQuietUnlessDebug(t *testing.T) {
	cfg, _ := config.Default()
	cfg.Logging.Level = "info"
	if got := NewConsole(cfg).GetLevel(); got != logrus.WarnLevel {
		t.Fatalf("expected warn, got %s", got)
	}
	cfg.Logging.Level = "debug"
	if got := NewConsole(cfg).GetLevel(); got != logrus.DebugLevel {
		t.Fatalf("expected debug, got %s", got)
	}
}
