// Package testsupport builds isolated configs and stores for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"lecturenotes/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config rooted in a fresh temp directory.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Paths.StateDir = base
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.AudioDir = filepath.Join(base, "data", "audio")
	cfg.Paths.DBPath = filepath.Join(base, "data", "lectures.db")
	cfg.Paths.LogPath = filepath.Join(base, "lecturenotes.log")
	cfg.Paths.PidPath = filepath.Join(base, "lecturenotes.pid")
	cfg.Paths.SocketPath = filepath.Join(base, "ln.sock")
	cfg.Paths.LockPath = filepath.Join(base, "lecturenotes.lock")
	cfg.Paths.ConfigPath = filepath.Join(base, "config.toml")

	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithQueueSize overrides the pipeline queue capacity.
func WithQueueSize(n int) ConfigOption {
	return func(c *config.Config) {
		c.Pipeline.QueueSize = n
	}
}
