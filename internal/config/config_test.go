package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnvOverrides(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	cfg.Paths.ConfigPath = "/tmp/config" // avoid creation

	t.Setenv("LECTURENOTES_ADDR", "0.0.0.0:9000")
	t.Setenv("LECTURENOTES_LLM_MODEL", "mistral")
	t.Setenv("LECTURENOTES_LOG_LEVEL", "debug")
	t.Setenv("LECTURENOTES_LOG_FORMAT", "json")

	applyEnvOverrides(cfg)

	if cfg.Server.Addr != "0.0.0.0:9000" {
		t.Fatalf("addr override failed: %q", cfg.Server.Addr)
	}
	if cfg.LLM.Model != "mistral" {
		t.Fatalf("llm model override failed: %q", cfg.LLM.Model)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("logging overrides failed: %+v", cfg.Logging)
	}
}

func TestDefaultsPointAtLocalServices(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if cfg.LLM.Model != "tinyllama" || cfg.LLM.BaseURL != "http://localhost:11434" {
		t.Fatalf("unexpected llm defaults: %+v", cfg.LLM)
	}
	if cfg.Client.APIBase != "http://127.0.0.1:8000/api" {
		t.Fatalf("unexpected api base %q", cfg.Client.APIBase)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg, err := Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	cfg.LLM.Model = "phi"
	cfg.Hooks = []HookConfig{{Events: []string{EventCompleted}, Command: "/bin/echo"}}

	if err := Save(cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.LLM.Model != "phi" {
		t.Fatalf("expected llm model to persist, got %q", loaded.LLM.Model)
	}
	if len(loaded.Hooks) != 1 || loaded.Hooks[0].Command != "/bin/echo" {
		t.Fatalf("expected hooks to persist: %+v", loaded.Hooks)
	}
	if loaded.Paths.ConfigPath != path {
		t.Fatalf("config path not recorded: %q", loaded.Paths.ConfigPath)
	}
}

func TestLoadWritesTemplateWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if _, err := Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected template to be written: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"workers", func(c *Config) { c.Pipeline.Workers = 0 }},
		{"frame", func(c *Config) { c.Audio.FrameMS = 25 }},
		{"rate", func(c *Config) { c.Audio.SampleRate = 44100 }},
		{"backend", func(c *Config) { c.LLM.Backend = "openai" }},
		{"hook event", func(c *Config) { c.Hooks = []HookConfig{{Events: []string{"uploaded"}}} }},
	}
	for _, tc := range cases {
		cfg, _ := Default()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}
