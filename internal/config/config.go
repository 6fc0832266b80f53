package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultAddr          = "127.0.0.1:8000"
	DefaultLLMModel      = "tinyllama"
	DefaultLLMURL        = "http://localhost:11434"
	defaultStatusTail    = 10
	defaultQueueSize     = 16
	defaultMaxUploadMB   = 512
	defaultStateDirLinux = ".local/state/lecturenotes"
	defaultConfigDir     = ".config/lecturenotes"
)

// Config holds user configuration loaded from TOML.
type Config struct {
	Server struct {
		Addr            string `toml:"addr"`
		MaxUploadMB     int    `toml:"max_upload_mb"`
		ReadTimeoutSec  int    `toml:"read_timeout_sec"`
		WriteTimeoutSec int    `toml:"write_timeout_sec"`
	} `toml:"server"`

	ASR struct {
		ModelPath string `toml:"model_path"`
		Language  string `toml:"language"` // auto or ISO code
		Threads   int    `toml:"threads"`
		FFmpeg    string `toml:"ffmpeg"`
	} `toml:"asr"`

	LLM struct {
		Backend            string  `toml:"backend"` // ollama
		BaseURL            string  `toml:"base_url"`
		Model              string  `toml:"model"`
		TimeoutSec         int     `toml:"timeout_sec"`
		MaxTranscriptChars int     `toml:"max_transcript_chars"`
		Temperature        float64 `toml:"temperature"`
	} `toml:"llm"`

	Pipeline struct {
		Workers   int `toml:"workers"`
		QueueSize int `toml:"queue_size"`
	} `toml:"pipeline"`

	Audio struct {
		DeviceName string `toml:"device_name"`
		SampleRate int    `toml:"sample_rate"`
		Channels   int    `toml:"channels"`
		FrameMS    int    `toml:"frame_ms"`
	} `toml:"audio"`

	VAD struct {
		Aggressiveness int `toml:"aggressiveness"`
	} `toml:"vad"`

	Client struct {
		APIBase        string `toml:"api_base"`
		PollIntervalMS int    `toml:"poll_interval_ms"`
	} `toml:"client"`

	Logging struct {
		Level  string `toml:"level"`  // debug, info, warn, error
		Format string `toml:"format"` // text, json
		Stdout bool   `toml:"stdout"`
		// rotation of paths.log_path
		MaxSizeMB  int `toml:"max_size_mb"`
		MaxBackups int `toml:"max_backups"`
		MaxAgeDays int `toml:"max_age_days"`
	} `toml:"logging"`

	Paths struct {
		StateDir   string `toml:"state_dir"`
		DataDir    string `toml:"data_dir"`
		AudioDir   string `toml:"audio_dir"`
		DBPath     string `toml:"db_path"`
		LogPath    string `toml:"log_path"`
		PidPath    string `toml:"pid_path"`
		SocketPath string `toml:"socket_path"`
		LockPath   string `toml:"lock_path"`
		ConfigPath string `toml:"-"`
	} `toml:"paths"`

	UI struct {
		StatusTail int `toml:"status_tail"`
	} `toml:"ui"`

	Hooks []HookConfig `toml:"hooks"`
}

// Default returns Config populated with defaults.
func Default() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	stateDir := filepath.Join(home, defaultStateDirLinux)
	// macOS prefers ~/Library/Application Support/lecturenotes
	if isMac() {
		stateDir = filepath.Join(home, "Library", "Application Support", "lecturenotes")
	}
	dataDir := filepath.Join(stateDir, "data")

	cfg := &Config{}

	cfg.Server.Addr = DefaultAddr
	cfg.Server.MaxUploadMB = defaultMaxUploadMB
	cfg.Server.ReadTimeoutSec = 300
	cfg.Server.WriteTimeoutSec = 900

	cfg.ASR.ModelPath = filepath.Join(stateDir, "models", "ggml-small-q5_1.bin")
	cfg.ASR.Language = "auto"
	cfg.ASR.Threads = runtime.NumCPU()
	cfg.ASR.FFmpeg = "ffmpeg"

	cfg.LLM.Backend = "ollama"
	cfg.LLM.BaseURL = DefaultLLMURL
	cfg.LLM.Model = DefaultLLMModel
	cfg.LLM.TimeoutSec = 600
	cfg.LLM.MaxTranscriptChars = 24000
	cfg.LLM.Temperature = 0.2

	cfg.Pipeline.Workers = 1
	cfg.Pipeline.QueueSize = defaultQueueSize

	cfg.Audio.SampleRate = 16000
	cfg.Audio.Channels = 1
	cfg.Audio.FrameMS = 20

	cfg.VAD.Aggressiveness = 2

	cfg.Client.APIBase = "http://" + DefaultAddr + "/api"
	cfg.Client.PollIntervalMS = 2000

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"
	cfg.Logging.MaxSizeMB = 20
	cfg.Logging.MaxBackups = 3
	cfg.Logging.MaxAgeDays = 30

	cfg.Paths.StateDir = stateDir
	cfg.Paths.DataDir = dataDir
	cfg.Paths.AudioDir = filepath.Join(dataDir, "audio")
	cfg.Paths.DBPath = filepath.Join(dataDir, "lectures.db")
	cfg.Paths.LogPath = filepath.Join(stateDir, "lecturenotes.log")
	cfg.Paths.PidPath = filepath.Join(stateDir, "lecturenotes.pid")
	cfg.Paths.SocketPath = filepath.Join(stateDir, "lecturenotes.sock")
	cfg.Paths.LockPath = filepath.Join(stateDir, "lecturenotes.lock")

	cfg.UI.StatusTail = defaultStatusTail

	return cfg, nil
}

// Load loads config from file, applying defaults.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path == "" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, defaultConfigDir, "config.toml")
	}

	// Read if exists; otherwise write template.
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := Save(cfg, path); err != nil {
				return nil, err
			}
			cfg.Paths.ConfigPath = path
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Paths.ConfigPath = path
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o600)
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server.addr is required")
	}
	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("pipeline.workers must be >= 1 (got %d)", c.Pipeline.Workers)
	}
	if c.Pipeline.QueueSize < 1 {
		return fmt.Errorf("pipeline.queue_size must be >= 1 (got %d)", c.Pipeline.QueueSize)
	}
	if c.Audio.Channels != 1 {
		return fmt.Errorf("only mono input supported; set audio.channels = 1")
	}
	switch c.Audio.FrameMS {
	case 10, 20, 30:
	default:
		return fmt.Errorf("audio.frame_ms must be 10, 20, or 30 (got %d)", c.Audio.FrameMS)
	}
	switch c.Audio.SampleRate {
	case 8000, 16000, 32000, 48000:
	default:
		return fmt.Errorf("audio.sample_rate must be 8k/16k/32k/48k for webrtc VAD (got %d)", c.Audio.SampleRate)
	}
	if c.VAD.Aggressiveness < 0 || c.VAD.Aggressiveness > 3 {
		return fmt.Errorf("vad.aggressiveness must be 0-3 (got %d)", c.VAD.Aggressiveness)
	}
	switch strings.ToLower(c.LLM.Backend) {
	case "", "ollama":
	default:
		return fmt.Errorf("llm.backend %q not supported (only ollama)", c.LLM.Backend)
	}
	for i := range c.Hooks {
		for _, ev := range c.Hooks[i].Events {
			if !validEvent(ev) {
				return fmt.Errorf("hooks[%d]: unknown event %q", i, ev)
			}
		}
	}
	return nil
}

func isMac() bool {
	return runtime.GOOS == "darwin"
}

// MustStatePaths ensures state dirs exist.
func MustStatePaths(cfg *Config) error {
	for _, p := range []string{
		cfg.Paths.StateDir,
		cfg.Paths.DataDir,
		cfg.Paths.AudioDir,
		filepath.Dir(cfg.Paths.DBPath),
		filepath.Dir(cfg.Paths.LogPath),
		filepath.Dir(cfg.Paths.PidPath),
		filepath.Dir(cfg.Paths.SocketPath),
		filepath.Dir(cfg.Paths.LockPath),
	} {
		if p == "" {
			continue
		}
		if err := os.MkdirAll(p, 0o755); err != nil {
			return err
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LECTURENOTES_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("LECTURENOTES_API_BASE"); v != "" {
		cfg.Client.APIBase = v
	}
	if v := os.Getenv("LECTURENOTES_LLM_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LECTURENOTES_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LECTURENOTES_MODEL_PATH"); v != "" {
		cfg.ASR.ModelPath = v
	}
	if v := os.Getenv("LECTURENOTES_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LECTURENOTES_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("LECTURENOTES_LOG_STDOUT"); v != "" {
		cfg.Logging.Stdout = v != "0" && strings.ToLower(v) != "false"
	}
}
