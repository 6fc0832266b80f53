package config

// Hook event kinds.
const (
	EventTranscribed = "transcribed"
	EventCompleted   = "completed"
	EventError       = "error"
)

// HookConfig defines a command fired on lecture pipeline events.
type HookConfig struct {
	Events     []string          `toml:"events"` // empty means every event
	Command    string            `toml:"command"`
	Args       []string          `toml:"args"`
	ArgLine    string            `toml:"arg_line"` // shell-style alternative to args
	TimeoutSec float64           `toml:"timeout_sec"`
	Env        map[string]string `toml:"env"`
	RedactPII  bool              `toml:"redact_pii"`
}

func validEvent(ev string) bool {
	switch ev {
	case EventTranscribed, EventCompleted, EventError:
		return true
	}
	return false
}
