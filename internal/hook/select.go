package hook

import (
	"strings"

	"lecturenotes/internal/config"
)

// subscribes reports whether hk wants events of kind. No events means all.
func subscribes(hk *config.HookConfig, kind string) bool {
	if len(hk.Events) == 0 {
		return true
	}
	for _, ev := range hk.Events {
		if strings.EqualFold(strings.TrimSpace(ev), kind) {
			return true
		}
	}
	return false
}

// Matching returns the hooks subscribed to kind, in config order.
func Matching(cfg *config.Config, kind string) []*config.HookConfig {
	var out []*config.HookConfig
	for i := range cfg.Hooks {
		hk := &cfg.Hooks[i]
		if strings.TrimSpace(hk.Command) == "" {
			continue
		}
		if subscribes(hk, kind) {
			out = append(out, hk)
		}
	}
	return out
}
