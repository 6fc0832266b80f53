package testsupport

import (
	"testing"

	"lecturenotes/internal/config"
	"lecturenotes/internal/store"
)

// MustOpenStore opens the lecture store for cfg and closes it on cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	s, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}
