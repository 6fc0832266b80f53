package service

import (
	"os"
	"strings"
	"testing"
)

func TestWriteStatusRemove(t *testing.T) {
	home := t.TempDir()
	params := Params{
		Label:  Label,
		Binary: "/usr/local/bin/lecturenotes",
		Config: "/home/ada/.config/lecturenotes/config.toml",
		Log:    "/tmp/lecturenotes.log",
		Env:    map[string]string{"LECTURENOTES_LLM_MODEL": "mistral"},
	}
	path, err := Write(home, params)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.HasPrefix(path, home) {
		t.Fatalf("definition written outside home: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	body := string(data)
	for _, want := range []string{params.Binary, "serve", params.Config, "LECTURENOTES_LLM_MODEL", "mistral"} {
		if !strings.Contains(body, want) {
			t.Fatalf("definition missing %q:\n%s", want, body)
		}
	}

	if got, ok := Status(home, Label); !ok || got != path {
		t.Fatalf("expected present at %s, got %s ok=%v", path, got, ok)
	}
	if _, err := Remove(home, Label); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := Status(home, Label); ok {
		t.Fatal("definition should be gone")
	}
	if _, err := Remove(home, Label); err != nil {
		t.Fatalf("second Remove should be a no-op: %v", err)
	}
}
