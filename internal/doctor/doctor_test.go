package doctor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"lecturenotes/internal/config"
	"lecturenotes/internal/testsupport"
)

type fakeLLM struct{ err error }

func (f fakeLLM) HealthCheck(context.Context) error { return f.err }

func find(t *testing.T, results []Result, name string) Result {
	t.Helper()
	for _, r := range results {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("no %q result in %+v", name, results)
	return Result{}
}

func TestRunReportsFilesAndLLM(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	model := filepath.Join(t.TempDir(), "ggml.bin")
	if err := os.WriteFile(model, []byte("x"), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}
	cfg.ASR.ModelPath = model

	results := Run(context.Background(), cfg, fakeLLM{err: errors.New("connection refused")})
	if r := find(t, results, "model file"); !r.Pass {
		t.Fatalf("model file should pass: %+v", r)
	}
	if r := find(t, results, "config path"); r.Pass {
		t.Fatalf("missing config file should fail: %+v", r)
	}
	if r := find(t, results, "llm"); r.Pass || r.Detail != "connection refused" {
		t.Fatalf("unexpected llm result %+v", r)
	}
	if !Failed(results) {
		t.Fatal("expected Failed to report true")
	}

	if r := find(t, Run(context.Background(), cfg, fakeLLM{}), "llm"); !r.Pass {
		t.Fatalf("healthy llm should pass: %+v", r)
	}
}

func TestCheckExecutable(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "hook.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if r := checkExecutable("hook", script); r.Pass {
		t.Fatalf("non-executable file should fail: %+v", r)
	}
	if err := os.Chmod(script, 0o755); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	if r := checkExecutable("hook", script); !r.Pass {
		t.Fatalf("executable should pass: %+v", r)
	}
	if r := checkExecutable("hook", dir); r.Pass {
		t.Fatalf("directory should fail: %+v", r)
	}
	if r := checkExecutable("hook", ""); r.Pass || r.Detail != "not set" {
		t.Fatalf("empty command should fail: %+v", r)
	}
}

func TestRunChecksHooks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Hooks = []config.HookConfig{{Command: "/definitely/missing"}}
	if r := find(t, Run(context.Background(), cfg, nil), "hooks[0]"); r.Pass {
		t.Fatalf("missing hook command should fail: %+v", r)
	}
}
