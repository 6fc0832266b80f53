package daemon

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"lecturenotes/internal/testsupport"
)

func TestWaitForShutdownSucceedsWhenPidFileRemoved(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.WriteFile(cfg.Paths.PidPath, []byte("12345"), 0o644); err != nil {
		t.Fatalf("write pid: %v", err)
	}
	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = os.Remove(cfg.Paths.PidPath)
	}()
	if err := waitForShutdown(cfg, 2*time.Second); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestWaitForShutdownTimesOutOnAlivePid(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.WriteFile(cfg.Paths.PidPath, []byte(fmt.Sprintf("%d", os.Getpid())), 0o644); err != nil {
		t.Fatalf("write pid: %v", err)
	}
	if err := waitForShutdown(cfg, 300*time.Millisecond); err == nil {
		t.Fatalf("expected timeout error")
	}
}

func TestEnsureNotRunning(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := ensureNotRunning(cfg); err != nil {
		t.Fatalf("no pid file should pass: %v", err)
	}
	if err := os.WriteFile(cfg.Paths.PidPath, []byte(fmt.Sprintf("%d", os.Getpid())), 0o644); err != nil {
		t.Fatalf("write pid: %v", err)
	}
	if err := ensureNotRunning(cfg); err == nil || !strings.Contains(err.Error(), "already running") {
		t.Fatalf("expected already running, got %v", err)
	}
}

func TestChildEnvAddsAddr(t *testing.T) {
	env := childEnv([]string{"HOME=/tmp"}, "0.0.0.0:9000")
	if len(env) != 2 || env[1] != "LECTURENOTES_ADDR=0.0.0.0:9000" {
		t.Fatalf("unexpected env %v", env)
	}
	if env := childEnv([]string{"HOME=/tmp"}, ""); len(env) != 1 {
		t.Fatalf("empty addr should not add a variable: %v", env)
	}
}
