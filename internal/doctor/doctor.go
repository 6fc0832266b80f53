// Package doctor runs environment checks for the server and the CLI.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"lecturenotes/internal/config"
	"lecturenotes/internal/record"
)

// Result represents a diagnostic check.
type Result struct {
	Name   string
	Pass   bool
	Detail string
}

// HealthChecker reports whether the notes backend is reachable and has the model.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Run executes doctor checks. llm may be nil to skip the LLM probe.
func Run(ctx context.Context, cfg *config.Config, llm HealthChecker) []Result {
	results := []Result{
		checkFile("config path", cfg.Paths.ConfigPath),
		checkFile("model file", cfg.ASR.ModelPath),
		checkExecutable("ffmpeg", cfg.ASR.FFmpeg),
	}
	if llm != nil {
		results = append(results, checkLLM(ctx, cfg, llm))
	}
	for i := range cfg.Hooks {
		results = append(results, checkExecutable(fmt.Sprintf("hooks[%d]", i), cfg.Hooks[i].Command))
	}
	results = append(results, checkPortAudioPkgConfig(), checkCapture())
	return results
}

func checkFile(label, path string) Result {
	if path == "" {
		return Result{Name: label, Pass: false, Detail: "not set"}
	}
	if _, err := os.Stat(os.ExpandEnv(path)); err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	return Result{Name: label, Pass: true, Detail: path}
}

func checkExecutable(label, cmd string) Result {
	if cmd == "" {
		return Result{Name: label, Pass: false, Detail: "not set"}
	}
	path := os.ExpandEnv(cmd)
	// If contains a path separator, treat as explicit path.
	if strings.Contains(path, "/") || strings.Contains(path, "\\") {
		info, err := os.Stat(path)
		if err != nil {
			return Result{Name: label, Pass: false, Detail: err.Error()}
		}
		if info.IsDir() {
			return Result{Name: label, Pass: false, Detail: "is a directory, not an executable"}
		}
		if info.Mode().Perm()&0o111 == 0 {
			return Result{Name: label, Pass: false, Detail: "not executable; chmod +x or choose another command"}
		}
		return Result{Name: label, Pass: true, Detail: path}
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	return Result{Name: label, Pass: true, Detail: resolved}
}

func checkLLM(ctx context.Context, cfg *config.Config, llm HealthChecker) Result {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	label := "llm"
	if err := llm.HealthCheck(ctx); err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	return Result{Name: label, Pass: true, Detail: fmt.Sprintf("%s at %s", cfg.LLM.Model, cfg.LLM.BaseURL)}
}

func checkPortAudioPkgConfig() Result {
	pkg, err := exec.LookPath("pkg-config")
	if err != nil {
		return Result{Name: "pkg-config", Pass: false, Detail: "pkg-config not found (needed to build with -tags whisper)"}
	}
	cmd := exec.Command(pkg, "--exists", "portaudio-2.0")
	if err := cmd.Run(); err != nil {
		return Result{Name: "portaudio", Pass: false, Detail: "portaudio-2.0 not found (brew install portaudio / apt install portaudio19-dev)"}
	}
	versionCmd := exec.Command(pkg, "--modversion", "portaudio-2.0")
	if out, err := versionCmd.Output(); err == nil {
		return Result{Name: "portaudio", Pass: true, Detail: strings.TrimSpace(string(out))}
	}
	return Result{Name: "portaudio", Pass: true, Detail: "found via pkg-config"}
}

func checkCapture() Result {
	devs, err := record.Devices()
	if errors.Is(err, record.ErrUnavailable) {
		return Result{Name: "microphone", Pass: true, Detail: "capture not built in (rebuild with -tags whisper to record)"}
	}
	if err != nil {
		return Result{Name: "microphone", Pass: false, Detail: err.Error()}
	}
	if len(devs) == 0 {
		return Result{Name: "microphone", Pass: false, Detail: "no input devices found"}
	}
	return Result{Name: "microphone", Pass: true, Detail: fmt.Sprintf("%d input device(s)", len(devs))}
}

// Failed reports whether any check failed.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Pass {
			return true
		}
	}
	return false
}
