package hook

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"lecturenotes/internal/config"
	"lecturenotes/internal/lecture"

	"github.com/google/shlex"
	"github.com/sirupsen/logrus"
)

const defaultTimeout = 30 * time.Second

// Event is a pipeline milestone delivered to hooks.
type Event struct {
	Kind      string // config.EventTranscribed, EventCompleted or EventError
	Lecture   *lecture.Lecture
	Timestamp time.Time
}

// Payload returns the text handed to hook commands for the event.
func (e Event) Payload() string {
	if e.Lecture == nil {
		return ""
	}
	switch e.Kind {
	case config.EventCompleted:
		return e.Lecture.Notes()
	case config.EventTranscribed:
		return e.Lecture.Transcript()
	case config.EventError:
		return lecture.Deref(e.Lecture.ErrorMessage)
	}
	return ""
}

// Runner executes configured hook commands.
type Runner struct {
	cfg    *config.Config
	logger *logrus.Logger
}

func NewRunner(cfg *config.Config, logger *logrus.Logger) *Runner {
	return &Runner{cfg: cfg, logger: logger}
}

// Fire runs every hook subscribed to ev.Kind. Failures are logged only.
func (r *Runner) Fire(ctx context.Context, ev Event) {
	for _, hk := range Matching(r.cfg, ev.Kind) {
		if err := r.Run(ctx, hk, ev); err != nil {
			r.logger.WithField("event", ev.Kind).Errorf("hook %s: %v", hk.Command, err)
		}
	}
}

// Run executes a single hook for ev.
func (r *Runner) Run(ctx context.Context, hk *config.HookConfig, ev Event) error {
	if hk == nil || strings.TrimSpace(hk.Command) == "" {
		return fmt.Errorf("no hook command configured")
	}
	args, err := hookArgs(hk)
	if err != nil {
		return err
	}
	text := ev.Payload()
	if hk.RedactPII {
		text = redactPII(text)
	}
	args = append(args, text)

	timeout := defaultTimeout
	if hk.TimeoutSec > 0 {
		timeout = time.Duration(float64(time.Second) * hk.TimeoutSec)
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, hk.Command, args...)
	cmd.Stdin = strings.NewReader(text)
	cmd.WaitDelay = time.Second
	cmd.Env = os.Environ()
	for k, v := range hk.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	cmd.Env = append(cmd.Env, fmt.Sprintf("LECTURENOTES_EVENT=%s", ev.Kind))
	if ev.Lecture != nil {
		cmd.Env = append(cmd.Env,
			fmt.Sprintf("LECTURENOTES_ID=%s", ev.Lecture.ID),
			fmt.Sprintf("LECTURENOTES_TITLE=%s", ev.Lecture.Title),
			fmt.Sprintf("LECTURENOTES_STATUS=%s", ev.Lecture.Status),
		)
	}

	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		r.logger.Infof("hook output: %s", strings.TrimSpace(string(out)))
	}
	if err != nil {
		return fmt.Errorf("hook failed: %w", err)
	}
	return nil
}

func hookArgs(hk *config.HookConfig) ([]string, error) {
	args := append([]string{}, hk.Args...)
	if strings.TrimSpace(hk.ArgLine) != "" {
		extra, err := ParseArgs(hk.ArgLine)
		if err != nil {
			return nil, fmt.Errorf("parse arg_line: %w", err)
		}
		args = append(args, extra...)
	}
	return args, nil
}

// ParseArgs allows hook arguments to be configured as a single string.
func ParseArgs(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return []string{}, nil
	}
	return shlex.Split(raw)
}

var (
	emailRE = regexp.MustCompile(`[\w.+-]+@[\w.-]+\.[A-Za-z]{2,}`)
	phoneRE = regexp.MustCompile(`\+?\d[\d\s\-\(\)]{6,}\d`)
)

func redactPII(s string) string {
	s = emailRE.ReplaceAllString(s, "[redacted-email]")
	s = phoneRE.ReplaceAllString(s, "[redacted-phone]")
	return s
}
