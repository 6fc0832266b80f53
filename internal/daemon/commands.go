package daemon

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"lecturenotes/internal/config"
	"lecturenotes/internal/logging"
	"lecturenotes/internal/run"

	"github.com/spf13/cobra"
)

// NewStartCmd starts the server in the background.
func NewStartCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the lecturenotes server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			if err := ensureNotRunning(cfg); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(cfg.Paths.PidPath), 0o755); err != nil {
				return err
			}
			self, err := os.Executable()
			if err != nil {
				return err
			}
			child := exec.Command(self, "serve", "--config", cfg.Paths.ConfigPath)
			child.Env = childEnv(os.Environ(), cmd.Flag("addr").Value.String())
			child.Stdout = os.Stdout
			child.Stderr = os.Stderr
			if err := child.Start(); err != nil {
				return err
			}
			if !waitForPID(cfg.Paths.PidPath, 2*time.Second) {
				cmd.PrintErrf("warning: pid file not written yet; check %s\n", cfg.Paths.LogPath)
			}
			addr := cfg.Server.Addr
			if v := cmd.Flag("addr").Value.String(); v != "" {
				addr = v
			}
			cmd.Printf("lecturenotes started (pid %d) on http://%s\n", child.Process.Pid, addr)
			return nil
		},
	}
	cmd.Flags().String("addr", "", "listen address for this run (e.g. 0.0.0.0:8000)")
	return cmd
}

// NewServeCmd runs the server in the foreground (internal).
func NewServeCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:    "serve",
		Short:  "Run the lecturenotes server in the foreground",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr := cmd.Flag("addr").Value.String(); addr != "" {
				if err := os.Setenv("LECTURENOTES_ADDR", addr); err != nil {
					return fmt.Errorf("set LECTURENOTES_ADDR: %w", err)
				}
			}
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			logger, err := logging.Configure(cfg)
			if err != nil {
				return err
			}
			return run.Serve(cfg, logger)
		},
	}
	cmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	return cmd
}

// NewStopCmd stops the server.
func NewStopCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the lecturenotes server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			pid, err := readPID(cfg.Paths.PidPath)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return errors.New("server is not running")
				}
				return err
			}
			proc, err := os.FindProcess(pid)
			if err != nil {
				return err
			}
			if err := proc.Signal(syscall.SIGTERM); err != nil {
				return err
			}
			cmd.Println("stop signal sent")
			return nil
		},
	}
}

// NewRestartCmd stops then starts.
func NewRestartCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restart",
		Short: "Restart the lecturenotes server",
		RunE: func(cmd *cobra.Command, args []string) error {
			stopCmd := NewStopCmd(cfgPath)
			_ = stopCmd.RunE(stopCmd, args) // ignore error if not running

			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			if err := waitForShutdown(cfg, 5*time.Second); err != nil {
				return err
			}

			startCmd := NewStartCmd(cfgPath)
			if addr := cmd.Flag("addr").Value.String(); addr != "" {
				_ = startCmd.Flags().Set("addr", addr)
			}
			return startCmd.RunE(startCmd, args)
		},
	}
	cmd.Flags().String("addr", "", "listen address for the new run")
	return cmd
}

func childEnv(base []string, addr string) []string {
	env := append([]string{}, base...)
	if addr != "" {
		env = append(env, "LECTURENOTES_ADDR="+addr)
	}
	return env
}

func ensureNotRunning(cfg *config.Config) error {
	pid, err := readPID(cfg.Paths.PidPath)
	if err != nil {
		return nil
	}
	if alive(pid) {
		return fmt.Errorf("already running with pid %d", pid)
	}
	return nil
}

func alive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var pid int
	if _, err := fmt.Sscanf(string(data), "%d", &pid); err != nil {
		return 0, err
	}
	return pid, nil
}

func waitForPID(path string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); err == nil {
			return true
		}
		time.Sleep(100 * time.Millisecond)
	}
	return false
}

func waitForShutdown(cfg *config.Config, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		pid, err := readPID(cfg.Paths.PidPath)
		if err != nil {
			return nil // pid file gone
		}
		if !alive(pid) {
			_ = os.Remove(cfg.Paths.PidPath)
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("restart: server did not stop within %s", timeout)
}
