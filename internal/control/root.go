package control

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"lecturenotes/internal/config"
	"lecturenotes/internal/doctor"
	"lecturenotes/internal/hook"
	"lecturenotes/internal/lecture"
	"lecturenotes/internal/logging"
	"lecturenotes/internal/notes"

	"github.com/spf13/cobra"
)

// NewStatusCmd queries server status over the control socket.
func NewStatusCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show server status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			var status Status
			if err := Query(cfg.Paths.SocketPath, "status", &status); err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(status)
			}
			printStatus(cmd.OutOrStdout(), status)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "output JSON")
	return cmd
}

func printStatus(w io.Writer, status Status) {
	fmt.Fprintf(w, "running: %v (pid %d)\n", status.Running, status.PID)
	fmt.Fprintf(w, "listening: http://%s\n", status.Addr)
	fmt.Fprintf(w, "uptime: %.1fs\n", status.UptimeSec)
	fmt.Fprintf(w, "queue depth: %d\n", status.QueueDepth)
	m := status.Metrics
	fmt.Fprintf(w, "uploads: %d  transcribed: %d (failed %d)  notes: %d (failed %d)  deleted: %d\n",
		m.Uploads, m.Transcribed, m.TranscribeFailed, m.Notes, m.NotesFailed, m.Deletes)
	if len(status.Lectures) > 0 {
		keys := make([]string, 0, len(status.Lectures))
		for k := range status.Lectures {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%d", k, status.Lectures[k]))
		}
		fmt.Fprintf(w, "lectures: %s\n", strings.Join(parts, " "))
	}
	for _, ev := range status.Events {
		line := fmt.Sprintf("%s  %-16s %s", ev.Time.Local().Format("15:04:05"), ev.Stage, ev.Title)
		if ev.Detail != "" {
			line += "  (" + ev.Detail + ")"
		}
		fmt.Fprintln(w, line)
	}
}

// NewHealthCmd pings the server over the control socket.
func NewHealthCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server is alive",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			var resp SimpleResponse
			if err := Query(cfg.Paths.SocketPath, "health", &resp); err != nil {
				return err
			}
			if !resp.OK {
				return fmt.Errorf("unhealthy: %s", resp.Message)
			}
			cmd.Println(resp.Message)
			return nil
		},
	}
}

// NewTailLogCmd tails the main log file (simple last N lines).
func NewTailLogCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tail-log",
		Short: "Show last 50 log lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			return tailFile(cmd.OutOrStdout(), cfg.Paths.LogPath, 50)
		},
	}
}

func tailFile(w io.Writer, path string, n int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	lines := strings.Split(string(data), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			fmt.Fprintln(w, l)
		}
	}
	return nil
}

// NewTestHookCmd runs the hooks subscribed to an event against a sample or stored lecture.
func NewTestHookCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "test-hook <transcribed|completed|error> [lecture-id]",
		Short: "Run configured hooks for an event",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, c, err := loadClient(*cfgPath)
			if err != nil {
				return err
			}
			logger, err := logging.Configure(cfg)
			if err != nil {
				return err
			}
			kind := strings.ToLower(args[0])
			hooks := hook.Matching(cfg, kind)
			if len(hooks) == 0 {
				return fmt.Errorf("no hooks subscribed to %q; add [[hooks]] entries", kind)
			}
			l := sampleLecture(kind)
			if len(args) == 2 {
				if l, err = c.Get(cmd.Context(), args[1]); err != nil {
					return err
				}
			}
			ev := hook.Event{Kind: kind, Lecture: l, Timestamp: time.Now()}
			r := hook.NewRunner(cfg, logger)
			for _, hk := range hooks {
				if err := r.Run(cmd.Context(), hk, ev); err != nil {
					return err
				}
				cmd.Printf("hook %s ok\n", hk.Command)
			}
			return nil
		},
	}
}

func sampleLecture(kind string) *lecture.Lecture {
	l := &lecture.Lecture{
		ID:             lecture.NewID(),
		Title:          "Sample lecture",
		Course:         lecture.Ptr("DEMO101"),
		Status:         lecture.StatusTranscribed,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
		TranscriptText: lecture.Ptr("This is a sample transcript used to test hooks."),
	}
	switch kind {
	case config.EventCompleted:
		l.Status = lecture.StatusCompleted
		l.NotesText = lecture.Ptr("## Summary\nSample notes used to test hooks.")
	case config.EventError:
		l.Status = lecture.StatusError
		l.ErrorMessage = lecture.Ptr("Transcription failed: sample error")
	}
	return l
}

// NewDoctorCmd runs environment checks.
func NewDoctorCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check dependencies and config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			results := doctor.Run(cmd.Context(), cfg, notes.FromConfig(cfg))
			for _, r := range results {
				status := "ok"
				if !r.Pass {
					status = "fail"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-4s %s\n", r.Name, status, r.Detail)
			}
			if doctor.Failed(results) {
				return fmt.Errorf("doctor found issues")
			}
			return nil
		},
	}
}
