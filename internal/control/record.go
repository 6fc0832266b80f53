package control

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"lecturenotes/internal/logging"
	"lecturenotes/internal/record"

	"github.com/spf13/cobra"
)

// NewRecordCmd captures the microphone and uploads the result.
func NewRecordCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a lecture from the microphone and upload it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := metaFromFlags(cmd)
			if err != nil {
				return err
			}
			if !record.Available() {
				return record.ErrUnavailable
			}
			cfg, c, err := loadClient(*cfgPath)
			if err != nil {
				return err
			}
			maxDur, _ := cmd.Flags().GetDuration("max")
			silence, _ := cmd.Flags().GetDuration("stop-on-silence")
			keep, _ := cmd.Flags().GetString("keep")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errOut := cmd.ErrOrStderr()
			interactive := colorize(errOut)
			fmt.Fprintln(errOut, "recording... press Ctrl-C to stop")
			var last time.Time
			res, err := record.Record(ctx, cfg, record.Options{
				Max:           maxDur,
				StopOnSilence: silence,
				OnLevel: func(level float64) {
					if !interactive || time.Since(last) < 200*time.Millisecond {
						return
					}
					last = time.Now()
					fmt.Fprintf(errOut, "\rlevel %-20s", strings.Repeat("█", int(level*20)))
				},
			}, logging.NewConsole(cfg))
			stop()
			if interactive {
				fmt.Fprintln(errOut)
			}
			if err != nil {
				return err
			}
			if len(res.Samples) == 0 {
				return fmt.Errorf("no audio captured")
			}
			fmt.Fprintf(errOut, "captured %s (stopped by %s)\n", res.Duration.Round(time.Second), res.StoppedBy)

			path := keep
			if path == "" {
				tmp, err := os.CreateTemp("", "lecturenotes-*.wav")
				if err != nil {
					return err
				}
				path = tmp.Name()
				_ = tmp.Close()
				defer os.Remove(path)
			} else if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			if err := record.WriteWAV(f, res.Samples, res.SampleRate); err != nil {
				_ = f.Close()
				return err
			}
			if _, err := f.Seek(0, io.SeekStart); err != nil {
				_ = f.Close()
				return err
			}
			defer f.Close()
			return upload(cmd, cfg, c, meta, "recording.wav", f)
		},
	}
	addMetaFlags(cmd)
	cmd.Flags().Duration("max", 90*time.Minute, "stop after this long (0 for no limit)")
	cmd.Flags().Duration("stop-on-silence", 0, "stop after this much silence once speech was heard (0 disables)")
	cmd.Flags().String("keep", "", "also keep the WAV at this path")
	return cmd
}
