package control

import (
	"encoding/json"
	"fmt"

	"lecturenotes/internal/asr"
	"lecturenotes/internal/config"
	"lecturenotes/internal/logging"

	"github.com/spf13/cobra"
)

// NewTranscribeCmd runs the local transcriber once on a file, without the server.
func NewTranscribeCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe an audio file locally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			tr, err := asr.New(cfg, logging.NewConsole(cfg))
			if err != nil {
				return err
			}
			defer tr.Close()
			res, err := tr.Transcribe(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return json.NewEncoder(out).Encode(res)
			}
			fmt.Fprintln(out, res.Text)
			cmd.PrintErrf("language: %s, duration: %.1fs\n", res.Language, res.Duration)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "output JSON")
	return cmd
}
