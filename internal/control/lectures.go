package control

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"lecturenotes/internal/client"
	"lecturenotes/internal/config"
	"lecturenotes/internal/lecture"

	"github.com/spf13/cobra"
)

// NewListCmd prints every lecture.
func NewListCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List lectures",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := loadClient(*cfgPath)
			if err != nil {
				return err
			}
			list, err := c.List(cmd.Context())
			if err != nil {
				return err
			}
			if raw, _ := cmd.Flags().GetString("status"); raw != "" {
				want, ok := lecture.ParseStatus(raw)
				if !ok {
					return fmt.Errorf("unknown status %q", raw)
				}
				list = filterStatus(list, want)
			}
			out := cmd.OutOrStdout()
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return json.NewEncoder(out).Encode(list)
			}
			if len(list) == 0 {
				fmt.Fprintln(out, "No lectures yet. Upload one with: lecturenotes upload --title T <file>")
				return nil
			}
			fmt.Fprintln(out, renderLectureTable(list, colorize(out)))
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "output JSON")
	cmd.Flags().String("status", "", "only show lectures in this status (e.g. completed, error)")
	return cmd
}

func filterStatus(list []lecture.Summary, want lecture.Status) []lecture.Summary {
	out := list[:0]
	for _, l := range list {
		if l.Status == want {
			out = append(out, l)
		}
	}
	return out
}

// NewShowCmd prints one lecture with transcript and notes.
func NewShowCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a lecture with its transcript and notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := loadClient(*cfgPath)
			if err != nil {
				return err
			}
			l, err := c.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return json.NewEncoder(out).Encode(l)
			}
			renderLectureDetail(out, l, colorize(out))
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "output JSON")
	return cmd
}

func addMetaFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "lecture title (required)")
	cmd.Flags().String("course", "", "course name")
	cmd.Flags().String("lecturer", "", "lecturer name")
	cmd.Flags().String("date", "", "lecture date")
	cmd.Flags().Bool("wait", false, "wait until transcription finishes")
}

func metaFromFlags(cmd *cobra.Command) (lecture.Meta, error) {
	get := func(name string) string {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	meta := lecture.Meta{
		Title:       get("title"),
		Course:      get("course"),
		Lecturer:    get("lecturer"),
		LectureDate: get("date"),
	}.Normalize()
	if meta.Title == "" {
		return meta, errors.New("--title is required")
	}
	return meta, nil
}

// upload sends audio and optionally waits for the transcription to settle.
func upload(cmd *cobra.Command, cfg *config.Config, c *client.Client, meta lecture.Meta, filename string, audio io.Reader) error {
	l, err := c.Create(cmd.Context(), meta, filename, audio)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "uploaded %q (%s)\n", l.Title, l.ID)
	if wait, _ := cmd.Flags().GetBool("wait"); !wait {
		return nil
	}
	fmt.Fprintln(out, "waiting for transcription...")
	l, err = c.WaitFor(cmd.Context(), l.ID, pollInterval(cfg), func(l *lecture.Lecture) bool {
		return l.Status.Terminal()
	})
	if err != nil {
		return err
	}
	if l.Status == lecture.StatusError {
		return fmt.Errorf("processing failed: %s", lecture.Deref(l.ErrorMessage))
	}
	fmt.Fprintf(out, "status: %s\n", statusText(l.Status, colorize(out)))
	return nil
}

// NewUploadCmd uploads an audio file.
func NewUploadCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <audio-file>",
		Short: "Upload a lecture recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := metaFromFlags(cmd)
			if err != nil {
				return err
			}
			cfg, c, err := loadClient(*cfgPath)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			return upload(cmd, cfg, c, meta, filepath.Base(args[0]), f)
		},
	}
	addMetaFlags(cmd)
	return cmd
}

// NewNotesCmd generates notes for a lecture.
func NewNotesCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "notes <id>",
		Short: "Generate study notes from the transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := loadClient(*cfgPath)
			if err != nil {
				return err
			}
			cmd.PrintErrln("generating notes (this can take a few minutes)...")
			res, err := c.GenerateNotes(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.NotesText)
			return nil
		},
	}
}

// NewExportCmd downloads notes in a chosen format.
func NewExportCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Download notes as pdf, txt, md, html or ics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := loadClient(*cfgPath)
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("format")
			d, err := c.Export(cmd.Context(), args[0], format)
			if err != nil {
				return err
			}
			dest, _ := cmd.Flags().GetString("output")
			if dest == "-" {
				_, err := cmd.OutOrStdout().Write(d.Body)
				return err
			}
			if dest == "" {
				dest = d.Name
			}
			if err := os.WriteFile(dest, d.Body, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%d bytes)\n", dest, len(d.Body))
			return nil
		},
	}
	cmd.Flags().String("format", "pdf", "export format: pdf, txt, md, html, ics")
	cmd.Flags().StringP("output", "o", "", "output path ('-' for stdout)")
	return cmd
}

// NewDeleteCmd removes a lecture after confirmation.
func NewDeleteCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a lecture and its audio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := loadClient(*cfgPath)
			if err != nil {
				return err
			}
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				l, err := c.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !confirm(cmd.InOrStdin(), cmd.OutOrStdout(),
					fmt.Sprintf("Are you sure you want to delete %q? This cannot be undone. [y/N] ", l.Title)) {
					fmt.Fprintln(cmd.OutOrStdout(), "cancelled")
					return nil
				}
			}
			if err := c.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Lecture deleted.")
			return nil
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "skip confirmation")
	return cmd
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
