package main

import (
	"fmt"
	"os"

	"lecturenotes/internal/control"
	"lecturenotes/internal/daemon"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	root := &cobra.Command{
		Use:   "lecturenotes",
		Short: "Lecture voice-to-notes server and client",
		Long: `lecturenotes stores lecture recordings, transcribes them locally with whisper.cpp,
turns transcripts into study notes with a local Ollama model, and exports the notes.

The server (start/serve) exposes an HTTP API and a browser UI; the other commands
talk to it over HTTP or the control socket.`,
		Example: `  lecturenotes start
  lecturenotes upload --title "Week 3: Entropy" --course PHYS210 --wait lecture.mp3
  lecturenotes record --title "Seminar" --stop-on-silence 2m
  lecturenotes notes <id>
  lecturenotes export <id> --format md -o entropy.md
  lecturenotes service install --env LECTURENOTES_LLM_MODEL=mistral`,
		DisableFlagsInUseLine: true,
		SilenceUsage:          true,
		SilenceErrors:         true,
	}

	root.Version = version
	root.SetVersionTemplate("lecturenotes v{{.Version}}\n")

	cfgPath := root.PersistentFlags().StringP("config", "c", "", "Path to config file (TOML). Defaults to ~/.config/lecturenotes/config.toml")
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(daemon.NewStartCmd(cfgPath))
	root.AddCommand(daemon.NewStopCmd(cfgPath))
	root.AddCommand(daemon.NewRestartCmd(cfgPath))
	root.AddCommand(control.NewStatusCmd(cfgPath))
	root.AddCommand(control.NewHealthCmd(cfgPath))
	root.AddCommand(control.NewTailLogCmd(cfgPath))

	root.AddCommand(control.NewListCmd(cfgPath))
	root.AddCommand(control.NewShowCmd(cfgPath))
	root.AddCommand(control.NewUploadCmd(cfgPath))
	root.AddCommand(control.NewRecordCmd(cfgPath))
	root.AddCommand(control.NewNotesCmd(cfgPath))
	root.AddCommand(control.NewExportCmd(cfgPath))
	root.AddCommand(control.NewDeleteCmd(cfgPath))

	root.AddCommand(control.NewDoctorCmd(cfgPath))
	root.AddCommand(control.NewSetupCmd(cfgPath))
	root.AddCommand(control.NewModelsCmd(cfgPath))
	root.AddCommand(control.NewMicCmd(cfgPath))
	root.AddCommand(control.NewServiceCmd(cfgPath))
	root.AddCommand(control.NewTestHookCmd(cfgPath))
	root.AddCommand(control.NewTranscribeCmd(cfgPath))

	// Hidden internal serve command used by start and the service definitions.
	root.AddCommand(daemon.NewServeCmd(cfgPath))

	applyColorHelp(root)

	return root.Execute()
}

func applyColorHelp(root *cobra.Command) {
	const (
		boldBlue = "\033[1;34m"
		green    = "\033[32m"
		bold     = "\033[1m"
		dim      = "\033[2m"
		reset    = "\033[0m"
	)
	defaultHelp := root.HelpFunc()
	root.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != root {
			defaultHelp(cmd, args)
			return
		}
		out := cmd.OutOrStdout()
		write := func(format string, args ...any) { _, _ = fmt.Fprintf(out, format, args...) }
		writeln := func(line string) { _, _ = fmt.Fprintln(out, line) }

		write("%slecturenotes%s: lecture voice-to-notes %s(v%s)%s\n", boldBlue, reset, dim, version, reset)
		write("%sUpload or record lectures, transcribe locally, generate and export study notes.%s\n\n", dim, reset)

		write("%sUsage%s\n", bold, reset)
		write("  lecturenotes [command] [flags]\n\n")

		write("%sServer%s\n", bold, reset)
		writeln("  start|stop|restart          server lifecycle (HTTP API + web UI)")
		writeln("  status [--json]             uptime, queue, counters, recent events")
		writeln("  health                      control-socket liveness ping")
		writeln("  tail-log                    show last log lines")
		writeln("")

		write("%sLectures%s\n", bold, reset)
		writeln("  list | show <id>            browse lectures")
		writeln("  upload --title T <file>     upload a recording (--wait to follow)")
		writeln("  record --title T            capture the microphone and upload")
		writeln("  notes <id>                  generate study notes")
		writeln("  export <id> --format F      pdf, txt, md, html or ics")
		writeln("  delete <id>                 remove a lecture and its audio")
		writeln("")

		write("%sSetup%s\n", bold, reset)
		writeln("  doctor | setup              check deps / download default whisper model")
		writeln("  models list|download|set    manage whisper.cpp models")
		writeln("  mic list|set                select input device")
		writeln("  service install|uninstall|status   launchd (macOS) or systemd user unit")
		writeln("  test-hook <event> [id]      run configured hooks manually")
		writeln("")

		write("%sEnv%s\n", bold, reset)
		writeln("  LECTURENOTES_ADDR, LECTURENOTES_API_BASE, LECTURENOTES_LLM_URL,")
		writeln("  LECTURENOTES_LLM_MODEL, LECTURENOTES_MODEL_PATH, LECTURENOTES_LOG_LEVEL,")
		writeln("  LECTURENOTES_LOG_FORMAT, LECTURENOTES_LOG_STDOUT")
		writeln("  -c, --config <path>     config file (default ~/.config/lecturenotes/config.toml)")
		writeln("")

		write("%sCommands%s\n", bold, reset)
		for _, c := range cmd.Commands() {
			if c.Hidden {
				continue
			}
			write("  %s%-15s%s %s\n", green, c.Name(), reset, c.Short)
		}
	})
}
