package control

import (
	"fmt"
	"io"
	"os"
	"strings"

	"lecturenotes/internal/lecture"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

func renderTable(headers []string, rows [][]string) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range headers {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)
	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}
	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

// colorize reports whether w is an interactive terminal.
func colorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// statusText is the display label for a status, title-cased and optionally coloured.
func statusText(s lecture.Status, color bool) string {
	label, class := lecture.Label(s)
	label = cases.Title(language.Und).String(label)
	if !color {
		return label
	}
	code := ansiBlue
	switch class {
	case "completed":
		code = ansiGreen
	case "generating_notes":
		code = ansiYellow
	case "error":
		code = ansiRed
	}
	return code + label + ansiReset
}

func renderLectureTable(list []lecture.Summary, color bool) string {
	rows := make([][]string, 0, len(list))
	for _, l := range list {
		rows = append(rows, []string{
			l.Title,
			lecture.MetaLine(l.Course, l.Lecturer, l.LectureDate),
			statusText(l.Status, color),
			l.CreatedAt.Local().Format("2006-01-02 15:04"),
			l.ID,
		})
	}
	return renderTable([]string{"Title", "Details", "Status", "Created", "ID"}, rows)
}

func renderLectureDetail(w io.Writer, l *lecture.Lecture, color bool) {
	fmt.Fprintln(w, l.Title)
	if meta := lecture.MetaLine(l.Course, l.Lecturer, l.LectureDate); meta != "" {
		fmt.Fprintln(w, meta)
	}
	fmt.Fprintf(w, "Status: %s\n", statusText(l.Status, color))
	if msg := lecture.Deref(l.ErrorMessage); msg != "" {
		fmt.Fprintf(w, "Error: %s\n", msg)
	}
	if l.DurationSeconds != nil {
		fmt.Fprintf(w, "Duration: %.0fs\n", *l.DurationSeconds)
	}

	fmt.Fprintln(w, "\n== Transcript ==")
	if t := strings.TrimSpace(l.Transcript()); t != "" {
		fmt.Fprintln(w, t)
	} else {
		fmt.Fprintln(w, "Transcript not available.")
	}
	fmt.Fprintln(w, "\n== Notes ==")
	if n := strings.TrimSpace(l.Notes()); n != "" {
		fmt.Fprintln(w, n)
	} else {
		fmt.Fprintln(w, "Notes not generated yet.")
	}
}
