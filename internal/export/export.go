// Package export renders lecture notes into downloadable files.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"lecturenotes/internal/lecture"

	"github.com/yuin/goldmark"
)

// ErrUnsupportedFormat is returned for formats Render does not know.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format names an export flavour.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatText Format = "txt"
	FormatMD   Format = "md"
	FormatHTML Format = "html"
	FormatICS  Format = "ics"
)

// Formats lists every supported format in display order.
func Formats() []Format {
	return []Format{FormatPDF, FormatText, FormatMD, FormatHTML, FormatICS}
}

// ParseFormat maps a user supplied name to a Format. An empty name means pdf.
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return FormatPDF, nil
	}
	if name == "text" {
		return FormatText, nil
	}
	if name == "markdown" {
		return FormatMD, nil
	}
	for _, f := range Formats() {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// Document is what gets exported.
type Document struct {
	ID          string
	Title       string
	Notes       string
	Course      string
	Lecturer    string
	LectureDate string
	CreatedAt   time.Time
}

// FromLecture builds a Document, defaulting the title like the web UI does.
func FromLecture(l *lecture.Lecture) Document {
	title := strings.TrimSpace(l.Title)
	if title == "" {
		title = "Lecture Notes"
	}
	return Document{
		ID:          l.ID,
		Title:       title,
		Notes:       l.Notes(),
		Course:      lecture.Deref(l.Course),
		Lecturer:    lecture.Deref(l.Lecturer),
		LectureDate: lecture.Deref(l.LectureDate),
		CreatedAt:   l.CreatedAt,
	}
}

// File is a rendered export.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Render produces doc in the requested format.
func Render(format Format, doc Document) (File, error) {
	switch format {
	case FormatText:
		return File{
			Name:        "lecture_notes.txt",
			ContentType: "text/plain; charset=utf-8",
			Data:        []byte(doc.Title + "\n\n" + doc.Notes),
		}, nil
	case FormatMD:
		return File{
			Name:        "lecture_notes.md",
			ContentType: "text/markdown; charset=utf-8",
			Data:        []byte("# " + doc.Title + "\n\n" + doc.Notes),
		}, nil
	case FormatHTML:
		data, err := renderHTML(doc)
		if err != nil {
			return File{}, err
		}
		return File{Name: "lecture_notes.html", ContentType: "text/html; charset=utf-8", Data: data}, nil
	case FormatPDF:
		data, err := renderPDF(doc)
		if err != nil {
			return File{}, err
		}
		return File{Name: "lecture_notes.pdf", ContentType: "application/pdf", Data: data}, nil
	case FormatICS:
		data, err := renderICS(doc)
		if err != nil {
			return File{}, err
		}
		return File{Name: "lecture.ics", ContentType: "text/calendar; charset=utf-8", Data: data}, nil
	}
	return File{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// MarkdownToHTML converts notes Markdown into an HTML fragment.
func MarkdownToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%[1]s</title>
<style>body{font-family:-apple-system,Helvetica,Arial,sans-serif;max-width:48rem;margin:2rem auto;padding:0 1rem;line-height:1.5}</style>
</head>
<body>
<h1>%[1]s</h1>
%[2]s
%[3]s</body>
</html>
`

func renderHTML(doc Document) ([]byte, error) {
	body, err := MarkdownToHTML(doc.Notes)
	if err != nil {
		return nil, err
	}
	meta := ""
	if line := lecture.MetaLine(&doc.Course, &doc.Lecturer, &doc.LectureDate); line != "" {
		meta = `<p class="meta">` + html.EscapeString(line) + "</p>"
	}
	return []byte(fmt.Sprintf(htmlTemplate, html.EscapeString(doc.Title), meta, body)), nil
}
