package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
)

const sampleNotes = `## Summary
Graphs model pairwise relations.

## Key Concepts
- **Vertex**: a node
- Edge
  - directed
  - undirected

1. first
2. second
`

func sampleDoc() Document {
	return Document{
		ID:          "3f2b7c1e-0000-4000-8000-000000000001",
		Title:       "Intro to Graphs",
		Notes:       sampleNotes,
		Course:      "CS201",
		Lecturer:    "Dr. Ada",
		LectureDate: "2026-03-14",
		CreatedAt:   time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC),
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"":         FormatPDF,
		"PDF":      FormatPDF,
		"txt":      FormatText,
		"text":     FormatText,
		"markdown": FormatMD,
		"ics":      FormatICS,
	}
	for in, want := range cases {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("docx"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestRenderText(t *testing.T) {
	f, err := Render(FormatText, Document{Title: "T", Notes: "body"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if f.Name != "lecture_notes.txt" || !strings.HasPrefix(f.ContentType, "text/plain") {
		t.Fatalf("unexpected file meta: %+v", f)
	}
	if string(f.Data) != "T\n\nbody" {
		t.Fatalf("unexpected text: %q", f.Data)
	}
}

func TestRenderMarkdown(t *testing.T) {
	f, err := Render(FormatMD, Document{Title: "T", Notes: "body"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(f.Data) != "# T\n\nbody" || f.Name != "lecture_notes.md" {
		t.Fatalf("unexpected markdown export: %+v", f)
	}
}

func TestRenderHTMLEscapesTitle(t *testing.T) {
	doc := sampleDoc()
	doc.Title = "Graphs <&> Trees"
	f, err := Render(FormatHTML, doc)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := string(f.Data)
	if !strings.Contains(out, "<h1>Graphs &lt;&amp;&gt; Trees</h1>") {
		t.Fatalf("title not escaped: %s", out)
	}
	if !strings.Contains(out, "<h2>Summary</h2>") || !strings.Contains(out, "<strong>Vertex</strong>") {
		t.Fatalf("markdown not rendered: %s", out)
	}
	if !strings.Contains(out, "CS201 • Dr. Ada • 2026-03-14") {
		t.Fatalf("meta line missing: %s", out)
	}
}

func TestRenderPDF(t *testing.T) {
	f, err := Render(FormatPDF, sampleDoc())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if f.Name != "lecture_notes.pdf" || f.ContentType != "application/pdf" {
		t.Fatalf("unexpected file meta: %+v", f)
	}
	if !bytes.HasPrefix(f.Data, []byte("%PDF-")) {
		t.Fatalf("output is not a pdf: %q", f.Data[:16])
	}
}

func TestRenderPDFEmptyNotes(t *testing.T) {
	if _, err := Render(FormatPDF, Document{Title: "Only a title"}); err != nil {
		t.Fatalf("Render: %v", err)
	}
}

func TestNotesBlocks(t *testing.T) {
	blocks, err := notesBlocks(sampleNotes)
	if err != nil {
		t.Fatalf("notesBlocks: %v", err)
	}
	want := []block{
		{kind: blockHeading, level: 2, text: "Summary"},
		{kind: blockParagraph, text: "Graphs model pairwise relations."},
		{kind: blockHeading, level: 2, text: "Key Concepts"},
		{kind: blockBullet, level: 0, text: "Vertex: a node"},
		{kind: blockBullet, level: 0, text: "Edge"},
		{kind: blockBullet, level: 1, text: "directed"},
		{kind: blockBullet, level: 1, text: "undirected"},
		{kind: blockBullet, level: 0, text: "1. first"},
		{kind: blockBullet, level: 0, text: "2. second"},
	}
	if len(blocks) != len(want) {
		t.Fatalf("expected %d blocks, got %d: %+v", len(want), len(blocks), blocks)
	}
	for i := range want {
		if blocks[i] != want[i] {
			t.Fatalf("block %d: got %+v, want %+v", i, blocks[i], want[i])
		}
	}
}

func TestRenderICS(t *testing.T) {
	f, err := Render(FormatICS, sampleDoc())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if f.Name != "lecture.ics" || !strings.HasPrefix(f.ContentType, "text/calendar") {
		t.Fatalf("unexpected file meta: %+v", f)
	}
	cal, err := ics.ParseCalendar(bytes.NewReader(f.Data))
	if err != nil {
		t.Fatalf("parse calendar: %v", err)
	}
	events := cal.Events()
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	ev := events[0]
	if got := ev.GetProperty(ics.ComponentPropertySummary).Value; got != "Intro to Graphs" {
		t.Fatalf("summary = %q", got)
	}
	if got := ev.GetProperty(ics.ComponentPropertyDtStart).Value; got != "20260314" {
		t.Fatalf("dtstart = %q", got)
	}
	if got := ev.GetProperty(ics.ComponentPropertyLocation).Value; got != "Dr. Ada" {
		t.Fatalf("location = %q", got)
	}
}

func TestRenderICSFallsBackToCreatedAt(t *testing.T) {
	doc := sampleDoc()
	doc.LectureDate = "sometime in spring"
	f, err := Render(FormatICS, doc)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(f.Data), "20260315") {
		t.Fatalf("expected created_at date in calendar: %s", f.Data)
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	if _, err := Render(Format("docx"), sampleDoc()); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
