package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"lecturenotes/internal/lecture"
)

const testID = "3f1c2d4e-5a6b-4c7d-8e9f-0a1b2c3d4e5f"

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c, err := New(strings.TrimPrefix(srv.URL, "http://"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewRejectsEmptyURL(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatal("expected error for empty url")
	}
}

func TestCreateStreamsMultipart(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/lectures", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.FormValue("title") != "Optics" || r.FormValue("course") != "PHYS" {
			t.Errorf("unexpected fields %v", r.MultipartForm.Value)
		}
		if _, ok := r.MultipartForm.Value["lecturer"]; ok {
			t.Errorf("empty lecturer should not be sent")
		}
		f, hdr, err := r.FormFile("audio_file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		data, _ := io.ReadAll(f)
		if hdr.Filename != "optics.wav" || string(data) != "RIFFDATA" {
			t.Errorf("unexpected file %q %q", hdr.Filename, data)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(lecture.Lecture{ID: testID, Title: "Optics", Status: lecture.StatusUploaded})
	})
	c := newTestClient(t, mux)

	l, err := c.Create(context.Background(), lecture.Meta{Title: " Optics ", Course: "PHYS"}, "/tmp/rec/optics.wav", strings.NewReader("RIFFDATA"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if l.ID != testID || l.Status != lecture.StatusUploaded {
		t.Fatalf("unexpected lecture %+v", l)
	}
}

func TestCreateRequiresTitle(t *testing.T) {
	c, _ := New("127.0.0.1:1")
	if _, err := c.Create(context.Background(), lecture.Meta{}, "a.wav", strings.NewReader("")); err == nil {
		t.Fatal("expected title error")
	}
}

func TestErrorsCarryDetail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/lectures/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Lecture not found."}`))
	})
	mux.HandleFunc("DELETE /api/lectures/{id}", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	c := newTestClient(t, mux)

	_, err := c.Get(context.Background(), testID)
	if !IsNotFound(err) || !strings.Contains(err.Error(), "Lecture not found.") {
		t.Fatalf("expected not found API error, got %v", err)
	}
	err = c.Delete(context.Background(), testID)
	apiErr, ok := err.(*APIError)
	if !ok || apiErr.StatusCode != http.StatusInternalServerError || apiErr.Detail != "boom" {
		t.Fatalf("expected plain-text detail, got %#v", err)
	}
}

func TestExportUsesDispositionName(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/lectures/{id}/export", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") != "md" {
			t.Errorf("format not forwarded: %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="lecture_notes.md"`)
		_, _ = w.Write([]byte("# Optics"))
	})
	c := newTestClient(t, mux)

	d, err := c.Export(context.Background(), testID, "md")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if d.Name != "lecture_notes.md" || string(d.Body) != "# Optics" || !strings.HasPrefix(d.ContentType, "text/markdown") {
		t.Fatalf("unexpected download %+v", d)
	}
}

func TestExportFallbackNameUsesCanonicalFormat(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/lectures/{id}/export", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Optics"))
	})
	c := newTestClient(t, mux)

	cases := map[string]string{
		"text":     "lecture_notes.txt",
		"Markdown": "lecture_notes.md",
		"":         "lecture_notes.pdf",
		"pdf":      "lecture_notes.pdf",
	}
	for format, want := range cases {
		d, err := c.Export(context.Background(), testID, format)
		if err != nil {
			t.Fatalf("Export(%q): %v", format, err)
		}
		if d.Name != want {
			t.Fatalf("Export(%q) name = %q, want %q", format, d.Name, want)
		}
	}
}

func TestGenerateNotesAndList(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/lectures/{id}/generate-notes", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(lecture.NotesResponse{NotesText: "## Summary", Status: lecture.StatusCompleted})
	})
	mux.HandleFunc("GET /api/lectures", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]lecture.Summary{{ID: testID, Title: "Optics", Status: lecture.StatusCompleted}})
	})
	c := newTestClient(t, mux)

	nr, err := c.GenerateNotes(context.Background(), testID)
	if err != nil || nr.NotesText != "## Summary" || nr.Status != lecture.StatusCompleted {
		t.Fatalf("unexpected notes %+v, %v", nr, err)
	}
	list, err := c.List(context.Background())
	if err != nil || len(list) != 1 || list[0].Title != "Optics" {
		t.Fatalf("unexpected list %+v, %v", list, err)
	}
}

func TestWaitForPollsUntilTerminal(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/lectures/{id}", func(w http.ResponseWriter, r *http.Request) {
		st := lecture.StatusTranscribing
		if atomic.AddInt32(&calls, 1) >= 3 {
			st = lecture.StatusTranscribed
		}
		_ = json.NewEncoder(w).Encode(lecture.Lecture{ID: r.PathValue("id"), Status: st})
	})
	c := newTestClient(t, mux)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	l, err := c.WaitFor(ctx, testID, 10*time.Millisecond, func(l *lecture.Lecture) bool { return l.Status.Terminal() })
	if err != nil {
		t.Fatalf("WaitFor: %v", err)
	}
	if l.Status != lecture.StatusTranscribed || atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("unexpected result %s after %d polls", l.Status, calls)
	}
}
