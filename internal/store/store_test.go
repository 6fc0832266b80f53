package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"lecturenotes/internal/lecture"
	"lecturenotes/internal/store"
	"lecturenotes/internal/testsupport"
)

func TestCreateAndGet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	created, err := s.Create(ctx, lecture.Meta{Title: "  Intro to Graphs ", Course: "CS201"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !lecture.ValidID(created.ID) {
		t.Fatalf("expected uuid id, got %q", created.ID)
	}
	if created.Title != "Intro to Graphs" {
		t.Fatalf("title not trimmed: %q", created.Title)
	}
	if created.Status != lecture.StatusUploaded {
		t.Fatalf("expected UPLOADED, got %s", created.Status)
	}
	if created.Lecturer != nil || created.TranscriptText != nil {
		t.Fatalf("optional fields should be nil: %#v", created)
	}

	fetched, err := s.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if fetched == nil || lecture.Deref(fetched.Course) != "CS201" {
		t.Fatalf("unexpected fetched lecture: %#v", fetched)
	}

	missing, err := s.Get(ctx, lecture.NewID())
	if err != nil || missing != nil {
		t.Fatalf("expected nil, nil for unknown id, got %v, %v", missing, err)
	}
}

func TestCreateRequiresTitle(t *testing.T) {
	s := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	if _, err := s.Create(context.Background(), lecture.Meta{Title: "   "}); err == nil {
		t.Fatal("expected error for blank title")
	}
}

func TestListNewestFirst(t *testing.T) {
	s := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	var ids []string
	for _, title := range []string{"first", "second", "third"} {
		l, err := s.Create(ctx, lecture.Meta{Title: title})
		if err != nil {
			t.Fatalf("Create %s: %v", title, err)
		}
		ids = append(ids, l.ID)
		time.Sleep(2 * time.Millisecond)
	}
	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 lectures, got %d", len(list))
	}
	if list[0].ID != ids[2] || list[2].ID != ids[0] {
		t.Fatalf("expected newest first, got %s, %s, %s", list[0].Title, list[1].Title, list[2].Title)
	}
}

func TestTranscriptAndNotesTransitions(t *testing.T) {
	s := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	l, err := s.Create(ctx, lecture.Meta{Title: "Thermodynamics"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.SetStatus(ctx, l.ID, lecture.StatusError, "boom"); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if err := s.SetTranscript(ctx, l.ID, "entropy always increases", "en", 61.5); err != nil {
		t.Fatalf("SetTranscript: %v", err)
	}
	got, _ := s.Get(ctx, l.ID)
	if got.Status != lecture.StatusTranscribed || got.Transcript() != "entropy always increases" {
		t.Fatalf("unexpected after transcript: %#v", got)
	}
	if got.ErrorMessage != nil {
		t.Fatalf("error message should be cleared, got %q", *got.ErrorMessage)
	}
	if got.DurationSeconds == nil || *got.DurationSeconds != 61.5 {
		t.Fatalf("duration not stored: %v", got.DurationSeconds)
	}

	if err := s.SetNotes(ctx, l.ID, "# Notes"); err != nil {
		t.Fatalf("SetNotes: %v", err)
	}
	got, _ = s.Get(ctx, l.ID)
	if got.Status != lecture.StatusCompleted || got.Notes() != "# Notes" {
		t.Fatalf("unexpected after notes: %#v", got)
	}
}

func TestDeleteReportsNotFound(t *testing.T) {
	s := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	l, err := s.Create(ctx, lecture.Meta{Title: "Temp"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Delete(ctx, l.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, l.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if err := s.SetStatus(ctx, l.ID, lecture.StatusError, ""); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on SetStatus, got %v", err)
	}
}

func TestResetStuck(t *testing.T) {
	s := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	transcribing, _ := s.Create(ctx, lecture.Meta{Title: "a"})
	_ = s.SetStatus(ctx, transcribing.ID, lecture.StatusTranscribing, "")

	withTranscript, _ := s.Create(ctx, lecture.Meta{Title: "b"})
	_ = s.SetTranscript(ctx, withTranscript.ID, "text", "en", 1)
	_ = s.SetStatus(ctx, withTranscript.ID, lecture.StatusGeneratingNotes, "")

	noTranscript, _ := s.Create(ctx, lecture.Meta{Title: "c"})
	_ = s.SetStatus(ctx, noTranscript.ID, lecture.StatusGeneratingNotes, "")

	n, err := s.ResetStuck(ctx)
	if err != nil {
		t.Fatalf("ResetStuck: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 rows reset, got %d", n)
	}
	cases := map[string]lecture.Status{
		transcribing.ID:   lecture.StatusUploaded,
		withTranscript.ID: lecture.StatusTranscribed,
		noTranscript.ID:   lecture.StatusError,
	}
	for id, want := range cases {
		got, _ := s.Get(ctx, id)
		if got.Status != want {
			t.Fatalf("%s: expected %s, got %s", got.Title, want, got.Status)
		}
	}

	uploaded, err := s.ListByStatus(ctx, lecture.StatusUploaded)
	if err != nil || len(uploaded) != 1 || uploaded[0].ID != transcribing.ID {
		t.Fatalf("ListByStatus mismatch: %v, %v", uploaded, err)
	}
	counts, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if counts[lecture.StatusError] != 1 || counts[lecture.StatusTranscribed] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestReopenKeepsData(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	l, err := s.Create(context.Background(), lecture.Meta{Title: "persisted"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_ = s.Close()

	s2 := testsupport.MustOpenStore(t, cfg)
	got, err := s2.Get(context.Background(), l.ID)
	if err != nil || got == nil || got.Title != "persisted" {
		t.Fatalf("expected lecture after reopen, got %v, %v", got, err)
	}
}
