package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"lecturenotes/internal/lecture"
)

// ErrNotFound is returned when a lecture id has no row.
var ErrNotFound = errors.New("lecture not found")

const lectureColumns = "id, title, course, lecturer, lecture_date, status, created_at, updated_at, audio_file_path, transcript_text, transcript_language, duration_seconds, notes_text, error_message"

// Create inserts a new lecture in the UPLOADED state.
func (s *Store) Create(ctx context.Context, meta lecture.Meta) (*lecture.Lecture, error) {
	meta = meta.Normalize()
	if meta.Title == "" {
		return nil, errors.New("create lecture: title required")
	}
	id := lecture.NewID()
	timestamp := formatTime(time.Now())
	if _, err := s.exec(
		ctx,
		`INSERT INTO lectures (
            id, title, course, lecturer, lecture_date, status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		meta.Title,
		nullableString(meta.Course),
		nullableString(meta.Lecturer),
		nullableString(meta.LectureDate),
		lecture.StatusUploaded,
		timestamp,
		timestamp,
	); err != nil {
		return nil, fmt.Errorf("insert lecture: %w", err)
	}
	return s.Get(ctx, id)
}

// Get fetches a lecture. It returns nil, nil when the id is unknown.
func (s *Store) Get(ctx context.Context, id string) (*lecture.Lecture, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+lectureColumns+` FROM lectures WHERE id = ?`, id)
	l, err := scanLecture(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get lecture: %w", err)
	}
	return l, nil
}

// List returns every lecture, newest first.
func (s *Store) List(ctx context.Context) ([]*lecture.Lecture, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+lectureColumns+` FROM lectures ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list lectures: %w", err)
	}
	return collect(rows)
}

// ListByStatus returns lectures in any of the given statuses, oldest first.
func (s *Store) ListByStatus(ctx context.Context, statuses ...lecture.Status) ([]*lecture.Lecture, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(statuses)), ",")
	args := make([]any, len(statuses))
	for i, st := range statuses {
		args[i] = st
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+lectureColumns+` FROM lectures WHERE status IN (`+placeholders+`) ORDER BY created_at ASC, rowid ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list by status: %w", err)
	}
	return collect(rows)
}

// SetStatus moves a lecture to status. A non-empty errMsg is stored as the error message.
func (s *Store) SetStatus(ctx context.Context, id string, status lecture.Status, errMsg string) error {
	var (
		res sql.Result
		err error
	)
	if errMsg != "" {
		res, err = s.exec(ctx,
			`UPDATE lectures SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
			status, errMsg, formatTime(time.Now()), id)
	} else {
		res, err = s.exec(ctx,
			`UPDATE lectures SET status = ?, updated_at = ? WHERE id = ?`,
			status, formatTime(time.Now()), id)
	}
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	return expectOne(res)
}

// SetAudioPath records where the uploaded audio was saved.
func (s *Store) SetAudioPath(ctx context.Context, id, path string) error {
	res, err := s.exec(ctx,
		`UPDATE lectures SET audio_file_path = ?, updated_at = ? WHERE id = ?`,
		path, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("set audio path: %w", err)
	}
	return expectOne(res)
}

// SetTranscript stores the transcription result and marks the lecture TRANSCRIBED.
func (s *Store) SetTranscript(ctx context.Context, id, text, language string, durationSec float64) error {
	var duration any
	if durationSec > 0 {
		duration = durationSec
	}
	res, err := s.exec(ctx,
		`UPDATE lectures
         SET transcript_text = ?, transcript_language = ?, duration_seconds = ?, status = ?,
             error_message = NULL, updated_at = ?
         WHERE id = ?`,
		text, nullableString(language), duration, lecture.StatusTranscribed, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("set transcript: %w", err)
	}
	return expectOne(res)
}

// SetNotes stores generated notes and marks the lecture COMPLETED.
func (s *Store) SetNotes(ctx context.Context, id, notes string) error {
	res, err := s.exec(ctx,
		`UPDATE lectures SET notes_text = ?, status = ?, error_message = NULL, updated_at = ? WHERE id = ?`,
		notes, lecture.StatusCompleted, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("set notes: %w", err)
	}
	return expectOne(res)
}

// Delete removes a lecture row.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.exec(ctx, `DELETE FROM lectures WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete lecture: %w", err)
	}
	return expectOne(res)
}

// ResetStuck rewinds lectures left mid-flight by a previous process.
// It returns the number of rows touched.
func (s *Store) ResetStuck(ctx context.Context) (int64, error) {
	now := formatTime(time.Now())
	var total int64
	steps := []struct {
		query string
		args  []any
	}{
		{
			`UPDATE lectures SET status = ?, updated_at = ? WHERE status = ?`,
			[]any{lecture.StatusUploaded, now, lecture.StatusTranscribing},
		},
		{
			`UPDATE lectures SET status = ?, updated_at = ?
             WHERE status = ? AND transcript_text IS NOT NULL AND transcript_text != ''`,
			[]any{lecture.StatusTranscribed, now, lecture.StatusGeneratingNotes},
		},
		{
			`UPDATE lectures SET status = ?, error_message = ?, updated_at = ? WHERE status = ?`,
			[]any{lecture.StatusError, "Interrupted before a transcript was stored", now, lecture.StatusGeneratingNotes},
		},
	}
	for _, step := range steps {
		res, err := s.exec(ctx, step.query, step.args...)
		if err != nil {
			return total, fmt.Errorf("reset stuck: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}
	return total, nil
}

// Count returns the number of lectures per status.
func (s *Store) Count(ctx context.Context) (map[lecture.Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM lectures GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count lectures: %w", err)
	}
	defer rows.Close()
	out := make(map[lecture.Status]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		out[lecture.Status(status)] = n
	}
	return out, rows.Err()
}
