package store

import (
	"database/sql"
	"fmt"
	"time"

	"lecturenotes/internal/lecture"
)

func scanLecture(scanner interface{ Scan(dest ...any) error }) (*lecture.Lecture, error) {
	var (
		id          string
		title       string
		course      sql.NullString
		lecturer    sql.NullString
		lectureDate sql.NullString
		statusStr   string
		createdRaw  string
		updatedRaw  string
		audioPath   string
		transcript  sql.NullString
		language    sql.NullString
		duration    sql.NullFloat64
		notes       sql.NullString
		errorMsg    sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&title,
		&course,
		&lecturer,
		&lectureDate,
		&statusStr,
		&createdRaw,
		&updatedRaw,
		&audioPath,
		&transcript,
		&language,
		&duration,
		&notes,
		&errorMsg,
	); err != nil {
		return nil, err
	}
	l := &lecture.Lecture{
		ID:                 id,
		Title:              title,
		Course:             nullToPtr(course),
		Lecturer:           nullToPtr(lecturer),
		LectureDate:        nullToPtr(lectureDate),
		Status:             lecture.Status(statusStr),
		CreatedAt:          parseTime(createdRaw),
		UpdatedAt:          parseTime(updatedRaw),
		AudioFilePath:      audioPath,
		TranscriptText:     nullToPtr(transcript),
		TranscriptLanguage: nullToPtr(language),
		NotesText:          nullToPtr(notes),
		ErrorMessage:       nullToPtr(errorMsg),
	}
	if duration.Valid {
		d := duration.Float64
		l.DurationSeconds = &d
	}
	return l, nil
}

func collect(rows *sql.Rows) ([]*lecture.Lecture, error) {
	defer rows.Close()
	var out []*lecture.Lecture
	for rows.Next() {
		l, err := scanLecture(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lecture: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lectures: %w", err)
	}
	return out, nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullToPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// timeLayout is fixed width so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		if t, err = time.Parse(time.RFC3339Nano, raw); err != nil {
			return time.Time{}
		}
	}
	return t.UTC()
}
