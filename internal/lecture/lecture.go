// Package lecture defines the lecture record shared by the server, the
// HTTP client and the CLI.
package lecture

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the processing stage of a lecture.
type Status string

const (
	StatusUploaded        Status = "UPLOADED"
	StatusTranscribing    Status = "TRANSCRIBING"
	StatusTranscribed     Status = "TRANSCRIBED"
	StatusGeneratingNotes Status = "GENERATING_NOTES"
	StatusCompleted       Status = "COMPLETED"
	StatusError           Status = "ERROR"
)

// ParseStatus maps a case-insensitive name to a Status.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusUploaded, StatusTranscribing, StatusTranscribed,
		StatusGeneratingNotes, StatusCompleted, StatusError:
		return st, true
	}
	return "", false
}

// Terminal reports whether a client waiting on the pipeline can stop polling.
func (s Status) Terminal() bool {
	return s == StatusTranscribed || s == StatusCompleted || s == StatusError
}

// Busy reports whether a worker currently owns the lecture.
func (s Status) Busy() bool {
	return s == StatusTranscribing || s == StatusGeneratingNotes
}

// Label returns the display text and CSS class for a status.
func Label(s Status) (text, class string) {
	upper := strings.ToUpper(string(s))
	switch Status(upper) {
	case StatusCompleted:
		return "Completed", "completed"
	case StatusTranscribing, StatusTranscribed, StatusGeneratingNotes:
		return strings.ToLower(strings.Replace(upper, "_", " ", 1)), "generating_notes"
	case StatusError:
		return "Error", "error"
	}
	return "Uploaded", "transcribing"
}

// Lecture is the stored record. Optional values are pointers so they encode as null.
type Lecture struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Course             *string   `json:"course"`
	Lecturer           *string   `json:"lecturer"`
	LectureDate        *string   `json:"lecture_date"`
	Status             Status    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	AudioFilePath      string    `json:"audio_file_path"`
	TranscriptText     *string   `json:"transcript_text"`
	TranscriptLanguage *string   `json:"transcript_language"`
	DurationSeconds    *float64  `json:"duration_seconds"`
	NotesText          *string   `json:"notes_text"`
	ErrorMessage       *string   `json:"error_message"`
}

// Summary is the list view of a lecture.
type Summary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Course      *string   `json:"course"`
	Lecturer    *string   `json:"lecturer"`
	LectureDate *string   `json:"lecture_date"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Summary projects the list view.
func (l *Lecture) Summary() Summary {
	return Summary{
		ID:          l.ID,
		Title:       l.Title,
		Course:      l.Course,
		Lecturer:    l.Lecturer,
		LectureDate: l.LectureDate,
		Status:      l.Status,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

// Transcript returns the transcript or "".
func (l *Lecture) Transcript() string { return Deref(l.TranscriptText) }

// Notes returns the notes or "".
func (l *Lecture) Notes() string { return Deref(l.NotesText) }

// Meta is the user-supplied description of an upload.
type Meta struct {
	Title       string
	Course      string
	Lecturer    string
	LectureDate string
}

// Normalize trims every field.
func (m Meta) Normalize() Meta {
	return Meta{
		Title:       strings.TrimSpace(m.Title),
		Course:      strings.TrimSpace(m.Course),
		Lecturer:    strings.TrimSpace(m.Lecturer),
		LectureDate: strings.TrimSpace(m.LectureDate),
	}
}

// MetaLine joins the non-empty course, lecturer and date with " • ".
func MetaLine(course, lecturer, date *string) string {
	parts := make([]string, 0, 3)
	for _, p := range []*string{course, lecturer, date} {
		if v := Deref(p); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " • ")
}

// NotesResponse is returned after note generation.
type NotesResponse struct {
	NotesText string `json:"notes_text"`
	Status    Status `json:"status"`
}

// NewID returns a fresh lecture identifier.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id is a well-formed lecture identifier.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && strings.TrimSpace(id) == id && id != ""
}

// Ptr returns nil for an empty string.
func Ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
