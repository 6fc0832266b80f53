package pipeline

import (
	"sync"
	"time"

	"lecturenotes/internal/lecture"
)

// Event is a pipeline milestone kept for status output.
type Event struct {
	Time      time.Time `json:"time"`
	LectureID string    `json:"lecture_id"`
	Title     string    `json:"title"`
	Stage     string    `json:"stage"`
	Detail    string    `json:"detail,omitempty"`
}

type eventLog struct {
	mu     sync.Mutex
	limit  int
	events []Event
}

func newEventLog(limit int) *eventLog {
	if limit < 1 {
		limit = 10
	}
	return &eventLog{limit: limit, events: make([]Event, 0, limit)}
}

func (e *eventLog) add(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
	if len(e.events) > e.limit {
		e.events = e.events[len(e.events)-e.limit:]
	}
}

func (e *eventLog) snapshot() []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Event, len(e.events))
	copy(out, e.events)
	return out
}

func (p *Pipeline) record(l *lecture.Lecture, stage, detail string) {
	p.events.add(Event{
		Time:      time.Now(),
		LectureID: l.ID,
		Title:     l.Title,
		Stage:     stage,
		Detail:    detail,
	})
}

// Events returns the most recent pipeline events, oldest first.
func (p *Pipeline) Events() []Event {
	return p.events.snapshot()
}
