package pipeline

import (
	"fmt"
	"io"
	"sort"
	"sync/atomic"
	"time"

	"lecturenotes/internal/lecture"
)

// Metrics counts pipeline activity since start.
type Metrics struct {
	uploads          atomic.Int64
	transcribed      atomic.Int64
	transcribeFailed atomic.Int64
	notes            atomic.Int64
	notesFailed      atomic.Int64
	deletes          atomic.Int64
	queueDropped     atomic.Int64
	hooksSent        atomic.Int64
	hooksDropped     atomic.Int64
	started          time.Time
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Uploads          int64   `json:"uploads"`
	Transcribed      int64   `json:"transcribed"`
	TranscribeFailed int64   `json:"transcribe_failed"`
	Notes            int64   `json:"notes"`
	NotesFailed      int64   `json:"notes_failed"`
	Deletes          int64   `json:"deletes"`
	QueueDropped     int64   `json:"queue_dropped"`
	HooksSent        int64   `json:"hooks_sent"`
	HooksDropped     int64   `json:"hooks_dropped"`
	UptimeSec        float64 `json:"uptime_sec"`
}

func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		Uploads:          m.uploads.Load(),
		Transcribed:      m.transcribed.Load(),
		TranscribeFailed: m.transcribeFailed.Load(),
		Notes:            m.notes.Load(),
		NotesFailed:      m.notesFailed.Load(),
		Deletes:          m.deletes.Load(),
		QueueDropped:     m.queueDropped.Load(),
		HooksSent:        m.hooksSent.Load(),
		HooksDropped:     m.hooksDropped.Load(),
		UptimeSec:        time.Since(m.started).Seconds(),
	}
}

// WritePrometheus writes the counters, queue depth and per-status lecture
// counts in the Prometheus text format.
func WritePrometheus(w io.Writer, s Snapshot, queueDepth int, byStatus map[lecture.Status]int) {
	fmt.Fprintf(w, "lecturenotes_uploads_total %d\n", s.Uploads)
	fmt.Fprintf(w, "lecturenotes_transcriptions_total %d\n", s.Transcribed)
	fmt.Fprintf(w, "lecturenotes_transcriptions_failed_total %d\n", s.TranscribeFailed)
	fmt.Fprintf(w, "lecturenotes_notes_total %d\n", s.Notes)
	fmt.Fprintf(w, "lecturenotes_notes_failed_total %d\n", s.NotesFailed)
	fmt.Fprintf(w, "lecturenotes_deletes_total %d\n", s.Deletes)
	fmt.Fprintf(w, "lecturenotes_queue_dropped_total %d\n", s.QueueDropped)
	fmt.Fprintf(w, "lecturenotes_hooks_sent_total %d\n", s.HooksSent)
	fmt.Fprintf(w, "lecturenotes_hooks_dropped_total %d\n", s.HooksDropped)
	fmt.Fprintf(w, "lecturenotes_queue_depth %d\n", queueDepth)
	fmt.Fprintf(w, "lecturenotes_uptime_seconds %.0f\n", s.UptimeSec)

	statuses := make([]string, 0, len(byStatus))
	for st := range byStatus {
		statuses = append(statuses, string(st))
	}
	sort.Strings(statuses)
	for _, st := range statuses {
		fmt.Fprintf(w, "lecturenotes_lectures{status=%q} %d\n", st, byStatus[lecture.Status(st)])
	}
}
