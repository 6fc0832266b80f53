package export

import (
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

// lectureDateLayouts are the date formats accepted from the upload form.
var lectureDateLayouts = []string{"2006-01-02", "02/01/2006", "2 January 2006", "January 2, 2006", time.RFC3339}

func lectureDay(doc Document) time.Time {
	raw := strings.TrimSpace(doc.LectureDate)
	for _, layout := range lectureDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	if !doc.CreatedAt.IsZero() {
		return doc.CreatedAt
	}
	return time.Now()
}

func renderICS(doc Document) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//lecturenotes//Lecture Notes//EN")

	uid := doc.ID
	if uid == "" {
		uid = "lecture"
	}
	day := lectureDay(doc)
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	event := cal.AddEvent(uid + "@lecturenotes")
	event.SetDtStampTime(time.Now().UTC())
	if !doc.CreatedAt.IsZero() {
		event.SetCreatedTime(doc.CreatedAt.UTC())
	}
	event.SetAllDayStartAt(start)
	event.SetAllDayEndAt(start.AddDate(0, 0, 1))
	event.SetSummary(doc.Title)
	if doc.Notes != "" {
		event.SetDescription(doc.Notes)
	}
	if doc.Course != "" {
		event.AddProperty(ics.ComponentPropertyCategories, doc.Course)
	}
	if doc.Lecturer != "" {
		event.SetLocation(doc.Lecturer)
	}
	return []byte(cal.Serialize()), nil
}
