package lecture

import "testing"

func TestLabel(t *testing.T) {
	cases := []struct {
		status Status
		text   string
		class  string
	}{
		{StatusCompleted, "Completed", "completed"},
		{StatusTranscribing, "transcribing", "generating_notes"},
		{StatusTranscribed, "transcribed", "generating_notes"},
		{StatusGeneratingNotes, "generating notes", "generating_notes"},
		{StatusError, "Error", "error"},
		{StatusUploaded, "Uploaded", "transcribing"},
		{Status("completed"), "Completed", "completed"},
		{Status("weird"), "Uploaded", "transcribing"},
	}
	for _, c := range cases {
		text, class := Label(c.status)
		if text != c.text || class != c.class {
			t.Fatalf("Label(%q)=(%q,%q) want (%q,%q)", c.status, text, class, c.text, c.class)
		}
	}
}

func TestParseStatus(t *testing.T) {
	if st, ok := ParseStatus(" generating_notes "); !ok || st != StatusGeneratingNotes {
		t.Fatalf("expected GENERATING_NOTES, got %q ok=%v", st, ok)
	}
	if _, ok := ParseStatus("pending"); ok {
		t.Fatalf("pending is not a lecture status")
	}
}

func TestStatusPredicates(t *testing.T) {
	for _, s := range []Status{StatusTranscribed, StatusCompleted, StatusError} {
		if !s.Terminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
	if StatusUploaded.Terminal() || StatusTranscribing.Terminal() {
		t.Fatalf("in-flight statuses must not be terminal")
	}
	if !StatusTranscribing.Busy() || !StatusGeneratingNotes.Busy() || StatusCompleted.Busy() {
		t.Fatalf("busy predicate wrong")
	}
}

func TestMetaLine(t *testing.T) {
	if got := MetaLine(Ptr("CS101"), nil, Ptr("2024-03-01")); got != "CS101 • 2024-03-01" {
		t.Fatalf("unexpected meta line %q", got)
	}
	if got := MetaLine(nil, Ptr(""), nil); got != "" {
		t.Fatalf("expected empty meta line, got %q", got)
	}
}

func TestValidID(t *testing.T) {
	if !ValidID(NewID()) {
		t.Fatalf("generated id should be valid")
	}
	for _, id := range []string{"", "123", "not-a-uuid", " " + NewID()} {
		if ValidID(id) {
			t.Fatalf("%q should be invalid", id)
		}
	}
}
