package record

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/wav"
)

func TestWriteWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recording.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	samples := []int16{0, 1000, -1000, 32767, -32768}
	if err := WriteWAV(f, samples, 16000); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
	_ = f.Close()

	r, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()
	dec := wav.NewDecoder(r)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dec.SampleRate != 16000 || dec.NumChans != 1 || dec.BitDepth != 16 {
		t.Fatalf("unexpected format rate=%d chans=%d bits=%d", dec.SampleRate, dec.NumChans, dec.BitDepth)
	}
	if len(buf.Data) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(buf.Data))
	}
	for i, s := range samples {
		if buf.Data[i] != int(s) {
			t.Fatalf("sample %d: got %d want %d", i, buf.Data[i], s)
		}
	}
}

func TestWriteWAVRejectsBadRate(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "bad.wav"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := WriteWAV(f, nil, 0); err == nil {
		t.Fatal("expected error for zero rate")
	}
}

type scriptedDetector struct{ script []bool }

func (d *scriptedDetector) IsSpeech([]int16) (bool, error) {
	v := d.script[0]
	d.script = d.script[1:]
	return v, nil
}

func TestSilenceTrackerWaitsForSpeech(t *testing.T) {
	// 3 silent frames before speech must not count.
	det := &scriptedDetector{script: []bool{false, false, false, true, false, false, true, false, false, false}}
	tr := NewSilenceTracker(det, 60*time.Millisecond, 20*time.Millisecond)
	var stopAt int
	for i := 0; i < 10; i++ {
		stop, err := tr.Observe(nil)
		if err != nil {
			t.Fatalf("Observe: %v", err)
		}
		if stop {
			stopAt = i
			break
		}
	}
	if stopAt != 9 {
		t.Fatalf("expected stop on frame 9, got %d", stopAt)
	}
	if !tr.HeardSpeech() {
		t.Fatal("expected speech to be recorded")
	}
}

func TestSilenceTrackerDisabled(t *testing.T) {
	tr := NewSilenceTracker(&scriptedDetector{}, 0, 20*time.Millisecond)
	if stop, err := tr.Observe(nil); stop || err != nil {
		t.Fatalf("disabled tracker should never stop: %v %v", stop, err)
	}
}

func TestPeak(t *testing.T) {
	if got := Peak([]int16{100, -16384, 200}); got != 0.5 {
		t.Fatalf("expected 0.5, got %v", got)
	}
	if got := Peak(nil); got != 0 {
		t.Fatalf("expected 0 for empty frame, got %v", got)
	}
}
