//go:build whisper

package record

import "testing"

func TestWebrtcDetectorValidatesFrames(t *testing.T) {
	det, err := newWebrtcDetector(16000, 2)
	if err != nil {
		t.Fatalf("newWebrtcDetector: %v", err)
	}
	if !det.v.ValidRateAndFrameLength(16000, 16000*20/1000) {
		t.Fatal("20ms frames at 16kHz should be valid")
	}
	if det.v.ValidRateAndFrameLength(16000, 100) {
		t.Fatal("100-sample frames should be rejected")
	}

	speech, err := det.IsSpeech(make([]int16, 320))
	if err != nil {
		t.Fatalf("IsSpeech: %v", err)
	}
	if speech {
		t.Fatal("silence reported as speech")
	}
}
