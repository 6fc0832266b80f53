package record

import "time"

// VoiceDetector classifies one PCM frame as speech or not.
type VoiceDetector interface {
	IsSpeech(frame []int16) (bool, error)
}

// SilenceTracker decides when a recording has gone quiet for long enough.
// Silence is only counted once speech has been heard.
type SilenceTracker struct {
	detector VoiceDetector
	window   time.Duration
	frame    time.Duration

	heard  bool
	silent time.Duration
}

// NewSilenceTracker returns a tracker for frames of frameDur. A zero window never stops.
func NewSilenceTracker(d VoiceDetector, window, frameDur time.Duration) *SilenceTracker {
	return &SilenceTracker{detector: d, window: window, frame: frameDur}
}

// Observe feeds one frame and reports whether the recording should stop.
func (t *SilenceTracker) Observe(frame []int16) (bool, error) {
	if t.window <= 0 || t.detector == nil {
		return false, nil
	}
	speech, err := t.detector.IsSpeech(frame)
	if err != nil {
		return false, err
	}
	if speech {
		t.heard = true
		t.silent = 0
		return false, nil
	}
	if !t.heard {
		return false, nil
	}
	t.silent += t.frame
	return t.silent >= t.window, nil
}

// HeardSpeech reports whether any voiced frame was seen.
func (t *SilenceTracker) HeardSpeech() bool { return t.heard }
