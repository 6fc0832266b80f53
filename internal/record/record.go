// Package record captures microphone audio for upload.
package record

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrUnavailable is returned when the binary was built without audio capture.
var ErrUnavailable = errors.New("microphone capture not available; rebuild with -tags whisper")

// Options control a single recording.
type Options struct {
	// Max stops the recording after this long; zero means no limit.
	Max time.Duration
	// StopOnSilence stops once no speech has been heard for this long; zero disables it.
	StopOnSilence time.Duration
	// OnLevel, when set, receives the peak level (0..1) of each frame.
	OnLevel func(float64)
}

// Result is the captured audio.
type Result struct {
	Samples    []int16
	SampleRate int
	Duration   time.Duration
	// StoppedBy is "interrupt", "max" or "silence".
	StoppedBy string
}

// WriteWAV encodes mono 16-bit PCM as a WAV file.
func WriteWAV(w io.WriteSeeker, samples []int16, rate int) error {
	if rate <= 0 {
		return fmt.Errorf("invalid sample rate %d", rate)
	}
	enc := wav.NewEncoder(w, rate, 16, 1, 1)
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}

// Peak returns the absolute peak of a frame scaled to 0..1.
func Peak(frame []int16) float64 {
	var peak int32
	for _, s := range frame {
		v := int32(s)
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return float64(peak) / 32768.0
}
