package asr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lecturenotes/internal/config"

	"github.com/sirupsen/logrus"
)

// SampleRate is the rate every engine receives.
const SampleRate = 16000

// ErrUnavailable is returned by builds without a speech engine.
var ErrUnavailable = errors.New("built without whisper support (rebuild with -tags whisper)")

// Result is the outcome of transcribing one file.
type Result struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration_seconds"`
}

// Engine turns 16 kHz mono samples into text.
type Engine interface {
	Process(ctx context.Context, samples []float32) (text, language string, err error)
	Close() error
}

// Transcriber converts an audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (Result, error)
	Close() error
}

// New returns a file transcriber backed by the build's engine.
func New(cfg *config.Config, logger *logrus.Logger) (Transcriber, error) {
	eng, err := newEngine(cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewFileTranscriber(eng, cfg.ASR.FFmpeg, logger), nil
}

// FileTranscriber decodes files, converting non-WAV input with ffmpeg first.
type FileTranscriber struct {
	engine Engine
	ffmpeg string
	logger *logrus.Logger
}

// NewFileTranscriber wraps engine.
func NewFileTranscriber(engine Engine, ffmpeg string, logger *logrus.Logger) *FileTranscriber {
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	return &FileTranscriber{engine: engine, ffmpeg: ffmpeg, logger: logger}
}

// Transcribe runs the engine over the file at path.
func (t *FileTranscriber) Transcribe(ctx context.Context, path string) (Result, error) {
	t.logger.Infof("transcribing audio file at %q", path)
	samples, err := t.load(ctx, path)
	if err != nil {
		return Result{}, err
	}
	if len(samples) == 0 {
		return Result{}, errors.New("audio contains no samples")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	text, lang, err := t.engine.Process(ctx, samples)
	if err != nil {
		return Result{}, err
	}
	res := Result{
		Text:     strings.TrimSpace(text),
		Language: lang,
		Duration: float64(len(samples)) / SampleRate,
	}
	t.logger.Infof("transcription complete: language=%s, duration=%.2f seconds", res.Language, res.Duration)
	return res, nil
}

func (t *FileTranscriber) load(ctx context.Context, path string) ([]float32, error) {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		samples, err := ReadWAV(path)
		if err == nil {
			return samples, nil
		}
		t.logger.Debugf("wav decode failed, falling back to ffmpeg: %v", err)
	}
	tmp, err := os.CreateTemp("", "lecturenotes-*.wav")
	if err != nil {
		return nil, fmt.Errorf("temp wav: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer func() { _ = os.Remove(tmpPath) }()

	if err := Normalize(ctx, t.ffmpeg, path, tmpPath); err != nil {
		return nil, err
	}
	return ReadWAV(tmpPath)
}

// Close releases the engine.
func (t *FileTranscriber) Close() error {
	if t.engine == nil {
		return nil
	}
	return t.engine.Close()
}
