//go:build whisper

package asr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"lecturenotes/internal/config"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/sirupsen/logrus"
)

// whisperEngine runs whisper.cpp. The model is shared, so calls are serialized.
type whisperEngine struct {
	mu       sync.Mutex
	model    whisper.Model
	language string
	threads  int
	logger   *logrus.Logger
}

func newEngine(cfg *config.Config, logger *logrus.Logger) (Engine, error) {
	logger.Infof("loading whisper model %q", cfg.ASR.ModelPath)
	model, err := whisper.New(cfg.ASR.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	return &whisperEngine{
		model:    model,
		language: strings.TrimSpace(cfg.ASR.Language),
		threads:  cfg.ASR.Threads,
		logger:   logger,
	}, nil
}

func (e *whisperEngine) Process(ctx context.Context, samples []float32) (string, string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	wctx, err := e.model.NewContext()
	if err != nil {
		return "", "", fmt.Errorf("whisper context: %w", err)
	}
	if e.threads > 0 {
		wctx.SetThreads(uint(e.threads))
	}
	lang := e.language
	if lang == "" {
		lang = "auto"
	}
	if err := wctx.SetLanguage(lang); err != nil {
		e.logger.Warnf("set language %q: %v", lang, err)
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return "", "", fmt.Errorf("whisper process: %w", err)
	}
	parts := make([]string, 0, 64)
	for {
		seg, err := wctx.NextSegment()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", "", err
		}
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	detected := wctx.DetectedLanguage()
	if detected == "" && lang != "auto" {
		detected = lang
	}
	return strings.Join(parts, " "), detected, nil
}

func (e *whisperEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model.Close()
}
