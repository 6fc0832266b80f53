//go:build !whisper

package asr

import (
	"context"

	"lecturenotes/internal/config"

	"github.com/sirupsen/logrus"
)

type unavailableEngine struct{}

func newEngine(_ *config.Config, logger *logrus.Logger) (Engine, error) {
	logger.Warn("speech engine unavailable; uploads will fail transcription until rebuilt with -tags whisper")
	return unavailableEngine{}, nil
}

func (unavailableEngine) Process(context.Context, []float32) (string, string, error) {
	return "", "", ErrUnavailable
}

func (unavailableEngine) Close() error { return nil }
