//go:build !whisper

package record

import (
	"context"

	"lecturenotes/internal/config"

	"github.com/sirupsen/logrus"
)

// Available reports whether this build can capture audio.
func Available() bool { return false }

// Devices lists input devices.
func Devices() ([]Device, error) { return nil, ErrUnavailable }

// Record captures audio until ctx ends or a stop condition is met.
func Record(context.Context, *config.Config, Options, *logrus.Logger) (*Result, error) {
	return nil, ErrUnavailable
}
