//go:build whisper

package record

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"lecturenotes/internal/config"

	"github.com/gordonklaus/portaudio"
	vad "github.com/maxhawkins/go-webrtcvad"
	"github.com/sirupsen/logrus"
)

// Available reports whether this build can capture audio.
func Available() bool { return true }

// Devices lists input devices.
func Devices() ([]Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}
	defer portaudio.Terminate()

	devs, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	def, _ := portaudio.DefaultInputDevice()
	out := []Device{}
	for i, d := range devs {
		if d.MaxInputChannels < 1 {
			continue
		}
		out = append(out, Device{
			Index:     i,
			Name:      d.Name,
			Channels:  d.MaxInputChannels,
			LatencyMs: d.DefaultLowInputLatency.Seconds() * 1000,
			Default:   def != nil && d.Name == def.Name,
		})
	}
	return out, nil
}

// webrtcDetector adapts the WebRTC VAD to VoiceDetector.
type webrtcDetector struct {
	v    *vad.VAD
	rate int
	pcm  []byte
}

func newWebrtcDetector(rate, aggressiveness int) (*webrtcDetector, error) {
	v, err := vad.New()
	if err != nil {
		return nil, fmt.Errorf("vad init: %w", err)
	}
	if err := v.SetMode(aggressiveness); err != nil {
		return nil, fmt.Errorf("vad mode: %w", err)
	}
	return &webrtcDetector{v: v, rate: rate}, nil
}

func (d *webrtcDetector) IsSpeech(frame []int16) (bool, error) {
	if cap(d.pcm) < len(frame)*2 {
		d.pcm = make([]byte, len(frame)*2)
	}
	d.pcm = d.pcm[:len(frame)*2]
	for i, s := range frame {
		binary.LittleEndian.PutUint16(d.pcm[i*2:], uint16(s))
	}
	return d.v.Process(d.rate, d.pcm)
}

// Record captures audio until ctx ends or a stop condition is met.
func Record(ctx context.Context, cfg *config.Config, opts Options, logger *logrus.Logger) (*Result, error) {
	rate := cfg.Audio.SampleRate
	frameSamples := rate * cfg.Audio.FrameMS / 1000
	det, err := newWebrtcDetector(rate, cfg.VAD.Aggressiveness)
	if err != nil {
		return nil, err
	}
	if !det.v.ValidRateAndFrameLength(rate, frameSamples) {
		return nil, fmt.Errorf("invalid frame_ms %d for sample_rate %d", cfg.Audio.FrameMS, rate)
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}
	defer portaudio.Terminate()

	dev, err := selectDevice(cfg.Audio.DeviceName)
	if err != nil {
		return nil, err
	}

	var tracker *SilenceTracker
	if opts.StopOnSilence > 0 {
		tracker = NewSilenceTracker(det, opts.StopOnSilence, time.Duration(cfg.Audio.FrameMS)*time.Millisecond)
	}

	buf := make([]int16, frameSamples)
	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: 1,
			Latency:  dev.DefaultLowInputLatency,
		},
		SampleRate:      float64(rate),
		FramesPerBuffer: frameSamples,
	}, &buf)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("start stream: %w", err)
	}
	defer stream.Stop()

	logger.Infof("recording from %s @ %d Hz", dev.Name, rate)

	res := &Result{SampleRate: rate, StoppedBy: "interrupt"}
	maxSamples := 0
	if opts.Max > 0 {
		maxSamples = int(opts.Max.Seconds() * float64(rate))
	}
	for ctx.Err() == nil {
		if err := stream.Read(); err != nil {
			if errors.Is(err, portaudio.InputOverflowed) {
				logger.Warn("input overflow")
				continue
			}
			return nil, fmt.Errorf("stream read: %w", err)
		}
		res.Samples = append(res.Samples, buf...)
		if opts.OnLevel != nil {
			opts.OnLevel(Peak(buf))
		}
		if maxSamples > 0 && len(res.Samples) >= maxSamples {
			res.StoppedBy = "max"
			break
		}
		if tracker != nil {
			stop, err := tracker.Observe(buf)
			if err != nil {
				logger.Warnf("vad: %v", err)
			} else if stop {
				res.StoppedBy = "silence"
				break
			}
		}
	}
	res.Duration = time.Duration(float64(len(res.Samples)) / float64(rate) * float64(time.Second))
	return res, nil
}

func selectDevice(preferred string) (*portaudio.DeviceInfo, error) {
	devs, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	if preferred != "" {
		for _, d := range devs {
			if d.MaxInputChannels > 0 && strings.Contains(strings.ToLower(d.Name), strings.ToLower(preferred)) {
				return d, nil
			}
		}
	}
	if def, err := portaudio.DefaultInputDevice(); err == nil && def != nil {
		return def, nil
	}
	for _, d := range devs {
		if d.MaxInputChannels > 0 {
			return d, nil
		}
	}
	return nil, fmt.Errorf("no input devices found")
}
