// Package otosink plays PCM through the system audio device.
package otosink

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"
)

// SampleRate is the only rate the device context is opened with; assets must match it.
const SampleRate = 44100

// Sink owns a single oto context; oto allows one per process.
type Sink struct {
	ctx *oto.Context
}

func New() (*Sink, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready
	return &Sink{ctx: ctx}, nil
}

func (s *Sink) Play(ctx context.Context, pcm io.Reader, sampleRate int) error {
	if sampleRate != SampleRate {
		return fmt.Errorf("sample rate %d, device runs at %d", sampleRate, SampleRate)
	}
	player := s.ctx.NewPlayer(pcm)
	defer player.Close()

	player.Play()
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return player.Err()
}
