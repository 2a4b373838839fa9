// Package audio loads sound effects by name and hands the decoded PCM to a Sink.
package audio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/go-mp3"
)

// Sink plays 16-bit little-endian stereo PCM and blocks until playback ends or ctx is done.
type Sink interface {
	Play(ctx context.Context, pcm io.Reader, sampleRate int) error
}

// Player resolves sound names to <dir>/<name>.mp3.
type Player struct {
	dir  string
	sink Sink
}

func NewPlayer(dir string, sink Sink) *Player {
	return &Player{dir: dir, sink: sink}
}

func (p *Player) Play(ctx context.Context, name string) error {
	path := filepath.Join(p.dir, name+".mp3")
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open sound %q: %w", name, err)
	}
	defer f.Close()

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return fmt.Errorf("decode sound %q: %w", name, err)
	}
	if err := p.sink.Play(ctx, decoder, decoder.SampleRate()); err != nil {
		return fmt.Errorf("play sound %q: %w", name, err)
	}
	return nil
}

// Nop discards every sound. Used when no asset directory is configured.
type Nop struct{}

func (Nop) Play(context.Context, string) error { return nil }
