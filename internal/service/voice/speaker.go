// Package voice plays synthesised replies through a pluggable player.
package voice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	speechmodel "github.com/zhouzirui/nova-ai/backend/internal/model/speech"
	"github.com/zhouzirui/nova-ai/backend/pkg/log"
)

// ErrEmptyText is returned when there is nothing to read aloud.
var ErrEmptyText = errors.New("nothing to read aloud")

// Synthesizer turns text into encoded audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (*speechmodel.TTSResponse, error)
}

// Player plays an audio file and returns when playback is over.
type Player interface {
	Play(ctx context.Context, path, format string) error
}

// Speaker reads replies aloud. Only one read-aloud runs at a time, so at
// most one temporary audio file exists.
type Speaker struct {
	mu          sync.Mutex
	synthesizer Synthesizer
	tempDir     string
}

// NewSpeaker returns a speaker that writes temporary audio under tempDir
// (the system default when empty).
func NewSpeaker(synthesizer Synthesizer, tempDir string) *Speaker {
	return &Speaker{synthesizer: synthesizer, tempDir: tempDir}
}

// ReadAloud synthesises text to a temporary file, plays it synchronously and
// removes the file whatever the outcome.
func (s *Speaker) ReadAloud(ctx context.Context, text string, player Player) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	audio, err := s.synthesizer.Synthesize(ctx, text)
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}

	format := audio.Format
	if format == "" {
		format = "mp3"
	}

	f, err := os.CreateTemp(s.tempDir, "nova-tts-*."+format)
	if err != nil {
		return fmt.Errorf("create temp audio: %w", err)
	}
	path := f.Name()
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warnf("[voice] failed to remove %s: %v", path, err)
		}
	}()

	if _, err := f.Write(audio.AudioData); err != nil {
		f.Close()
		return fmt.Errorf("write temp audio: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp audio: %w", err)
	}

	if err := player.Play(ctx, path, format); err != nil {
		return fmt.Errorf("play: %w", err)
	}
	return nil
}
