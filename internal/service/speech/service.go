// Package speech wraps the Volcengine speech recognition and synthesis services.
package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	speechmodel "github.com/zhouzirui/nova-ai/backend/internal/model/speech"
	"github.com/zhouzirui/nova-ai/backend/pkg/log"
)

var (
	// ErrNoSpeech means the recogniser heard nothing it could transcribe.
	ErrNoSpeech = errors.New("could not understand audio")
	// ErrNotConfigured means speech credentials are missing.
	ErrNotConfigured = errors.New("speech service is not configured: set SPEECH_APP_ID and SPEECH_ACCESS_TOKEN")
)

// Service is the voice I/O adapter used by the HTTP layer and the read-aloud speaker.
type Service struct {
	config *speechmodel.SpeechConfig
	asr    *ASRClient
	tts    *TTSClient
}

// Option customises a Service.
type Option func(*Service)

// WithEndpoints points the clients at alternative websocket endpoints.
func WithEndpoints(asrURL, ttsURL string) Option {
	return func(s *Service) {
		if asrURL != "" {
			s.asr.endpoint = asrURL
		}
		if ttsURL != "" {
			s.tts.endpoint = ttsURL
		}
	}
}

// WithChunkInterval sets the pause between uploaded audio chunks.
func WithChunkInterval(d time.Duration) Option {
	return func(s *Service) {
		s.asr.chunkInterval = d
	}
}

// NewService creates the speech service.
func NewService(config *speechmodel.SpeechConfig, opts ...Option) *Service {
	if config == nil {
		config = &speechmodel.SpeechConfig{}
	}
	s := &Service{
		config: config,
		asr:    NewASRClient(config),
		tts:    NewTTSClient(config),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether credentials are configured.
func (s *Service) Enabled() bool {
	_, _, err := credentials(s.config)
	return err == nil
}

// Transcribe turns one recorded utterance into text. A blank transcript is
// reported as ErrNoSpeech.
func (s *Service) Transcribe(ctx context.Context, audio io.Reader, format string) (*speechmodel.ASRResponse, error) {
	if !s.Enabled() {
		return nil, ErrNotConfigured
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	started := time.Now()
	resp, err := s.asr.Transcribe(ctx, &speechmodel.ASRRequest{
		RequestID: uuid.NewString(),
		AudioData: audio,
		Format:    format,
		Language:  s.config.ASRLanguage,
	})
	if err != nil {
		log.Errorf("[speech] transcription failed: %v", err)
		return nil, fmt.Errorf("transcribe: %w", err)
	}

	if strings.TrimSpace(resp.Text) == "" {
		log.Infof("[speech] empty transcript, request=%s", resp.RequestID)
		return nil, ErrNoSpeech
	}

	log.Infof("[speech] transcribed %d chars in %s", len(resp.Text), time.Since(started).Round(time.Millisecond))
	return resp, nil
}

// Synthesize renders text in the configured display language.
func (s *Service) Synthesize(ctx context.Context, text string) (*speechmodel.TTSResponse, error) {
	if !s.Enabled() {
		return nil, ErrNotConfigured
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.tts.Synthesize(ctx, &speechmodel.TTSRequest{
		RequestID: uuid.NewString(),
		Text:      text,
		Voice:     s.config.TTSVoice,
		Format:    s.config.TTSFormat,
		Language:  s.config.TTSLanguage,
	})
	if err != nil {
		log.Errorf("[speech] synthesis failed: %v", err)
		return nil, fmt.Errorf("synthesize: %w", err)
	}

	log.Infof("[speech] synthesized %d bytes of %s", len(resp.AudioData), resp.Format)
	return resp, nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.Timeout > 0 {
		return context.WithTimeout(ctx, s.config.Timeout)
	}
	return context.WithCancel(ctx)
}
