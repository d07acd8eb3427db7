// Package translate post-processes generated replies into the display language.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zhouzirui/nova-ai/backend/pkg/log"
)

// Result is the outcome of Process. When Err is set, Text is the untouched reply.
type Result struct {
	Text       string
	Original   string
	Language   string
	Translated bool
	Err        error
}

// Config controls the pipeline.
type Config struct {
	Enabled        bool
	TargetLanguage string
}

// Service detects the language of a reply and translates it when it differs
// from the target. It never fails the caller.
type Service struct {
	enabled    bool
	target     string
	detector   Detector
	translator Translator
}

// NewService wires the pipeline. A nil translator disables translation.
func NewService(cfg Config, detector Detector, translator Translator) *Service {
	target := strings.ToLower(strings.TrimSpace(cfg.TargetLanguage))
	if target == "" {
		target = "en"
	}
	if detector == nil {
		detector = WhatlangDetector{}
	}

	return &Service{
		enabled:    cfg.Enabled && translator != nil,
		target:     target,
		detector:   detector,
		translator: translator,
	}
}

// Enabled reports whether replies are translated at all.
func (s *Service) Enabled() bool {
	return s != nil && s.enabled
}

// Target returns the display language code.
func (s *Service) Target() string {
	return s.target
}

// Process returns the reply in the display language.
func (s *Service) Process(ctx context.Context, reply string) Result {
	result := Result{Text: reply, Original: reply}
	if !s.Enabled() {
		return result
	}

	lang, err := s.detector.Detect(reply)
	if errors.Is(err, ErrUndetectable) {
		// nothing to translate from; shown as written
		log.Infof("[translate] keeping reply as is: %v", err)
		return result
	}
	if err != nil {
		log.Warnf("[translate] language detection failed: %v", err)
		result.Err = fmt.Errorf("detect language: %w", err)
		return result
	}
	result.Language = lang

	if lang == s.target {
		return result
	}

	translated, err := s.translator.Translate(ctx, reply, s.target)
	if err != nil {
		log.Warnf("[translate] %s -> %s failed: %v", lang, s.target, err)
		result.Err = fmt.Errorf("translate %s to %s: %w", lang, s.target, err)
		return result
	}

	log.Infof("[translate] translated reply %s -> %s", lang, s.target)
	result.Text = translated
	result.Translated = true
	return result
}
