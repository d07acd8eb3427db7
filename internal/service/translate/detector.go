package translate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abadojack/whatlanggo"
)

// ErrUndetectable is returned when the text carries no usable language signal.
var ErrUndetectable = errors.New("no language features in text")

// minConfidence rejects guesses on short greetings and code, where trigram
// statistics score well below 0.1 for whatever language they pick.
const minConfidence = 0.5

// Detector guesses the ISO 639-1 code of a text.
type Detector interface {
	Detect(text string) (string, error)
}

// WhatlangDetector detects languages with trigram statistics.
type WhatlangDetector struct{}

// Detect returns the lowercase ISO 639-1 code of text.
func (WhatlangDetector) Detect(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrUndetectable
	}

	info := whatlanggo.Detect(text)
	code := info.Lang.Iso6391()
	if code == "" {
		return "", fmt.Errorf("detect language: %w", ErrUndetectable)
	}
	if info.Confidence < minConfidence {
		return "", fmt.Errorf("detect language: %s at confidence %.2f: %w", code, info.Confidence, ErrUndetectable)
	}
	return strings.ToLower(code), nil
}
