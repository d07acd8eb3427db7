package speech

import "time"

// SpeechConfig holds Volcengine speech credentials and voice defaults.
type SpeechConfig struct {
	AppID          string `json:"appId"`
	AccessToken    string `json:"accessToken"`
	APIKey         string `json:"apiKey,omitempty"` // legacy alias of AccessToken
	ConcurrentMode bool   `json:"concurrentMode"`   // ASR concurrent resource instead of the hourly one

	ASRLanguage string `json:"asrLanguage"`

	TTSVoice    string  `json:"ttsVoice"`
	TTSSpeed    float32 `json:"ttsSpeed"`
	TTSVolume   float32 `json:"ttsVolume"`
	TTSLanguage string  `json:"ttsLanguage"`
	TTSFormat   string  `json:"ttsFormat"`

	Timeout time.Duration `json:"timeout"`
}
