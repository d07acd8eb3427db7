package speech

import "io"

// ASRRequest carries one recorded utterance.
type ASRRequest struct {
	RequestID string    `json:"requestId"`
	AudioData io.Reader `json:"-"`
	Format    string    `json:"format"`   // wav, mp3, ogg, pcm
	Language  string    `json:"language"` // en-US, zh-CN, ...
}

// TTSRequest asks for one utterance of speech.
type TTSRequest struct {
	RequestID string  `json:"requestId"`
	Text      string  `json:"text"`
	Voice     string  `json:"voice"`
	Speed     float32 `json:"speed"`  // 0.5-2.0
	Volume    float32 `json:"volume"` // 0.0-1.0
	Format    string  `json:"format"` // mp3, ogg_opus, pcm
	Language  string  `json:"language"`
}
