package speech

import "time"

// ASRResponse is the final transcript of an utterance.
type ASRResponse struct {
	RequestID string    `json:"requestId"`
	Text      string    `json:"text"`
	Duration  int64     `json:"duration"` // milliseconds
	CreatedAt time.Time `json:"createdAt"`
}

// TTSResponse holds synthesised audio.
type TTSResponse struct {
	RequestID string    `json:"requestId"`
	AudioData []byte    `json:"-"`
	Duration  int64     `json:"duration"` // milliseconds
	Format    string    `json:"format"`
	CreatedAt time.Time `json:"createdAt"`
}
