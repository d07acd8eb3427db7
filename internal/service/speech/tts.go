package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	speechmodel "github.com/zhouzirui/nova-ai/backend/internal/model/speech"
	"github.com/zhouzirui/nova-ai/backend/pkg/log"
)

const (
	defaultTTSEndpoint = "wss://openspeech.bytedance.com/api/v3/tts/unidirectional/stream"

	ttsResourceDefault = "volc.service_type.10029"
	ttsResourceMega    = "volc.megatts.default"
	ttsResourceSeed    = "seed-tts-2.0"

	ttsSuccessCode = 3000
)

// errResourceMismatch marks a voice that belongs to another resource family;
// the client retries with the next candidate resource.
var errResourceMismatch = errors.New("resource ID is mismatched with speaker related resource")

// TTSClient talks to the Volcengine unidirectional streaming synthesiser.
type TTSClient struct {
	config   *speechmodel.SpeechConfig
	endpoint string
	dialer   *websocket.Dialer
}

// NewTTSClient returns a synthesiser client for the production endpoint.
func NewTTSClient(config *speechmodel.SpeechConfig) *TTSClient {
	return &TTSClient{
		config:   config,
		endpoint: defaultTTSEndpoint,
		dialer:   &websocket.Dialer{HandshakeTimeout: 30 * time.Second},
	}
}

type ttsRequestPayload struct {
	User struct {
		UID string `json:"uid"`
	} `json:"user"`
	ReqParams struct {
		Speaker     string         `json:"speaker"`
		Text        string         `json:"text"`
		AudioParams ttsAudioParams `json:"audio_params"`
		Language    string         `json:"language,omitempty"`
	} `json:"req_params"`
}

type ttsAudioParams struct {
	Format      string  `json:"format"`
	SampleRate  int     `json:"sample_rate"`
	SpeedRatio  float32 `json:"speed_ratio,omitempty"`
	VolumeRatio float32 `json:"volume_ratio,omitempty"`
}

type ttsServerPayload struct {
	ReqID    string `json:"reqid"`
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Sequence int    `json:"sequence"`
	Data     string `json:"data"`
	Addition struct {
		Duration string `json:"duration,omitempty"`
	} `json:"addition"`
}

// Synthesize renders req.Text to audio, trying each resource family the
// voice may belong to.
func (c *TTSClient) Synthesize(ctx context.Context, req *speechmodel.TTSRequest) (*speechmodel.TTSResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, errors.New("TTS text is empty")
	}
	appID, token, err := credentials(c.config)
	if err != nil {
		return nil, err
	}

	voice := firstNonEmpty(req.Voice, c.config.TTSVoice)
	var lastErr error
	for i, resourceID := range ttsResourceCandidates(voice) {
		resp, err := c.synthesizeWith(ctx, req, appID, token, voice, resourceID)
		if err == nil {
			if i > 0 {
				log.Infof("[speech] voice %s served by fallback resource %s", voice, resourceID)
			}
			return resp, nil
		}
		if !errors.Is(err, errResourceMismatch) {
			return nil, err
		}
		log.Warnf("[speech] voice %s rejected by resource %s", voice, resourceID)
		lastErr = err
	}
	return nil, fmt.Errorf("TTS synthesis failed for voice %s: %w", voice, lastErr)
}

func (c *TTSClient) synthesizeWith(ctx context.Context, req *speechmodel.TTSRequest, appID, token, voice, resourceID string) (*speechmodel.TTSResponse, error) {
	connectID := uuid.NewString()

	header := http.Header{}
	header.Set("X-Api-App-Key", appID)
	header.Set("X-Api-Access-Key", token)
	header.Set("X-Api-Resource-Id", resourceID)
	header.Set("X-Api-Connect-Id", connectID)

	conn, resp, err := c.dialer.DialContext(ctx, c.endpoint, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to TTS websocket: %w", err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if resp != nil {
		if logID := resp.Header.Get("X-Tt-Logid"); logID != "" {
			log.Infof("[speech] TTS connected, logid=%s", logID)
		}
	}

	requestID := firstNonEmpty(req.RequestID, connectID)
	format := firstNonEmpty(req.Format, c.config.TTSFormat, "mp3")
	if format == "wav" {
		format = "mp3"
	}

	payload, err := json.Marshal(c.buildRequest(req, requestID, voice, format))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal TTS request: %w", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, newRequestFrame(payload, compressionNone).marshal()); err != nil {
		return nil, fmt.Errorf("failed to send TTS request: %w", err)
	}

	var (
		audio    bytes.Buffer
		duration int64
	)
	for {
		if c.config.Timeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(c.config.Timeout))
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("failed to read TTS response: %w", err)
		}

		f, err := parseFrame(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode TTS frame: %w", err)
		}

		switch f.msgType {
		case serverError:
			body, _ := f.body()
			if strings.Contains(string(body), errResourceMismatch.Error()) {
				return nil, fmt.Errorf("TTS error %d: %w", f.errorCode, errResourceMismatch)
			}
			return nil, fmt.Errorf("TTS error %d: %s", f.errorCode, string(body))

		case audioOnlyServerResult:
			chunk, err := f.body()
			if err != nil {
				return nil, fmt.Errorf("failed to decompress audio chunk: %w", err)
			}
			audio.Write(chunk)

		case fullServerResponse:
			body, err := f.body()
			if err != nil {
				return nil, fmt.Errorf("failed to decompress TTS payload: %w", err)
			}

			var msg ttsServerPayload
			if len(body) > 0 {
				if err := json.Unmarshal(body, &msg); err != nil {
					log.Warnf("[speech] ignoring undecodable TTS payload: %v", err)
				} else {
					if msg.Code != 0 && msg.Code != ttsSuccessCode {
						if strings.Contains(msg.Message, errResourceMismatch.Error()) {
							return nil, fmt.Errorf("TTS API error %d: %w", msg.Code, errResourceMismatch)
						}
						return nil, fmt.Errorf("TTS API error %d: %s", msg.Code, msg.Message)
					}
					if msg.ReqID != "" {
						requestID = msg.ReqID
					}
					if ms, err := strconv.ParseInt(msg.Addition.Duration, 10, 64); err == nil {
						duration = ms
					}
					if msg.Data != "" {
						chunk, err := base64.StdEncoding.DecodeString(msg.Data)
						if err != nil {
							return nil, fmt.Errorf("failed to decode base64 audio chunk: %w", err)
						}
						audio.Write(chunk)
					}
				}
			}

			finished := (f.hasEvent() && f.event == eventSessionFinished) || f.final() || msg.Sequence < 0
			if !finished {
				continue
			}
			if audio.Len() == 0 {
				return nil, errors.New("TTS audio is empty")
			}
			return &speechmodel.TTSResponse{
				RequestID: requestID,
				AudioData: audio.Bytes(),
				Duration:  duration,
				Format:    format,
				CreatedAt: time.Now(),
			}, nil
		}
	}
}

func (c *TTSClient) buildRequest(req *speechmodel.TTSRequest, uid, voice, format string) *ttsRequestPayload {
	p := &ttsRequestPayload{}
	p.User.UID = uid
	p.ReqParams.Speaker = voice
	p.ReqParams.Text = req.Text
	p.ReqParams.Language = firstNonEmpty(req.Language, c.config.TTSLanguage)
	p.ReqParams.AudioParams.Format = format
	p.ReqParams.AudioParams.SampleRate = 24000

	if speed := orDefault(req.Speed, c.config.TTSSpeed); speed > 0 && speed != 1 {
		p.ReqParams.AudioParams.SpeedRatio = speed
	}
	if volume := orDefault(req.Volume, c.config.TTSVolume); volume > 0 && volume != 1 {
		p.ReqParams.AudioParams.VolumeRatio = volume
	}
	return p
}

// ttsResourceCandidates orders the resource families to try for voice.
// Cloned voices (S_ prefix) only live on the mega resource; big-model voices
// usually live on seed-tts.
func ttsResourceCandidates(voice string) []string {
	if strings.HasPrefix(voice, "S_") {
		return []string{ttsResourceMega}
	}

	normalized := strings.ToLower(voice)
	for _, hint := range []string{"bigtts", "seed", "megatts", "uranus", "venus", "jupiter", "saturn", "mars"} {
		if strings.Contains(normalized, hint) {
			return []string{ttsResourceSeed, ttsResourceDefault}
		}
	}
	return []string{ttsResourceDefault, ttsResourceSeed}
}

func orDefault(v, fallback float32) float32 {
	if v > 0 {
		return v
	}
	return fallback
}
