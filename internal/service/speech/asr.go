package speech

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	speechmodel "github.com/zhouzirui/nova-ai/backend/internal/model/speech"
	"github.com/zhouzirui/nova-ai/backend/pkg/log"
)

const (
	defaultASREndpoint = "wss://openspeech.bytedance.com/api/v3/sauc/bigmodel_nostream"

	// 16 kHz, 16 bit, mono: 200 ms of audio per chunk.
	asrChunkSize     = 6400
	asrChunkInterval = 200 * time.Millisecond

	asrSuccessCode = 20000000
)

// ASRClient talks to the Volcengine big-model streaming recogniser.
type ASRClient struct {
	config        *speechmodel.SpeechConfig
	endpoint      string
	chunkInterval time.Duration
	dialer        *websocket.Dialer
}

// NewASRClient returns a recogniser client for the production endpoint.
func NewASRClient(config *speechmodel.SpeechConfig) *ASRClient {
	return &ASRClient{
		config:        config,
		endpoint:      defaultASREndpoint,
		chunkInterval: asrChunkInterval,
		dialer:        &websocket.Dialer{HandshakeTimeout: 30 * time.Second},
	}
}

type asrRequestPayload struct {
	User struct {
		UID string `json:"uid,omitempty"`
	} `json:"user"`
	Audio struct {
		Language string `json:"language,omitempty"`
		Format   string `json:"format"`
		Codec    string `json:"codec,omitempty"`
		Rate     int    `json:"rate,omitempty"`
		Bits     int    `json:"bits,omitempty"`
		Channel  int    `json:"channel,omitempty"`
	} `json:"audio"`
	Request struct {
		ModelName      string `json:"model_name"`
		EnableITN      bool   `json:"enable_itn,omitempty"`
		EnablePunc     bool   `json:"enable_punc,omitempty"`
		ShowUtterances bool   `json:"show_utterances,omitempty"`
		ResultType     string `json:"result_type,omitempty"`
		EndWindowSize  int    `json:"end_window_size,omitempty"`
	} `json:"request"`
}

type asrUtterance struct {
	Text     string `json:"text"`
	Definite bool   `json:"definite"`
}

type asrServerPayload struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Sequence int    `json:"sequence"`
	Result   struct {
		Text       string         `json:"text"`
		Utterances []asrUtterance `json:"utterances,omitempty"`
	} `json:"result"`
	AudioInfo struct {
		Duration int64 `json:"duration"`
	} `json:"audio_info"`
}

// Transcribe streams one recorded utterance and waits for the final transcript.
// An empty transcript is returned as-is; callers decide what silence means.
func (c *ASRClient) Transcribe(ctx context.Context, req *speechmodel.ASRRequest) (*speechmodel.ASRResponse, error) {
	appID, token, err := credentials(c.config)
	if err != nil {
		return nil, err
	}
	if req.AudioData == nil {
		return nil, errors.New("no audio data to send")
	}

	audio, err := io.ReadAll(req.AudioData)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("no audio data to send")
	}

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	resourceID := "volc.bigasr.sauc.duration"
	if c.config.ConcurrentMode {
		resourceID = "volc.bigasr.sauc.concurrent"
	}

	header := http.Header{}
	header.Set("X-Api-App-Key", appID)
	header.Set("X-Api-Access-Key", token)
	header.Set("X-Api-Resource-Id", resourceID)
	header.Set("X-Api-Connect-Id", requestID)

	conn, resp, err := c.dialer.DialContext(ctx, c.endpoint, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ASR websocket: %w", err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if resp != nil {
		if logID := resp.Header.Get("X-Tt-Logid"); logID != "" {
			log.Infof("[speech] ASR connected, logid=%s request=%s", logID, requestID)
		}
	}

	payload, err := json.Marshal(c.buildRequest(req, requestID))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ASR request: %w", err)
	}
	payload, err = compress(payload, compressionGzip)
	if err != nil {
		return nil, fmt.Errorf("failed to compress ASR request: %w", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, newRequestFrame(payload, compressionGzip).marshal()); err != nil {
		return nil, fmt.Errorf("failed to send ASR request: %w", err)
	}

	// The server answers while audio is still flowing, so the upload runs
	// alongside the reader. A failed upload closes the socket to unblock it.
	sendErr := make(chan error, 1)
	go func() {
		err := c.streamAudio(ctx, conn, audio)
		sendErr <- err
		if err != nil {
			conn.Close()
		}
	}()

	result, err := c.readTranscript(conn, requestID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		select {
		case sErr := <-sendErr:
			if sErr != nil {
				return nil, fmt.Errorf("failed to send audio data: %w", sErr)
			}
		default:
		}
		return nil, err
	}
	return result, nil
}

func (c *ASRClient) buildRequest(req *speechmodel.ASRRequest, requestID string) *asrRequestPayload {
	p := &asrRequestPayload{}
	p.User.UID = requestID

	p.Audio.Format = firstNonEmpty(req.Format, "wav")
	p.Audio.Language = firstNonEmpty(req.Language, c.config.ASRLanguage)
	p.Audio.Codec = "raw"
	p.Audio.Rate = 16000
	p.Audio.Bits = 16
	p.Audio.Channel = 1

	p.Request.ModelName = "bigmodel"
	p.Request.EnableITN = true
	p.Request.EnablePunc = true
	p.Request.ShowUtterances = true
	p.Request.ResultType = "full"
	// server-side end of utterance after 800 ms of silence
	p.Request.EndWindowSize = 800
	return p
}

func (c *ASRClient) streamAudio(ctx context.Context, conn *websocket.Conn, audio []byte) error {
	// sequence 1 is taken by the full client request
	seq := int32(2)
	for start := 0; start < len(audio); start += asrChunkSize {
		end := min(start+asrChunkSize, len(audio))
		last := end == len(audio)

		chunk, err := compress(audio[start:end], compressionGzip)
		if err != nil {
			return fmt.Errorf("compress audio chunk: %w", err)
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, newAudioFrame(chunk, seq, last, compressionGzip).marshal()); err != nil {
			return fmt.Errorf("send audio chunk: %w", err)
		}
		seq++

		if last {
			return nil
		}
		if c.chunkInterval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.chunkInterval):
			}
		}
	}
	return nil
}

func (c *ASRClient) readTranscript(conn *websocket.Conn, requestID string) (*speechmodel.ASRResponse, error) {
	var (
		text     string
		duration int64
	)

	for {
		if c.config.Timeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(c.config.Timeout))
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("failed to read ASR response: %w", err)
		}

		f, err := parseFrame(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode ASR frame: %w", err)
		}

		switch f.msgType {
		case serverError:
			body, _ := f.body()
			return nil, fmt.Errorf("ASR error %d: %s", f.errorCode, string(body))

		case fullServerResponse:
			body, err := f.body()
			if err != nil {
				return nil, fmt.Errorf("failed to decompress ASR payload: %w", err)
			}

			var msg asrServerPayload
			if err := json.Unmarshal(body, &msg); err != nil {
				log.Warnf("[speech] ignoring undecodable ASR payload: %v", err)
				continue
			}
			if msg.Code != 0 && msg.Code != asrSuccessCode {
				return nil, fmt.Errorf("ASR API error %d: %s", msg.Code, msg.Message)
			}

			if candidate := transcriptOf(msg); candidate != "" {
				text = candidate
			}
			if msg.AudioInfo.Duration > 0 {
				duration = msg.AudioInfo.Duration
			}

			if f.final() || msg.Sequence < 0 {
				return &speechmodel.ASRResponse{
					RequestID: requestID,
					Text:      strings.TrimSpace(text),
					Duration:  duration,
					CreatedAt: time.Now(),
				}, nil
			}
		}
	}
}

func transcriptOf(msg asrServerPayload) string {
	if msg.Result.Text != "" {
		return msg.Result.Text
	}
	parts := make([]string, 0, len(msg.Result.Utterances))
	for _, u := range msg.Result.Utterances {
		if t := strings.TrimSpace(u.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func credentials(cfg *speechmodel.SpeechConfig) (appID, token string, err error) {
	if cfg == nil {
		return "", "", ErrNotConfigured
	}
	appID = strings.TrimSpace(cfg.AppID)
	token = firstNonEmpty(strings.TrimSpace(cfg.AccessToken), strings.TrimSpace(cfg.APIKey))
	if appID == "" || token == "" {
		return "", "", ErrNotConfigured
	}
	return appID, token, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
