package speech

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	speechmodel "github.com/zhouzirui/nova-ai/backend/internal/model/speech"
	speechsvc "github.com/zhouzirui/nova-ai/backend/internal/service/speech"
	"github.com/zhouzirui/nova-ai/backend/internal/service/voice"
)

type fakeTranscriber struct {
	text   string
	err    error
	format string
	audio  []byte
}

func (f *fakeTranscriber) Enabled() bool { return true }

func (f *fakeTranscriber) Transcribe(_ context.Context, audio io.Reader, format string) (*speechmodel.ASRResponse, error) {
	f.format = format
	f.audio, _ = io.ReadAll(audio)
	if f.err != nil {
		return nil, f.err
	}
	return &speechmodel.ASRResponse{Text: f.text}, nil
}

type fakeSynth struct{ err error }

func (f fakeSynth) Synthesize(context.Context, string) (*speechmodel.TTSResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &speechmodel.TTSResponse{AudioData: []byte("mp3!"), Format: "mp3"}, nil
}

func router(tr Transcriber, speaker ReadAloud) *chi.Mux {
	r := chi.NewRouter()
	New(tr, speaker).RegisterRoutes(r)
	return r
}

func transcribeRequest(t *testing.T, filename string, audio []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("audio", filename)
	require.NoError(t, err)
	_, _ = part.Write(audio)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/speech/transcribe", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestTranscribeReturnsText(t *testing.T) {
	tr := &fakeTranscriber{text: "what is ai"}
	resp := httptest.NewRecorder()

	router(tr, nil).ServeHTTP(resp, transcribeRequest(t, "clip.mp3", []byte("abc")))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"text":"what is ai"`)
	assert.Equal(t, "mp3", tr.format)
	assert.Equal(t, []byte("abc"), tr.audio)
}

func TestTranscribeErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{speechsvc.ErrNoSpeech, http.StatusUnprocessableEntity},
		{speechsvc.ErrNotConfigured, http.StatusServiceUnavailable},
		{errors.New("dial failed"), http.StatusBadGateway},
	}
	for _, tc := range cases {
		resp := httptest.NewRecorder()
		router(&fakeTranscriber{err: tc.err}, nil).ServeHTTP(resp, transcribeRequest(t, "clip.wav", []byte("abc")))
		assert.Equal(t, tc.code, resp.Code, tc.err.Error())
	}
}

func TestTranscribeRequiresAudio(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/speech/transcribe", strings.NewReader("not multipart"))
	resp := httptest.NewRecorder()

	router(&fakeTranscriber{}, nil).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestReadAloudStreamsAudio(t *testing.T) {
	speaker := voice.NewSpeaker(fakeSynth{}, t.TempDir())
	req := httptest.NewRequest(http.MethodPost, "/speech/read-aloud", strings.NewReader(`{"text":"hello"}`))
	resp := httptest.NewRecorder()

	router(&fakeTranscriber{}, speaker).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "audio/mpeg", resp.Header().Get("Content-Type"))
	assert.Equal(t, "mp3!", resp.Body.String())
}

func TestReadAloudErrors(t *testing.T) {
	blank := httptest.NewRecorder()
	router(&fakeTranscriber{}, voice.NewSpeaker(fakeSynth{}, t.TempDir())).
		ServeHTTP(blank, httptest.NewRequest(http.MethodPost, "/speech/read-aloud", strings.NewReader(`{"text":" "}`)))
	assert.Equal(t, http.StatusBadRequest, blank.Code)

	failed := httptest.NewRecorder()
	router(&fakeTranscriber{}, voice.NewSpeaker(fakeSynth{err: errors.New("tts down")}, t.TempDir())).
		ServeHTTP(failed, httptest.NewRequest(http.MethodPost, "/speech/read-aloud", strings.NewReader(`{"text":"hi"}`)))
	assert.Equal(t, http.StatusBadGateway, failed.Code)
}

func TestHealth(t *testing.T) {
	resp := httptest.NewRecorder()
	router(&fakeTranscriber{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/speech/health", nil))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"enabled":true`)
}

func TestInferAudioFormat(t *testing.T) {
	assert.Equal(t, "mp3", inferAudioFormat("a.MP3"))
	assert.Equal(t, "ogg", inferAudioFormat("a.opus"))
	assert.Equal(t, "wav", inferAudioFormat("recording"))
}
