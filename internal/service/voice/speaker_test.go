package voice

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	speechmodel "github.com/zhouzirui/nova-ai/backend/internal/model/speech"
)

type fakeSynth struct {
	audio []byte
	err   error
	texts []string
}

func (f *fakeSynth) Synthesize(_ context.Context, text string) (*speechmodel.TTSResponse, error) {
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	return &speechmodel.TTSResponse{AudioData: f.audio, Format: "mp3"}, nil
}

type recordingPlayer struct {
	path    string
	content []byte
	err     error
}

func (p *recordingPlayer) Play(_ context.Context, path, _ string) error {
	p.path = path
	p.content, _ = os.ReadFile(path)
	return p.err
}

func TestReadAloudPlaysThenRemovesFile(t *testing.T) {
	dir := t.TempDir()
	speaker := NewSpeaker(&fakeSynth{audio: []byte("ID3 audio")}, dir)
	player := &recordingPlayer{}

	require.NoError(t, speaker.ReadAloud(context.Background(), "hello", player))

	assert.Equal(t, []byte("ID3 audio"), player.content)
	assert.NoFileExists(t, player.path)
}

func TestReadAloudRemovesFileWhenPlayerFails(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("no audio device")
	speaker := NewSpeaker(&fakeSynth{audio: []byte("x")}, dir)
	player := &recordingPlayer{err: boom}

	err := speaker.ReadAloud(context.Background(), "hello", player)

	assert.ErrorIs(t, err, boom)
	require.NotEmpty(t, player.path)
	assert.NoFileExists(t, player.path)
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestReadAloudSynthesisFailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("tts down")
	player := &recordingPlayer{}

	err := NewSpeaker(&fakeSynth{err: boom}, dir).ReadAloud(context.Background(), "hello", player)

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, player.path)
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestReadAloudRejectsBlankText(t *testing.T) {
	synth := &fakeSynth{}
	err := NewSpeaker(synth, t.TempDir()).ReadAloud(context.Background(), "  ", &recordingPlayer{})

	assert.ErrorIs(t, err, ErrEmptyText)
	assert.Empty(t, synth.texts)
}

func TestResponsePlayerStreamsAudio(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/speech/read-aloud", nil)

	err := NewSpeaker(&fakeSynth{audio: []byte("mp3-bytes")}, t.TempDir()).
		ReadAloud(context.Background(), "hello", NewResponsePlayer(rec, req))

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "mp3-bytes", rec.Body.String())
}

func TestCommandPlayerReportsFailure(t *testing.T) {
	player := &CommandPlayer{Command: "nova-player-that-does-not-exist"}
	err := player.Play(context.Background(), "/tmp/none.mp3", "mp3")
	assert.Error(t, err)
}
