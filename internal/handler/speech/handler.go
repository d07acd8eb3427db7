package speech

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	speechmodel "github.com/zhouzirui/nova-ai/backend/internal/model/speech"
	speechService "github.com/zhouzirui/nova-ai/backend/internal/service/speech"
	"github.com/zhouzirui/nova-ai/backend/internal/service/voice"
	"github.com/zhouzirui/nova-ai/backend/pkg/log"
	"github.com/zhouzirui/nova-ai/backend/pkg/utils"
)

// Transcriber is the recognition half of the speech service.
type Transcriber interface {
	Enabled() bool
	Transcribe(ctx context.Context, audio io.Reader, format string) (*speechmodel.ASRResponse, error)
}

// ReadAloud plays text through a player.
type ReadAloud interface {
	ReadAloud(ctx context.Context, text string, player voice.Player) error
}

// Handler serves the speak and read-aloud buttons.
type Handler struct {
	transcriber Transcriber
	speaker     ReadAloud
}

// New creates the speech handler.
func New(transcriber Transcriber, speaker ReadAloud) *Handler {
	return &Handler{
		transcriber: transcriber,
		speaker:     speaker,
	}
}

// RegisterRoutes mounts the /speech routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/speech", func(speechRouter chi.Router) {
		speechRouter.Post("/transcribe", h.handleTranscribe)
		speechRouter.Post("/read-aloud", h.handleReadAloud)
		speechRouter.Get("/health", h.handleHealth)
	})
}

func (h *Handler) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		utils.RespondError(w, r, http.StatusBadRequest, "failed to parse multipart form: "+err.Error())
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		utils.RespondError(w, r, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	format := r.FormValue("format")
	if format == "" {
		format = inferAudioFormat(header.Filename)
	}

	resp, err := h.transcriber.Transcribe(r.Context(), file, format)
	if err != nil {
		h.respondSpeechError(w, r, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleReadAloud(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	// ResponsePlayer only writes once the audio is ready, so every failure
	// below can still be answered with a JSON error.
	if err := h.speaker.ReadAloud(r.Context(), payload.Text, voice.NewResponsePlayer(w, r)); err != nil {
		h.respondSpeechError(w, r, err)
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := "healthy"
	if !h.transcriber.Enabled() {
		status = "disabled"
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"status":  status,
		"service": "speech",
		"enabled": h.transcriber.Enabled(),
	})
}

func (h *Handler) respondSpeechError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, speechService.ErrNoSpeech):
		utils.RespondError(w, r, http.StatusUnprocessableEntity, "Sorry, I could not understand the audio.")
	case errors.Is(err, voice.ErrEmptyText):
		utils.RespondError(w, r, http.StatusBadRequest, "text is required")
	case errors.Is(err, speechService.ErrNotConfigured):
		utils.RespondError(w, r, http.StatusServiceUnavailable, err.Error())
	default:
		log.Errorf("[speech] request failed: %v", err)
		utils.RespondError(w, r, http.StatusBadGateway, "Speech service error: "+err.Error())
	}
}

func inferAudioFormat(filename string) string {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".mp3", ".wav", ".ogg", ".pcm":
		return strings.TrimPrefix(ext, ".")
	case ".opus":
		return "ogg"
	default:
		return "wav"
	}
}
