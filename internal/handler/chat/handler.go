package chat

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/nova-ai/backend/internal/model/chat"
	"github.com/zhouzirui/nova-ai/backend/internal/model/persona"
	chatService "github.com/zhouzirui/nova-ai/backend/internal/service/chat"
	"github.com/zhouzirui/nova-ai/backend/pkg/log"
	"github.com/zhouzirui/nova-ai/backend/pkg/utils"
)

// Handler serves sessions, chat turns and quick prompts.
type Handler struct {
	chatSvc *chatService.Service
	banner  string
}

// New creates the chat handler. banner is returned with 503 answers while
// no generation backend is configured.
func New(chatSvc *chatService.Service, banner string) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		banner:  banner,
	}
}

// RegisterRoutes mounts the chat routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sessions", h.handleListSessions)
	r.Delete("/sessions", h.handleClearSessions)
	r.Get("/sessions/{id}", h.handleGetSession)
	r.Delete("/sessions/{id}", h.handleDeleteSession)
	r.Post("/chat", h.handleChat)
	r.Get("/suggestions", h.handleSuggestions)
}

// ChatRequest is the body of POST /chat and POST /chat/stream.
type ChatRequest struct {
	SessionID string `json:"sessionId"`
	Persona   string `json:"persona"`
	Message   string `json:"message"`
}

// ParseChatRequest decodes and validates a chat request body. The returned
// status is meaningful only when err is non-nil.
func ParseChatRequest(r *http.Request) (chatService.SendRequest, int, error) {
	var payload ChatRequest
	if err := utils.DecodeJSON(r, &payload); err != nil {
		return chatService.SendRequest{}, http.StatusBadRequest, errors.New("invalid request body")
	}

	p, err := persona.Parse(payload.Persona)
	if err != nil {
		return chatService.SendRequest{}, http.StatusBadRequest, err
	}

	if strings.TrimSpace(payload.Message) == "" {
		return chatService.SendRequest{}, http.StatusBadRequest, chatService.ErrEmptyMessage
	}

	return chatService.SendRequest{
		SessionID: strings.TrimSpace(payload.SessionID),
		Persona:   p,
		Message:   payload.Message,
	}, 0, nil
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	if !h.chatSvc.Ready() {
		utils.RespondError(w, r, http.StatusServiceUnavailable, h.banner)
		return
	}

	req, status, err := ParseChatRequest(r)
	if err != nil {
		utils.RespondError(w, r, status, err.Error())
		return
	}

	exchange, err := h.chatSvc.Send(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, chatService.ErrEmptyMessage):
			utils.RespondError(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, chatService.ErrUnavailable):
			utils.RespondError(w, r, http.StatusServiceUnavailable, h.banner)
		default:
			log.Errorf("[chat] send failed: %v", err)
			utils.RespondError(w, r, http.StatusBadGateway, "AI generation failed: "+err.Error())
		}
		return
	}

	utils.RespondJSON(w, http.StatusOK, exchange)
}

func (h *Handler) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"sessions": h.chatSvc.Store().List(),
	})
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := sessionParam(r)
	utils.RespondJSON(w, http.StatusOK, struct {
		ID    string      `json:"id"`
		Turns []chat.Turn `json:"turns"`
	}{
		ID:    id,
		Turns: h.chatSvc.Store().Select(id),
	})
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := sessionParam(r)
	h.chatSvc.Store().Delete(id)
	log.Infof("[chat] deleted session %q", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleClearSessions(w http.ResponseWriter, _ *http.Request) {
	h.chatSvc.Store().Clear()
	log.Info("[chat] cleared all sessions")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"suggestions": chatService.Suggestions(r.URL.Query().Get("q")),
	})
}

// sessionParam returns the decoded {id}; keys contain spaces and may contain '#'.
func sessionParam(r *http.Request) string {
	raw := chi.URLParam(r, "id")
	if id, err := url.PathUnescape(raw); err == nil {
		return id
	}
	return raw
}
