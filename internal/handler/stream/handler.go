package stream

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	chatHandler "github.com/zhouzirui/nova-ai/backend/internal/handler/chat"
	chatService "github.com/zhouzirui/nova-ai/backend/internal/service/chat"
	"github.com/zhouzirui/nova-ai/backend/pkg/log"
	"github.com/zhouzirui/nova-ai/backend/pkg/utils"
)

// SSE event names.
const (
	EventTyping  = "typing"
	EventMessage = "message"
	EventWarning = "warning"
	EventError   = "error"
	EventEnd     = "end"
)

// Handler delivers a chat exchange as Server-Sent Events so the client can
// show a typing indicator while the model works.
type Handler struct {
	chatSvc *chatService.Service
	banner  string
}

// New creates a stream handler.
func New(chatSvc *chatService.Service, banner string) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		banner:  banner,
	}
}

// RegisterRoutes mounts POST /chat/stream.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat/stream", h.handleStream)
}

type messageEvent struct {
	*chatService.Exchange
}

type noticeEvent struct {
	Message string `json:"message"`
}

type errorEvent struct {
	Error string `json:"error"`
}

type endEvent struct {
	SessionID string `json:"sessionId,omitempty"`
	Finished  bool   `json:"finished"`
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	if !h.chatSvc.Ready() {
		utils.RespondError(w, r, http.StatusServiceUnavailable, h.banner)
		return
	}

	req, status, err := chatHandler.ParseChatRequest(r)
	if err != nil {
		utils.RespondError(w, r, status, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	utils.SendSSEEvent(w, flusher, EventTyping, map[string]string{"sessionId": req.SessionID})

	exchange, err := h.chatSvc.Send(r.Context(), req)
	if err != nil {
		if r.Context().Err() != nil {
			log.Infof("[stream] client went away: %v", err)
			return
		}
		log.Errorf("[stream] send failed: %v", err)
		utils.SendSSEEvent(w, flusher, EventError, errorEvent{Error: "AI generation failed: " + err.Error()})
		utils.SendSSEEvent(w, flusher, EventEnd, endEvent{SessionID: req.SessionID, Finished: true})
		return
	}

	utils.SendSSEEvent(w, flusher, EventMessage, messageEvent{exchange})
	for _, warning := range exchange.Warnings {
		utils.SendSSEEvent(w, flusher, EventWarning, noticeEvent{Message: warning})
	}
	utils.SendSSEEvent(w, flusher, EventEnd, endEvent{SessionID: exchange.SessionID, Finished: true})

	log.Infof("[stream] completed response for session=%s, persona=%s", exchange.SessionID, req.Persona)
}
