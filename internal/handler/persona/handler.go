package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/nova-ai/backend/internal/model/persona"
	"github.com/zhouzirui/nova-ai/backend/pkg/utils"
)

// Handler serves the persona selector.
type Handler struct {
	personas []persona.Info
}

// New creates the persona handler.
func New() *Handler {
	return &Handler{personas: persona.List()}
}

// RegisterRoutes mounts GET /personas.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personas", h.handleListPersonas)
}

func (h *Handler) handleListPersonas(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"personas": h.personas,
		"default":  persona.Normal.ID(),
	})
}
