package status

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/nova-ai/backend/pkg/utils"
)

// Report describes which collaborators are available. Banner is non-empty
// while the service runs without a generation backend.
type Report struct {
	Ready          bool   `json:"ready"`
	Banner         string `json:"banner,omitempty"`
	Provider       string `json:"provider"`
	Model          string `json:"model"`
	TargetLanguage string `json:"targetLanguage"`
	Translation    bool   `json:"translation"`
	Speech         bool   `json:"speech"`
	Weather        bool   `json:"weather"`
}

// Handler serves GET /status.
type Handler struct {
	report Report
}

// New creates the status handler.
func New(report Report) *Handler {
	return &Handler{report: report}
}

// RegisterRoutes mounts GET /status.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/status", h.handleStatus)
}

func (h *Handler) handleStatus(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.report)
}
