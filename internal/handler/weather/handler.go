package weather

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	weatherService "github.com/zhouzirui/nova-ai/backend/internal/service/weather"
	"github.com/zhouzirui/nova-ai/backend/pkg/utils"
)

// Lookup returns a display string for a city.
type Lookup interface {
	Lookup(ctx context.Context, city string) string
}

// Handler serves the weather panel. Provider failures are part of the
// returned report, so the endpoint always answers 200.
type Handler struct {
	lookup Lookup
}

// New creates the weather handler.
func New(lookup Lookup) *Handler {
	return &Handler{lookup: lookup}
}

// RegisterRoutes mounts GET /weather.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/weather", h.handleWeather)
}

func (h *Handler) handleWeather(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		city = weatherService.DefaultCity
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"city":   city,
		"report": h.lookup.Lookup(r.Context(), city),
	})
}
