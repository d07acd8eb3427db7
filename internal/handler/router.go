package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/nova-ai/backend/internal/handler/chat"
	"github.com/zhouzirui/nova-ai/backend/internal/handler/document"
	"github.com/zhouzirui/nova-ai/backend/internal/handler/persona"
	"github.com/zhouzirui/nova-ai/backend/internal/handler/speech"
	"github.com/zhouzirui/nova-ai/backend/internal/handler/status"
	"github.com/zhouzirui/nova-ai/backend/internal/handler/stream"
	"github.com/zhouzirui/nova-ai/backend/internal/handler/weather"
	middlewarePkg "github.com/zhouzirui/nova-ai/backend/internal/middleware"
	chatService "github.com/zhouzirui/nova-ai/backend/internal/service/chat"
	documentService "github.com/zhouzirui/nova-ai/backend/internal/service/document"
)

// Dependencies are the services exposed over HTTP.
type Dependencies struct {
	Chat      *chatService.Service
	Extractor *documentService.Extractor
	Documents *documentService.Context
	Speech    speech.Transcriber
	Speaker   speech.ReadAloud
	Weather   weather.Lookup
	Status    status.Report
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		status.New(deps.Status).RegisterRoutes(api)
		persona.New().RegisterRoutes(api)
		chat.New(deps.Chat, deps.Status.Banner).RegisterRoutes(api)
		stream.New(deps.Chat, deps.Status.Banner).RegisterRoutes(api)
		document.New(deps.Extractor, deps.Documents).RegisterRoutes(api)
		speech.New(deps.Speech, deps.Speaker).RegisterRoutes(api)
		weather.New(deps.Weather).RegisterRoutes(api)
	})

	return r
}
