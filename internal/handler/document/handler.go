package document

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	documentService "github.com/zhouzirui/nova-ai/backend/internal/service/document"
	"github.com/zhouzirui/nova-ai/backend/pkg/log"
	"github.com/zhouzirui/nova-ai/backend/pkg/utils"
)

// Handler manages the active document context.
type Handler struct {
	extractor *documentService.Extractor
	context   *documentService.Context
}

// New creates the document handler.
func New(extractor *documentService.Extractor, context *documentService.Context) *Handler {
	return &Handler{
		extractor: extractor,
		context:   context,
	}
}

// RegisterRoutes mounts the /document routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/document", h.handleUpload)
	r.Get("/document", h.handleCurrent)
	r.Delete("/document", h.handleClear)
}

type documentResponse struct {
	Document *documentService.Active `json:"document"`
	Warning  string                  `json:"warning,omitempty"`
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, documentService.MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(documentService.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.RespondError(w, r, http.StatusRequestEntityTooLarge, "document exceeds 32 MiB")
			return
		}
		utils.RespondError(w, r, http.StatusBadRequest, "failed to parse multipart form: "+err.Error())
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.RespondError(w, r, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	if header.Size > documentService.MaxUploadSize {
		utils.RespondError(w, r, http.StatusRequestEntityTooLarge, "document exceeds 32 MiB")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		utils.RespondError(w, r, http.StatusBadRequest, "failed to read upload")
		return
	}

	extraction := h.extractor.Extract(r.Context(), header.Filename, data)
	active := h.context.Set(extraction)

	resp := documentResponse{Document: &active}
	if extraction.Err != nil {
		resp.Warning = "Could not extract text from " + header.Filename + ": " + extraction.Err.Error()
	}
	log.Infof("[document] active document is now %q (%d chars)", active.Name, active.Chars)
	utils.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCurrent(w http.ResponseWriter, _ *http.Request) {
	resp := documentResponse{}
	if active, ok := h.context.Current(); ok {
		resp.Document = &active
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleClear(w http.ResponseWriter, _ *http.Request) {
	h.context.Clear()
	w.WriteHeader(http.StatusNoContent)
}
