package document

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	documentService "github.com/zhouzirui/nova-ai/backend/internal/service/document"
)

func setup() (*chi.Mux, *documentService.Context) {
	docs := documentService.NewContext()
	r := chi.NewRouter()
	New(documentService.NewExtractor(nil), docs).RegisterRoutes(r)
	return r, docs
}

func upload(t *testing.T, r http.Handler, name string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/document", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestUploadActivatesDocument(t *testing.T) {
	r, docs := setup()

	resp := upload(t, r, "notes.txt", []byte("Meeting moved to Friday."))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Meeting moved to Friday.", docs.Text())
	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.NotContains(t, body, "warning")
	assert.Equal(t, "notes.txt", body["document"].(map[string]any)["name"])
}

func TestUploadFailureWarnsAndClearsText(t *testing.T) {
	r, docs := setup()
	upload(t, r, "old.txt", []byte("old context"))

	resp := upload(t, r, "broken.pdf", []byte("%PDF-1.4\nnot a pdf\n%%EOF"))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Could not extract text from broken.pdf")
	assert.Equal(t, "", docs.Text())
}

func TestUploadRequiresFile(t *testing.T) {
	r, _ := setup()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("other", "x"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/document", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetAndClearDocument(t *testing.T) {
	r, docs := setup()

	empty := httptest.NewRecorder()
	r.ServeHTTP(empty, httptest.NewRequest(http.MethodGet, "/document", nil))
	assert.JSONEq(t, `{"document":null}`, empty.Body.String())

	upload(t, r, "a.txt", []byte("alpha"))
	current := httptest.NewRecorder()
	r.ServeHTTP(current, httptest.NewRequest(http.MethodGet, "/document", nil))
	assert.Contains(t, current.Body.String(), `"name":"a.txt"`)

	cleared := httptest.NewRecorder()
	r.ServeHTTP(cleared, httptest.NewRequest(http.MethodDelete, "/document", nil))
	assert.Equal(t, http.StatusNoContent, cleared.Code)
	assert.Equal(t, "", docs.Text())
}
