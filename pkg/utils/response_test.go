package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorEchoesRequestID(t *testing.T) {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Get("/fail", func(w http.ResponseWriter, r *http.Request) {
		RespondError(w, r, http.StatusBadGateway, "upstream down")
	})

	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadGateway, resp.Code)
	assert.Equal(t, "application/json; charset=utf-8", resp.Header().Get("Content-Type"))
	var body ErrorBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, ErrorBody{Error: "upstream down", RequestID: "req-42"}, body)
}

func TestRespondErrorWithoutRequestIDOmitsField(t *testing.T) {
	resp := httptest.NewRecorder()
	RespondError(resp, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusBadRequest, "bad input")

	assert.JSONEq(t, `{"error":"bad input"}`, resp.Body.String())
}

func TestDecodeJSONRejectsTrailingData(t *testing.T) {
	var dst struct {
		Text string `json:"text"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":"hi"}`))
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, "hi", dst.Text)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":"hi"} {"text":"again"}`))
	assert.Error(t, DecodeJSON(req, &dst))
}
