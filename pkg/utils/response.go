package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/nova-ai/backend/pkg/log"
)

// ErrorBody is the JSON shape of every error response. RequestID echoes the
// X-Request-Id assigned by the router so a client report can be matched to
// the access log.
type ErrorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// RespondJSON writes payload as a JSON body with the given status.
func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Warnf("[http] failed to encode %d response: %v", status, err)
	}
}

// RespondError writes an ErrorBody. Server-side failures (5xx) are also
// logged, since the client only sees the message.
func RespondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	body := ErrorBody{Error: message}
	if r != nil {
		body.RequestID = middleware.GetReqID(r.Context())
		if status >= http.StatusInternalServerError {
			log.Warnf("[http] %s %s -> %d (request %s): %s", r.Method, r.URL.Path, status, body.RequestID, message)
		}
	}
	RespondJSON(w, status, body)
}

// DecodeJSON decodes the request body into dst, rejecting trailing data.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}
