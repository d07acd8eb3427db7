package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

type recordingLookup struct{ city string }

func (l *recordingLookup) Lookup(_ context.Context, city string) string {
	l.city = city
	return city + ": 21°C, Sunny"
}

func TestWeatherDefaultsToNewYork(t *testing.T) {
	lookup := &recordingLookup{}
	r := chi.NewRouter()
	New(lookup).RegisterRoutes(r)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/weather", nil))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "New York", lookup.city)
	assert.JSONEq(t, `{"city":"New York","report":"New York: 21°C, Sunny"}`, resp.Body.String())
}

func TestWeatherUsesQueryCity(t *testing.T) {
	lookup := &recordingLookup{}
	r := chi.NewRouter()
	New(lookup).RegisterRoutes(r)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/weather?city=Paris", nil))

	assert.Equal(t, "Paris", lookup.city)
}
