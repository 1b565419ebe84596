package middleware

import (
	"net/http"
	"net/http/httptest"
	"reviewpilot/internal/logger"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}

	var seen string
	h := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("generates an id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Len(t, seen, 36)
		assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	})

	t.Run("keeps the caller's id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/review-suggestions/x/consume", nil)
		req.Header.Set(RequestIDHeader, "req-7")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, "req-7", seen)
		assert.Equal(t, "req-7", rec.Header().Get(RequestIDHeader))

		entries := logs.FilterField(zap.String("requestId", "req-7")).All()
		if assert.Len(t, entries, 1) {
			fields := entries[0].ContextMap()
			assert.Equal(t, "POST", fields["method"])
			assert.EqualValues(t, http.StatusTeapot, fields["status"])
		}
	})

	assert.Empty(t, GetRequestID(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}
