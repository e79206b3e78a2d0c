package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/commerce-auth/pkg/logger"
)

func TestRequestLogging_GeneratesCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("auth", "info", &buf)

	handler := RequestLogging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, logger.CorrelationIDFromContext(r.Context()))
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/profile", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "http request", entry["msg"])
	assert.Equal(t, "/api/v1/auth/profile", entry["path"])
	assert.Equal(t, float64(http.StatusOK), entry["status"])
}

func TestRequestLogging_PropagatesIncomingCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("auth", "info", &buf)

	handler := RequestLogging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "corr-incoming", logger.CorrelationIDFromContext(r.Context()))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-ID", "corr-incoming")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "corr-incoming", rec.Header().Get("X-Correlation-ID"))
}

func TestRequestLogging_StoresRequestScopedLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("auth", "info", &buf)

	handler := RequestLogging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("from handler")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-ID", "corr-stored")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), "from handler")
	assert.Contains(t, buf.String(), "corr-stored")
}

func TestRecovery_ReturnsEnvelopeOnPanic(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("auth", "error", &buf)

	handler := Recovery(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Internal server error", body["message"])

	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), "boom")
}

func TestRecovery_PassesThroughNormally(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("auth", "error", &buf)

	handler := Recovery(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Zero(t, buf.Len())
}
