package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func corsHandler(cfg CORSConfig) http.Handler {
	return CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCORS_DevelopmentAllowsAnyOrigin(t *testing.T) {
	handler := corsHandler(CORSConfig{
		AllowedOrigins: []string{"https://shop.example.com"},
		Environment:    "development",
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://localhost:3000")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_ProductionAllowsListedOrigin(t *testing.T) {
	handler := corsHandler(CORSConfig{
		AllowedOrigins: []string{"https://shop.example.com"},
		Environment:    "production",
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "https://shop.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))
}

func TestCORS_ProductionRejectsUnlistedOrigin(t *testing.T) {
	handler := corsHandler(CORSConfig{
		AllowedOrigins: []string{"https://shop.example.com"},
		Environment:    "production",
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORS_PreflightReturns204(t *testing.T) {
	handler := CORS(CORSConfig{
		AllowedOrigins: []string{"*"},
		Environment:    "development",
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached for preflight")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/auth/login", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestCORS_Defaults(t *testing.T) {
	handler := corsHandler(CORSConfig{
		AllowedOrigins: []string{"*"},
		Environment:    "development",
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "GET, POST, PUT, PATCH, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Accept, Authorization, Content-Type, X-Correlation-ID", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "3600", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_AllowCredentials(t *testing.T) {
	handler := corsHandler(CORSConfig{
		AllowedOrigins:   []string{"https://shop.example.com"},
		AllowCredentials: true,
		Environment:      "production",
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}
