package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	apperrors "github.com/utafrali/commerce-auth/pkg/errors"
	"github.com/utafrali/commerce-auth/pkg/logger"
	"github.com/utafrali/commerce-auth/pkg/validator"
)

// Response is the JSON envelope used by every endpoint, success or failure.
type Response struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    any                    `json:"data,omitempty"`
	Errors  []apperrors.FieldError `json:"errors,omitempty"`
}

// envCfg controls how much detail unexpected errors expose to clients.
var envCfg struct {
	mu         sync.RWMutex
	production bool
}

// SetEnvironment configures response behavior for the process. In
// "production", unexpected errors are replaced with a generic message;
// in any other environment the real error string is returned for
// developer ergonomics. Full detail is always logged either way.
func SetEnvironment(environment string) {
	envCfg.mu.Lock()
	defer envCfg.mu.Unlock()
	envCfg.production = environment == "production"
}

func isProduction() bool {
	envCfg.mu.RLock()
	defer envCfg.mu.RUnlock()
	return envCfg.production
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess writes a success envelope with the given status, message, and data.
func WriteSuccess(w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// WriteFailure writes a failure envelope with the given status and message.
func WriteFailure(w http.ResponseWriter, status int, message string, fields ...apperrors.FieldError) {
	WriteJSON(w, status, Response{
		Success: false,
		Message: message,
		Errors:  fields,
	})
}

// WriteError is the single boundary that converts errors into responses.
// Typed AppErrors and validation errors map to their status and stable
// message; anything else becomes a 500 with full detail logged internally
// and, in production, a generic message returned to the client. It prefers
// the request-scoped logger from context over the fallback logger.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteFailure(w, http.StatusBadRequest, "Validation failed", valErr.FieldErrors()...)
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		WriteFailure(w, appErr.Status, appErr.Message, appErr.Fields...)
		return
	}

	l := logger.FromContext(r.Context())
	if l == slog.Default() {
		l = fallback
	}
	l.ErrorContext(r.Context(), "unexpected error",
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	message := "Internal server error"
	if !isProduction() {
		message = err.Error()
	}
	WriteFailure(w, http.StatusInternalServerError, message)
}
