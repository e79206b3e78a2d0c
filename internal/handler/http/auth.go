package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/utafrali/commerce-auth/internal/domain"
	"github.com/utafrali/commerce-auth/internal/service"
	apperrors "github.com/utafrali/commerce-auth/pkg/errors"
	"github.com/utafrali/commerce-auth/pkg/httputil"
	"github.com/utafrali/commerce-auth/pkg/middleware"
	"github.com/utafrali/commerce-auth/pkg/validator"
)

// AuthHandler handles the auth endpoints.
type AuthHandler struct {
	service *service.AuthService
	log     *slog.Logger
}

// NewAuthHandler creates an auth HTTP handler.
func NewAuthHandler(svc *service.AuthService, log *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, log: log}
}

// RegisterRequest is the JSON body for POST /api/v1/auth/register.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest is the JSON body for POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest is the JSON body for POST /api/v1/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// AuthData is the payload returned by register and login.
type AuthData struct {
	User         domain.Profile `json:"user"`
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
}

// decodeJSON reads and validates a request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.BadRequest("Invalid request body")
	}
	return validator.Validate(dst)
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	user, tokens, err := h.service.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteSuccess(w, http.StatusCreated, "Registration successful", AuthData{
		User:         user.Profile(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	user, tokens, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "Login successful", AuthData{
		User:         user.Profile(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// Refresh handles POST /api/v1/auth/refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	tokens, err := h.service.RefreshTokens(r.Context(), req.RefreshToken)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "Token refreshed successfully", tokens)
}

// Logout handles POST /api/v1/auth/logout. Tokens are stateless, so
// logout is an acknowledgment; clients discard their tokens.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, http.StatusOK, "Logged out successfully", nil)
}

// Profile handles GET /api/v1/auth/profile.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		httputil.WriteFailure(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "Profile fetched successfully", profile)
}
