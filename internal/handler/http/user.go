package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/commerce-auth/internal/service"
	"github.com/utafrali/commerce-auth/pkg/httputil"
)

// UserHandler handles the admin user-management endpoints.
type UserHandler struct {
	service *service.AuthService
	log     *slog.Logger
}

// NewUserHandler creates a user HTTP handler.
func NewUserHandler(svc *service.AuthService, log *slog.Logger) *UserHandler {
	return &UserHandler{service: svc, log: log}
}

// Ban handles PATCH /api/v1/users/{id}/ban.
func (h *UserHandler) Ban(w http.ResponseWriter, r *http.Request) {
	h.setBanStatus(w, r, true, "User banned successfully")
}

// Unban handles PATCH /api/v1/users/{id}/unban.
func (h *UserHandler) Unban(w http.ResponseWriter, r *http.Request) {
	h.setBanStatus(w, r, false, "User unbanned successfully")
}

func (h *UserHandler) setBanStatus(w http.ResponseWriter, r *http.Request, banned bool, message string) {
	userID := chi.URLParam(r, "id")

	user, err := h.service.SetBanStatus(r.Context(), userID, banned)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, message, user.Profile())
}
