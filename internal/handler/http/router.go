package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/commerce-auth/internal/auth"
	"github.com/utafrali/commerce-auth/internal/domain"
	"github.com/utafrali/commerce-auth/internal/service"
	"github.com/utafrali/commerce-auth/pkg/health"
	"github.com/utafrali/commerce-auth/pkg/httputil"
	"github.com/utafrali/commerce-auth/pkg/middleware"
)

// NewRouter creates the chi router with all routes registered.
func NewRouter(
	authService *service.AuthService,
	codec *auth.TokenCodec,
	healthHandler *health.Handler,
	log *slog.Logger,
	corsConfig middleware.CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestLogging(log))
	r.Use(middleware.PrometheusMetrics("auth"))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httputil.WriteFailure(w, http.StatusNotFound,
			fmt.Sprintf("Route not found: %s %s", req.Method, req.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		httputil.WriteFailure(w, http.StatusMethodNotAllowed,
			fmt.Sprintf("Method not allowed: %s %s", req.Method, req.URL.Path))
	})

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	// Bridge the token codec to the middleware's validator shape.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := codec.VerifyAccess(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		}, nil
	}

	authHandler := NewAuthHandler(authService, log)
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.Post("/logout", authHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))
			r.Get("/profile", authHandler.Profile)
		})
	})

	userHandler := NewUserHandler(authService, log)
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))
		r.Use(middleware.RequireRole(domain.RoleAdmin))

		r.Patch("/{id}/ban", userHandler.Ban)
		r.Patch("/{id}/unban", userHandler.Unban)
	})

	return r
}
