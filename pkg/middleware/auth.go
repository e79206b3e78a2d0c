package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/utafrali/commerce-auth/pkg/errors"
	"github.com/utafrali/commerce-auth/pkg/httputil"
	"github.com/utafrali/commerce-auth/pkg/logger"
)

type contextKeyType string

const identityKey contextKeyType = "identity"

// Claims is the authenticated identity extracted from an access token.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// TokenValidator validates an access token string and returns its claims.
// The service injects its own verification logic so this package stays
// independent of the signing implementation.
type TokenValidator func(token string) (*Claims, error)

// Auth validates bearer tokens and injects the authenticated identity
// into the request context. Expired and malformed tokens produce
// distinct messages so clients know when to refresh.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httputil.WriteFailure(w, http.StatusUnauthorized, "Access token is required")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				httputil.WriteFailure(w, http.StatusUnauthorized, "Access token is required")
				return
			}

			claims, err := validate(parts[1])
			if err != nil {
				if errors.Is(err, apperrors.ErrTokenExpired) {
					httputil.WriteFailure(w, http.StatusUnauthorized, "Access token has expired")
					return
				}
				httputil.WriteFailure(w, http.StatusUnauthorized, "Invalid access token")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, claims)
			ctx = logger.WithUserID(ctx, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole allows the request through only when the authenticated
// identity carries one of the given roles. Must be mounted after Auth.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := IdentityFromContext(r.Context())
			if claims == nil {
				httputil.WriteFailure(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			if _, ok := roleSet[claims.Role]; !ok {
				httputil.WriteFailure(w, http.StatusForbidden,
					fmt.Sprintf("Role '%s' is not authorized to access this resource", claims.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromContext returns the authenticated claims, or nil if the
// request did not pass through Auth.
func IdentityFromContext(ctx context.Context) *Claims {
	if claims, ok := ctx.Value(identityKey).(*Claims); ok {
		return claims
	}
	return nil
}

// UserIDFromContext extracts the authenticated user ID from the request context.
func UserIDFromContext(ctx context.Context) string {
	if claims := IdentityFromContext(ctx); claims != nil {
		return claims.UserID
	}
	return ""
}

// RoleFromContext extracts the authenticated role from the request context.
func RoleFromContext(ctx context.Context) string {
	if claims := IdentityFromContext(ctx); claims != nil {
		return claims.Role
	}
	return ""
}
