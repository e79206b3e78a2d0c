package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/commerce-auth/pkg/errors"
)

func okValidator(claims *Claims) TokenValidator {
	return func(token string) (*Claims, error) {
		return claims, nil
	}
}

func failingValidator(err error) TokenValidator {
	return func(token string) (*Claims, error) {
		return nil, err
	}
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAuth_MissingHeader(t *testing.T) {
	handler := Auth(okValidator(&Claims{}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/profile", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Access token is required", body["message"])
}

func TestAuth_MalformedHeader(t *testing.T) {
	for _, header := range []string{"Token abc", "Bearer", "abc.def.ghi"} {
		handler := Auth(okValidator(&Claims{}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be reached")
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
		assert.Equal(t, "Access token is required", decodeEnvelope(t, rec)["message"])
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	handler := Auth(failingValidator(apperrors.ErrTokenExpired))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer expired.token.here")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Access token has expired", decodeEnvelope(t, rec)["message"])
}

func TestAuth_InvalidToken(t *testing.T) {
	handler := Auth(failingValidator(errors.New("signature mismatch")))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tampered.token.here")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid access token", decodeEnvelope(t, rec)["message"])
}

func TestAuth_ValidToken_InjectsIdentity(t *testing.T) {
	claims := &Claims{UserID: "u-1", Email: "alice@example.com", Role: "CUSTOMER"}

	var gotID, gotRole string
	handler := Auth(okValidator(claims))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good.token.here")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-1", gotID)
	assert.Equal(t, "CUSTOMER", gotRole)
}

func TestAuth_BearerCaseInsensitive(t *testing.T) {
	handler := Auth(okValidator(&Claims{UserID: "u-1"}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer good.token.here")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole_NoIdentity(t *testing.T) {
	handler := RequireRole("ADMIN")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/u-2/ban", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication required", decodeEnvelope(t, rec)["message"])
}

func TestRequireRole_WrongRole(t *testing.T) {
	chain := Auth(okValidator(&Claims{UserID: "u-1", Role: "CUSTOMER"}))(
		RequireRole("ADMIN")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be reached")
		})),
	)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/u-2/ban", nil)
	req.Header.Set("Authorization", "Bearer good.token.here")
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Role 'CUSTOMER' is not authorized to access this resource", decodeEnvelope(t, rec)["message"])
}

func TestRequireRole_AllowedRole(t *testing.T) {
	chain := Auth(okValidator(&Claims{UserID: "u-1", Role: "ADMIN"}))(
		RequireRole("ADMIN", "VENDOR")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})),
	)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/u-2/ban", nil)
	req.Header.Set("Authorization", "Bearer good.token.here")
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIdentityFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, IdentityFromContext(req.Context()))
	assert.Empty(t, UserIDFromContext(req.Context()))
	assert.Empty(t, RoleFromContext(req.Context()))
}
