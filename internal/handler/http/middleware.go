package http

import (
	"net/http"
	"strings"

	"github.com/utafrali/commerce-auth/pkg/httputil"
)

// ContentTypeJSON rejects body-carrying requests without a JSON content type.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 {
			ct := r.Header.Get("Content-Type")
			if !strings.HasPrefix(ct, "application/json") {
				httputil.WriteFailure(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
