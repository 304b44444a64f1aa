package middleware

import (
	"context"
	"net/http"
	"strings"
)

type tokenKey struct{}

// CustomerToken copies a bearer token from the Authorization header into the
// request context. Requests without one pass through untouched; the commerce
// backend decides whether the token is acceptable.
func CustomerToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := BearerToken(r); token != "" {
			r = r.WithContext(context.WithValue(r.Context(), tokenKey{}, token))
		}
		next.ServeHTTP(w, r)
	})
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// CustomerTokenFromContext returns the token stored by CustomerToken.
func CustomerTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}
