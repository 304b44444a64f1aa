package middleware

import (
	"log/slog"
	"net/http"

	"github.com/iflis7/iyuc-store/pkg/logger"
)

// RequestLogger stores a logger enriched with the correlation id, session id
// and trace ids in the request context. Mount it after RequestLogging,
// Tracing and the session middleware so those values are already present.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
