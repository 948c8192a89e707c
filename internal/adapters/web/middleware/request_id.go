package middleware

import (
	"context"
	"net"
	"net/http"

	"github.com/google/uuid"
	"github.com/lcalzada-xor/vulnscope/internal/core/domain"
)

// RequestIDMiddleware tags every request with a uuid, exposed both to
// downstream handlers via context and to clients via header. The remote
// address rides along for the audit trail.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)

		addr := r.RemoteAddr
		if host, _, err := net.SplitHostPort(addr); err == nil {
			addr = host
		}

		ctx := context.WithValue(r.Context(), domain.RequestIDKey, id)
		ctx = context.WithValue(ctx, domain.ClientAddrKey, addr)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the request id, or empty when the
// middleware did not run.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(domain.RequestIDKey).(string); ok {
		return id
	}
	return ""
}
