package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"ams/internal/requestctx"
)

type ctxKey int

const (
	ctxKeyUser ctxKey = iota
)

// RequestID tags every request with a UUID, honoring one supplied by the
// caller in X-Request-Id.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)
		ctx := requestctx.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRequestID(ctx context.Context) string {
	return requestctx.GetRequestID(ctx)
}
