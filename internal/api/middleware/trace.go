package middleware

import (
	"log/slog"
	"net/http"

	"github.com/Thinkabouthev/backend-hw2/internal/api/shared"
	"github.com/Thinkabouthev/backend-hw2/internal/platform/logger"
)

// TraceMiddleware adds a trace ID to the request context and attaches a
// request-scoped logger carrying it. Apply early in the middleware chain so
// all subsequent handlers see the trace ID.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())
		traceID := shared.GetTraceID(ctx)

		log := slog.With(slog.String("trace_id", traceID))
		ctx = logger.WithLogger(ctx, log)

		log.Debug("request started",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
