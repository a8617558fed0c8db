package middleware

import (
	"net/http"

	"github.com/frahmantamala/workforce-presence/pkg/logger"
	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"
)

// RequestID tags every request with a trace id, reusing X-Trace-ID when the client sent one
// or chi's request id when it ran first, and attaches it to the context logger.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = middleware.GetReqID(r.Context())
		}
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := logger.With(r.Context(), "trace_id", traceID)
		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
