package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS answers preflight requests and stamps the allow headers for the configured origins.
// An empty list or "*" allows any origin.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Trace-ID", "X-Request-ID"},
		ExposedHeaders: []string{"X-Trace-ID"},
		MaxAge:         300,
	})
}
