package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	pkglogger "github.com/frahmantamala/workforce-presence/pkg/logger"
	"github.com/go-chi/chi/middleware"
)

const (
	filtered      = "[FILTERED]"
	maxLoggedBody = 4 << 10
)

// sensitiveFields are matched as substrings of lower-cased header and JSON key names.
// Scan payloads (qrId, employeeId) stay visible so a rejected scan can be traced.
var sensitiveFields = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"api_key",
	"cookie",
}

// quietPaths are logged without bodies.
var quietPaths = []string{"/health", "/ping", "/swagger", "/openapi.yml"}

// LoggingMiddleware writes one line when a request arrives and one when it completes.
// The context logger is preferred so trace and user ids attached upstream appear on both.
func LoggingMiddleware(base *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			logger := base
			if l := pkglogger.From(r.Context()); l != nil && l != pkglogger.LoggerWrapper() {
				logger = l
			}
			withBody := !isQuiet(r.URL.Path)

			attrs := []any{
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
			}

			in := append([]any{}, attrs...)
			in = append(in,
				"query", r.URL.RawQuery,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"headers", filterSensitiveHeaders(r.Header))
			if withBody {
				in = append(in, "body", filterSensitiveBody(peekBody(r)))
			}
			logger.InfoContext(r.Context(), "incoming request", in...)

			rec := &recorder{ResponseWriter: w, status: http.StatusOK, captureBody: withBody}
			next.ServeHTTP(rec, r)

			out := append(attrs,
				"status_code", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"response_size", rec.size)
			if withBody {
				out = append(out, "body", filterSensitiveBody(rec.body.Bytes()))
			}
			logger.Log(r.Context(), levelFor(rec.status), "response", out...)
		})
	}
}

type recorder struct {
	http.ResponseWriter
	status      int
	size        int
	captureBody bool
	body        bytes.Buffer
}

func (rw *recorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recorder) Write(b []byte) (int, error) {
	rw.size += len(b)
	if rw.captureBody && rw.body.Len() < maxLoggedBody {
		rw.body.Write(b)
	}
	return rw.ResponseWriter.Write(b)
}

// peekBody reads the request body and puts an identical reader back for the handler.
func peekBody(r *http.Request) []byte {
	if r.Body == nil {
		return nil
	}
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))
	return raw
}

func levelFor(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func isQuiet(path string) bool {
	for _, p := range quietPaths {
		if strings.HasPrefix(path, p) || strings.HasSuffix(path, p) {
			return true
		}
	}
	return false
}

func isSensitive(name string) bool {
	name = strings.ToLower(name)
	for _, field := range sensitiveFields {
		if strings.Contains(name, field) {
			return true
		}
	}
	return false
}

func filterSensitiveHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if isSensitive(name) {
			out[name] = filtered
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// filterSensitiveBody masks sensitive keys of a JSON body. A non-JSON body is
// dropped entirely when it mentions any sensitive field.
func filterSensitiveBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > maxLoggedBody {
		body = body[:maxLoggedBody]
	}

	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		if isSensitive(string(body)) {
			return filtered
		}
		return string(body)
	}

	masked, err := json.Marshal(maskJSON(data))
	if err != nil {
		return filtered
	}
	return string(masked)
}

func maskJSON(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, value := range v {
			if isSensitive(key) {
				out[key] = filtered
				continue
			}
			out[key] = maskJSON(value)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = maskJSON(item)
		}
		return out
	default:
		return v
	}
}
