package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// maxLoggedBody caps request and response bodies captured at debug level
const maxLoggedBody = 4096

// responseWriter records the status code and, at debug level, the response body
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
	body       *bytes.Buffer
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if rw.written {
		return
	}
	rw.statusCode = statusCode
	rw.written = true
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	if rw.body != nil && rw.body.Len() < maxLoggedBody {
		rw.body.Write(b)
	}
	return rw.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying writer to http.ResponseController
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// LoggingMiddleware logs each request once on arrival and once on completion.
//
// Completion is logged at INFO for 2xx/3xx, WARN for 4xx and ERROR for 5xx.
// With DEBUG enabled, query parameters and truncated bodies are attached.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		debug := slog.Default().Enabled(r.Context(), slog.LevelDebug)

		attrs := []any{
			"remote_ip", r.RemoteAddr,
			"user_agent", r.UserAgent(),
			"method", r.Method,
			"path", r.URL.Path,
		}

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		if debug {
			if len(r.URL.Query()) > 0 {
				attrs = append(attrs, "query_params", map[string][]string(r.URL.Query()))
			}
			if r.Body != nil {
				requestBody, _ := io.ReadAll(r.Body)
				r.Body = io.NopCloser(bytes.NewReader(requestBody))
				if len(requestBody) > 0 {
					attrs = append(attrs, "request_body", truncate(requestBody))
				}
			}
			wrapped.body = &bytes.Buffer{}
			slog.Debug("Incoming request", attrs...)
		} else {
			slog.Info("Incoming request", attrs...)
		}

		next.ServeHTTP(wrapped, r)

		level, message := slog.LevelInfo, "Request completed"
		switch {
		case wrapped.statusCode >= 500:
			level, message = slog.LevelError, "Request failed with error"
		case wrapped.statusCode >= 400:
			level, message = slog.LevelWarn, "Request failed"
		}

		done := []any{
			"remote_ip", r.RemoteAddr,
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if wrapped.body != nil && wrapped.body.Len() > 0 {
			done = append(done, "response_body", truncate(wrapped.body.Bytes()))
		}
		slog.Log(r.Context(), level, message, done...)
	})
}

func truncate(b []byte) string {
	if len(b) > maxLoggedBody {
		return string(b[:maxLoggedBody]) + "...(truncated)"
	}
	return string(b)
}
