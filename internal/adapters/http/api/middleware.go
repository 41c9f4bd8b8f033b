package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/railshot/pkg/logger"
	"github.com/okian/railshot/pkg/metrics"
)

// MetricsMiddleware records request counts, durations and error classes for
// endpoint. A panicking handler is answered with 500.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		defer func() {
			if rec := recover(); rec != nil {
				logger.Get().Named("http").Error(r.Context(), "handler panic",
					logger.String("endpoint", endpoint),
					logger.Any("panic", rec),
				)
				if !wrapped.wroteHeader {
					writeError(wrapped, http.StatusInternalServerError, "internal", fmt.Errorf("internal error"))
				}
			}

			durationMs := float64(time.Since(start).Microseconds()) / 1000
			status := strconv.Itoa(wrapped.statusCode)
			metrics.RecordHTTPRequest(endpoint, r.Method, status)
			metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, durationMs)

			if wrapped.statusCode >= http.StatusBadRequest {
				errorType := errorClass(wrapped.statusCode)
				metrics.RecordErrorByEndpoint(endpoint, r.Method, errorType)
				metrics.RecordErrorByType(errorType, errorSeverity(wrapped.statusCode))
				metrics.RecordErrorLatency("http", errorType, durationMs)
			}
		}()

		next.ServeHTTP(wrapped, r)
	}
}

func errorClass(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "server_error"
	case status == http.StatusTooManyRequests:
		return "rate_limit"
	case status == http.StatusNotFound:
		return "not_found"
	default:
		return "client_error"
	}
}

func errorSeverity(status int) string {
	if status >= http.StatusInternalServerError {
		return "high"
	}
	return "medium"
}

// responseWriter captures the status code written by a handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("failed to write response: %w", err)
	}
	return n, nil
}
