package middleware

import (
	"net/http"
	"slices"
	"time"

	"github.com/kbukum/fittrack/logger"
)

var probePaths = []string{"/health", "/livez", "/readyz", "/version"}

// RequestLogger logs one line per request at a level chosen by status.
// Probe endpoints are skipped.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isProbe(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := record(w)
			next.ServeHTTP(rec, r)

			fields := logger.Fields(
				logger.FieldMethod, r.Method,
				logger.FieldPath, r.URL.Path,
				logger.FieldStatus, rec.Status(),
				logger.FieldDuration, time.Since(start).Milliseconds(),
				"bytes", rec.bytes,
			)
			if id := r.Header.Get(HeaderRequestID); id != "" {
				fields[logger.FieldRequestID] = id
			}
			logByStatus(log, fields, rec.Status())
		})
	}
}

func isProbe(path string) bool {
	return slices.Contains(probePaths, path)
}

// logByStatus logs at error for 5xx, warn for 4xx and debug otherwise.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
