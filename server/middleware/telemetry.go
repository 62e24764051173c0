package middleware

import (
	"net/http"
	"strconv"

	"github.com/kbukum/fittrack/logger"
	"github.com/kbukum/fittrack/observability"
)

// Telemetry opens a server span per request and records request count,
// duration and in-flight gauges. Probe endpoints are skipped. With
// observability disabled the global providers are no-ops.
func Telemetry(service string) Middleware {
	metrics := observability.DefaultMetrics()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isProbe(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			ctx, req := observability.StartRequest(r.Context(), service, r.Method+" "+r.URL.Path,
				logger.RequestIDFromContext(r.Context()), metrics)
			rec := record(w)
			next.ServeHTTP(rec, r.WithContext(ctx))

			status := rec.Status()
			var err error
			if status >= http.StatusInternalServerError {
				err = errStatus(status)
			}
			req.End(ctx, strconv.Itoa(status), err)
		})
	}
}

type errStatus int

func (e errStatus) Error() string { return "http status " + strconv.Itoa(int(e)) }
