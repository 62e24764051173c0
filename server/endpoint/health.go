package endpoint

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/fittrack/component"
	"github.com/kbukum/fittrack/observability"
	"github.com/kbukum/fittrack/version"
)

// HealthChecker returns the health of every registered component.
type HealthChecker func(ctx context.Context) []component.Health

// Health answers /health with per-component status, or 503 when any
// component is down.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var reports []component.Health
		if checker != nil {
			reports = checker(c.Request.Context())
		}
		report := observability.NewServiceHealth(serviceName, version.Short(), reports)

		status := http.StatusOK
		if report.Status == observability.HealthStatusDown {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, report)
	}
}
