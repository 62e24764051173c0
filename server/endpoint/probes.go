package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/fittrack/component"
	"github.com/kbukum/fittrack/version"
)

type probeResponse struct {
	Status    string   `json:"status"`
	Service   string   `json:"service"`
	Timestamp string   `json:"timestamp"`
	Failing   []string `json:"failing,omitempty"`
}

func probe(status, service string) probeResponse {
	return probeResponse{
		Status:    status,
		Service:   service,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Liveness answers /livez. It only confirms the process serves HTTP.
func Liveness(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, probe("alive", serviceName))
	}
}

// Readiness answers /readyz with 503 while any component is unhealthy and
// names those components. Degraded components still take traffic.
func Readiness(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := probe("ready", serviceName)
		if checker != nil {
			for _, h := range checker(c.Request.Context()) {
				if h.Status == component.StatusUnhealthy {
					resp.Failing = append(resp.Failing, h.Name)
				}
			}
		}
		if len(resp.Failing) > 0 {
			resp.Status = "not_ready"
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// Version reports build information.
func Version() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, version.Get())
	}
}
