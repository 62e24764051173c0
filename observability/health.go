package observability

import "github.com/kbukum/fittrack/component"

// HealthStatus is the state reported by /health.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDegraded HealthStatus = "degraded"
	HealthStatusDown     HealthStatus = "down"
)

// rank orders statuses so the worst component sets the service status.
func (s HealthStatus) rank() int {
	switch s {
	case HealthStatusDown:
		return 2
	case HealthStatusDegraded:
		return 1
	default:
		return 0
	}
}

// Health is one component's entry in the /health body.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// ServiceHealth is the /health body.
type ServiceHealth struct {
	Service    string       `json:"service"`
	Status     HealthStatus `json:"status"`
	Version    string       `json:"version,omitempty"`
	Components []Health     `json:"components,omitempty"`
}

// NewServiceHealth folds component reports into a service report whose
// status is the worst component status.
func NewServiceHealth(service, version string, reports []component.Health) *ServiceHealth {
	sh := &ServiceHealth{Service: service, Status: HealthStatusUp, Version: version}
	for _, r := range reports {
		h := FromComponent(r)
		sh.Components = append(sh.Components, h)
		if h.Status.rank() > sh.Status.rank() {
			sh.Status = h.Status
		}
	}
	return sh
}

// FromComponent maps a lifecycle health report onto the /health vocabulary.
func FromComponent(h component.Health) Health {
	out := Health{Name: h.Name, Status: HealthStatusUp, Message: h.Message}
	switch h.Status {
	case component.StatusUnhealthy:
		out.Status = HealthStatusDown
	case component.StatusDegraded:
		out.Status = HealthStatusDegraded
	}
	return out
}
