package bootstrap

import (
	"sort"
	"time"

	"github.com/kbukum/fittrack/component"
	"github.com/kbukum/fittrack/logger"
)

// Route is one registered HTTP route, listed in the startup summary.
type Route struct {
	Method string
	Path   string
}

// Summary collects what the application reports once it is up.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	routes          []Route
}

// NewSummary creates a startup summary for the named service.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version}
}

// SetStartupDuration records how long startup took.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// AddRoutes records HTTP routes for the summary.
func (s *Summary) AddRoutes(routes ...Route) {
	s.routes = append(s.routes, routes...)
}

// Routes returns the recorded routes sorted by path, then method.
func (s *Summary) Routes() []Route {
	out := append([]Route(nil), s.routes...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// Log writes the summary as structured log lines: one for the service,
// one per described component with its health, and one listing routes.
func (s *Summary) Log(log *logger.Logger, descs []component.Description, health []component.Health) {
	status := make(map[string]component.HealthStatus, len(health))
	for _, h := range health {
		status[h.Name] = h.Status
	}

	log.Info("Service started", map[string]interface{}{
		"name":               s.serviceName,
		"version":            s.version,
		logger.FieldDuration: s.startupDuration.Milliseconds(),
		"components":         len(descs),
	})

	for _, d := range descs {
		fields := map[string]interface{}{
			"type":    d.Type,
			"details": d.Details,
		}
		if st, ok := status[d.Component]; ok {
			fields[logger.FieldStatus] = string(st)
		}
		log.Info("Component "+d.Name, fields)
	}

	if len(s.routes) == 0 {
		return
	}
	paths := make([]string, 0, len(s.routes))
	for _, r := range s.Routes() {
		paths = append(paths, r.Method+" "+r.Path)
	}
	log.Debug("Routes registered", map[string]interface{}{"routes": paths})
}
