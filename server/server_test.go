package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/fittrack/component"
	apperrors "github.com/kbukum/fittrack/errors"
	"github.com/kbukum/fittrack/logger"
	"github.com/kbukum/fittrack/server"
)

func init() { gin.SetMode(gin.TestMode) }

func newTestServer(t *testing.T, checker func(context.Context) []component.Health) *server.Server {
	t.Helper()
	cfg := server.Config{Host: "127.0.0.1", Port: 0}
	cfg.ApplyDefaults()
	cfg.Port = 0
	srv := server.New(cfg, "fittrack", logger.Nop())
	srv.RegisterDefaultEndpoints(checker)
	return srv
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, path, http.NoBody))
	return rr
}

func TestConfig_Defaults(t *testing.T) {
	var cfg server.Config
	cfg.ApplyDefaults()

	if cfg.Port != 4000 {
		t.Errorf("Port = %d, want 4000", cfg.Port)
	}
	if cfg.MaxBodySize != "1MB" {
		t.Errorf("MaxBodySize = %s", cfg.MaxBodySize)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := server.Config{Port: 70000}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for out-of-range port")
	}
	cfg = server.Config{ReadTimeout: -1}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative timeout")
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		components []component.Health
		wantCode   int
		wantStatus string
	}{
		{"all healthy", []component.Health{{Name: "database", Status: component.StatusHealthy}}, http.StatusOK, "up"},
		{"degraded", []component.Health{
			{Name: "database", Status: component.StatusHealthy},
			{Name: "revocation-sweeper", Status: component.StatusDegraded},
		}, http.StatusOK, "degraded"},
		{"down", []component.Health{
			{Name: "database", Status: component.StatusUnhealthy, Message: "ping failed"},
			{Name: "revocation-sweeper", Status: component.StatusDegraded},
		}, http.StatusServiceUnavailable, "down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, func(context.Context) []component.Health { return tt.components })
			rr := do(t, srv.Handler(), http.MethodGet, "/health")

			if rr.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d", rr.Code, tt.wantCode)
			}
			var body struct {
				Service    string `json:"service"`
				Status     string `json:"status"`
				Components []any  `json:"components"`
			}
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != tt.wantStatus || body.Service != "fittrack" {
				t.Errorf("body = %+v", body)
			}
			if len(body.Components) != len(tt.components) {
				t.Errorf("components = %d, want %d", len(body.Components), len(tt.components))
			}
		})
	}
}

func TestProbes(t *testing.T) {
	unhealthy := func(context.Context) []component.Health {
		return []component.Health{{Name: "database", Status: component.StatusUnhealthy}}
	}
	srv := newTestServer(t, unhealthy)

	if rr := do(t, srv.Handler(), http.MethodGet, "/livez"); rr.Code != http.StatusOK {
		t.Errorf("/livez = %d, want 200", rr.Code)
	}
	if rr := do(t, srv.Handler(), http.MethodGet, "/readyz"); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("/readyz = %d, want 503", rr.Code)
	}
	rr := do(t, srv.Handler(), http.MethodGet, "/version")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"version"`) {
		t.Errorf("/version = %d %s", rr.Code, rr.Body.String())
	}
}

func TestMiddlewareApplied(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.GinEngine().GET("/boom", func(*gin.Context) { panic("boom") })

	rr := do(t, srv.Handler(), http.MethodGet, "/boom")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d, want 500", rr.Code)
	}
	if rr.Header().Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id on every response")
	}
}

func TestRespondWithError(t *testing.T) {
	srv := newTestServer(t, nil)
	engine := srv.GinEngine()
	engine.GET("/app", func(c *gin.Context) { server.RespondWithError(c, apperrors.DuplicateEmail()) })
	engine.GET("/plain", func(c *gin.Context) { server.RespondWithError(c, errors.New("disk on fire")) })
	engine.GET("/ok", func(c *gin.Context) { server.RespondMessage(c, "done") })

	rr := do(t, srv.Handler(), http.MethodGet, "/app")
	if rr.Code != http.StatusBadRequest || !strings.Contains(rr.Body.String(), "DUPLICATE_EMAIL") {
		t.Errorf("/app = %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, srv.Handler(), http.MethodGet, "/plain")
	if rr.Code != http.StatusInternalServerError || strings.Contains(rr.Body.String(), "disk on fire") {
		t.Errorf("/plain = %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, srv.Handler(), http.MethodGet, "/ok")
	if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != `{"message":"done"}` {
		t.Errorf("/ok = %d %s", rr.Code, rr.Body.String())
	}
}

func TestComponentLifecycle(t *testing.T) {
	srv := newTestServer(t, nil)
	c := server.NewComponent(srv)
	ctx := context.Background()

	if h := c.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("health before start = %s", h.Status)
	}
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if h := c.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("health after start = %s", h.Status)
	}

	resp, err := http.Get("http://" + srv.Addr() + "/livez")
	if err != nil {
		t.Fatalf("GET /livez: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/livez over the wire = %d", resp.StatusCode)
	}

	if err := c.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if h := c.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("health after stop = %s", h.Status)
	}
}
