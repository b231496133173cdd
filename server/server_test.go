package server

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/filmotheque/component"
	apperrors "github.com/kbukum/filmotheque/errors"
	"github.com/kbukum/filmotheque/logger"
	"github.com/kbukum/filmotheque/security"
	"github.com/kbukum/filmotheque/security/tlstest"
	"github.com/kbukum/filmotheque/server/middleware"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := Config{Host: "127.0.0.1", MaxBodySize: "1KB"}
	return New(cfg, logger.Nop())
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func do(t *testing.T, h http.Handler, method, path string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, path, http.NoBody))
	var env envelope
	_ = json.Unmarshal(rr.Body.Bytes(), &env)
	return rr, env
}

func TestServer_UnknownRouteIsJSON404(t *testing.T) {
	s := newTestServer(t)
	rr, env := do(t, s.Handler(), "GET", "/nowhere")

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if env.Error == nil || env.Error.Code != string(apperrors.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND envelope, got %s", rr.Body.String())
	}
	if rr.Header().Get(middleware.HeaderRequestID) == "" {
		t.Error("expected request id on unmatched routes too")
	}
}

func TestServer_HandlerPanicIs500(t *testing.T) {
	s := newTestServer(t)
	s.Engine().GET("/boom", func(*gin.Context) { panic("boom") })

	rr, env := do(t, s.Handler(), "GET", "/boom")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if env.Error == nil || env.Error.Code != string(apperrors.ErrCodeInternal) {
		t.Fatalf("expected INTERNAL_ERROR envelope, got %s", rr.Body.String())
	}
}

func TestRespondWithError(t *testing.T) {
	s := newTestServer(t)
	s.Engine().GET("/plain", func(c *gin.Context) { RespondWithError(c, errors.New("dsn=secret")) })
	s.Engine().GET("/app", func(c *gin.Context) { RespondWithError(c, fmt.Errorf("wrapped: %w", apperrors.NotFound("film", "1"))) })
	s.Engine().GET("/ok", func(c *gin.Context) { RespondCreated(c, gin.H{"id": "1"}) })

	rr, env := do(t, s.Handler(), "GET", "/plain")
	if rr.Code != http.StatusInternalServerError || env.Error.Code != string(apperrors.ErrCodeInternal) {
		t.Errorf("plain error: got %d %s", rr.Code, rr.Body.String())
	}
	if strings.Contains(rr.Body.String(), "secret") {
		t.Error("cause leaked into the response")
	}

	rr, env = do(t, s.Handler(), "GET", "/app")
	if rr.Code != http.StatusNotFound || env.Error.Code != string(apperrors.ErrCodeNotFound) {
		t.Errorf("app error: got %d %s", rr.Code, rr.Body.String())
	}

	rr, env = do(t, s.Handler(), "GET", "/ok")
	if rr.Code != http.StatusCreated || string(env.Data) != `{"id":"1"}` {
		t.Errorf("created: got %d %s", rr.Code, rr.Body.String())
	}
}

func TestServer_DefaultEndpoints(t *testing.T) {
	status := component.StatusHealthy
	checker := func(context.Context) []component.Health {
		return []component.Health{{Name: "store", Status: status}}
	}
	s := newTestServer(t)
	s.ApplyDefaults("filmotheque", checker, nil)

	for _, path := range []string{"/health", "/info", "/alive", "/ready"} {
		if rr, _ := do(t, s.Handler(), "GET", path); rr.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rr.Code)
		}
	}

	status = component.StatusUnhealthy
	for _, path := range []string{"/health", "/ready"} {
		if rr, _ := do(t, s.Handler(), "GET", path); rr.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: expected 503 when unhealthy, got %d", path, rr.Code)
		}
	}
	if rr, _ := do(t, s.Handler(), "GET", "/alive"); rr.Code != http.StatusOK {
		t.Errorf("/alive must not depend on components, got %d", rr.Code)
	}
}

func TestServer_StartStop(t *testing.T) {
	s := newTestServer(t)
	s.RegisterDefaultEndpoints("filmotheque", nil)
	c := NewComponent(s)

	if h := c.Health(t.Context()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if err := c.Start(t.Context()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = c.Stop(context.Background()) })

	if h := c.Health(t.Context()); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy after start, got %s", h.Status)
	}

	resp, err := http.Get("http://" + s.Addr() + "/alive")
	if err != nil {
		t.Fatalf("GET /alive: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestServer_StartTLS(t *testing.T) {
	certs := tlstest.GenerateTLSCerts(t)
	cfg := Config{Host: "127.0.0.1", MaxBodySize: "1KB"}
	cfg.TLS = security.TLSConfig{Enabled: true, CertFile: certs.CertFile, KeyFile: certs.KeyFile}
	s := New(cfg, logger.Nop())
	s.RegisterDefaultEndpoints("filmotheque", nil)
	if err := s.Start(t.Context()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = s.Stop(context.Background()) })

	client := &http.Client{Transport: &http.Transport{TLSClientConfig: &tls.Config{RootCAs: certs.CertPool}}}
	resp, err := client.Get("https://" + s.Addr() + "/alive")
	if err != nil {
		t.Fatalf("GET /alive over TLS: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestRoutes_SystemLast(t *testing.T) {
	s := newTestServer(t)
	s.RegisterDefaultEndpoints("filmotheque", nil)
	s.Engine().DELETE("/films/:id", func(*gin.Context) {})
	s.Engine().GET("/films/:id", func(*gin.Context) {})

	routes := NewComponent(s).Routes()
	if len(routes) != 6 {
		t.Fatalf("expected 6 routes, got %d", len(routes))
	}
	if routes[0].Method != "GET" || routes[0].Path != "/films/:id" || routes[1].Method != "DELETE" {
		t.Errorf("API routes should come first, GET before DELETE: %+v", routes[:2])
	}
	for _, r := range routes[2:] {
		if !systemPaths[r.Path] {
			t.Errorf("expected system route, got %s", r.Path)
		}
	}
}

func TestFormatHandlerName(t *testing.T) {
	tests := map[string]string{
		"github.com/kbukum/filmotheque/film.(*Handler).list-fm":        "Handler.list",
		"github.com/kbukum/filmotheque/server/endpoint.Health.func1":   "health",
		"github.com/kbukum/filmotheque/account.(*Handler).register-fm": "Handler.register",
	}
	for in, want := range tests {
		if got := formatHandlerName(in); got != want {
			t.Errorf("formatHandlerName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestConfig(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Port != 3000 || cfg.MaxBodySize != middleware.DefaultMaxBodySize {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	bad := []Config{
		{Port: 70000, MaxBodySize: "1MB"},
		{Port: 80, MaxBodySize: "lots"},
		{Port: 80, MaxBodySize: "1MB", ReadTimeout: -1},
		{Port: 80, MaxBodySize: "1MB", RateLimit: middleware.RateLimitConfig{RequestsPerMinute: -1}},
		{Port: 80, MaxBodySize: "1MB", TLS: security.TLSConfig{Enabled: true}},
		{Port: 80, MaxBodySize: "1MB", TLS: security.TLSConfig{Enabled: true, CertFile: "c.pem"}},
	}
	for i, c := range bad {
		if err := c.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}
