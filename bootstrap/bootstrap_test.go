package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/filmotheque/component"
	"github.com/kbukum/filmotheque/config"
	"github.com/kbukum/filmotheque/logger"
)

type testConfig struct {
	config.ServiceConfig
}

type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   component.Health
	started  bool
	stopped  bool
	order    *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	m.started = true
	if m.order != nil {
		*m.order = append(*m.order, "start:"+m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	m.stopped = true
	if m.order != nil {
		*m.order = append(*m.order, "stop:"+m.name)
	}
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) component.Health {
	return m.health
}

// describedComponent also reports a description and routes for the summary.
type describedComponent struct {
	mockComponent
}

func (d *describedComponent) Describe() component.Description {
	return component.Description{Type: "http", Details: "127.0.0.1:3000", Port: 3000}
}

func (d *describedComponent) Routes() []component.Route {
	return []component.Route{{Method: "GET", Path: "/films", Handler: "film.list"}}
}

func healthy(name string) *mockComponent {
	return &mockComponent{name: name, health: component.Health{Name: name, Status: component.StatusHealthy}}
}

func newTestApp(t *testing.T, opts ...Option) *App[*testConfig] {
	t.Helper()
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "test-svc", Version: "1.0.0", Environment: "development"}}
	opts = append([]Option{WithLogger(logger.Nop()), WithSummaryOutput(io.Discard)}, opts...)
	app, err := NewApp(cfg, opts...)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t)
	if app.Name != "test-svc" || app.Version != "1.0.0" {
		t.Errorf("unexpected identity %q %q", app.Name, app.Version)
	}
	if app.Components == nil || app.Logger == nil || app.Summary == nil {
		t.Fatal("expected registry, logger and summary to be set")
	}
	if app.Cfg.Name != "test-svc" {
		t.Errorf("expected typed cfg, got %q", app.Cfg.Name)
	}
	if app.gracefulTimeout != DefaultGracefulTimeout {
		t.Errorf("expected default timeout, got %v", app.gracefulTimeout)
	}
}

func TestNewApp_Validation(t *testing.T) {
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Environment: "development"}}
	if _, err := NewApp(cfg, WithLogger(logger.Nop())); err == nil {
		t.Fatal("expected validation error for missing name")
	}
}

func TestNewApp_Options(t *testing.T) {
	app := newTestApp(t, WithGracefulTimeout(3*time.Second))
	if app.gracefulTimeout != 3*time.Second {
		t.Errorf("expected 3s, got %v", app.gracefulTimeout)
	}
}

func TestRegisterComponent_Duplicate(t *testing.T) {
	app := newTestApp(t)
	if err := app.RegisterComponent(healthy("store")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := app.RegisterComponent(healthy("store")); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestReadyCheck(t *testing.T) {
	tests := []struct {
		name    string
		status  component.HealthStatus
		wantErr bool
	}{
		{"healthy", component.StatusHealthy, false},
		{"degraded", component.StatusDegraded, true},
		{"unhealthy", component.StatusUnhealthy, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t)
			_ = app.RegisterComponent(&mockComponent{name: "db", health: component.Health{Name: "db", Status: tc.status, Message: "slow"}})
			err := app.ReadyCheck(t.Context())
			if (err != nil) != tc.wantErr {
				t.Fatalf("wantErr=%v, got %v", tc.wantErr, err)
			}
			if err != nil && !strings.Contains(err.Error(), "db=") {
				t.Errorf("error should name the component: %v", err)
			}
		})
	}

	if err := newTestApp(t).ReadyCheck(t.Context()); err != nil {
		t.Errorf("empty registry should be ready, got %v", err)
	}
}

func TestRunTask_Lifecycle(t *testing.T) {
	app := newTestApp(t)
	var order []string
	store := &mockComponent{name: "store", health: component.Health{Name: "store", Status: component.StatusHealthy}, order: &order}
	srv := &mockComponent{name: "server", health: component.Health{Name: "server", Status: component.StatusHealthy}, order: &order}
	_ = app.RegisterComponent(store)
	_ = app.RegisterComponent(srv)

	hook := func(name string) Hook {
		return func(ctx context.Context) error {
			order = append(order, name)
			return nil
		}
	}
	app.OnStart(hook("onStart"))
	app.OnConfigure(func(ctx context.Context, a *App[*testConfig]) error {
		order = append(order, "configure:"+a.Cfg.Name)
		return nil
	})
	app.OnReady(hook("onReady"))
	app.OnStop(hook("onStop"))

	err := app.RunTask(t.Context(), func(ctx context.Context) error {
		order = append(order, "task")
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask: %v", err)
	}

	want := []string{
		"start:store", "start:server", "onStart", "configure:test-svc", "onReady",
		"task", "onStop", "stop:server", "stop:store",
	}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("lifecycle order\n got: %v\nwant: %v", order, want)
	}
}

func TestRunTask_TaskError(t *testing.T) {
	app := newTestApp(t)
	c := healthy("store")
	_ = app.RegisterComponent(c)

	boom := errors.New("boom")
	err := app.RunTask(t.Context(), func(ctx context.Context) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected task error, got %v", err)
	}
	if !c.stopped {
		t.Error("components must be stopped after a failed task")
	}
}

func TestRunTask_StartupFailures(t *testing.T) {
	fail := errors.New("fail")
	tests := []struct {
		name  string
		setup func(app *App[*testConfig])
	}{
		{"start hook", func(app *App[*testConfig]) {
			app.OnStart(func(ctx context.Context) error { return fail })
		}},
		{"configure", func(app *App[*testConfig]) {
			app.OnConfigure(func(ctx context.Context, _ *App[*testConfig]) error { return fail })
		}},
		{"ready hook", func(app *App[*testConfig]) {
			app.OnReady(func(ctx context.Context) error { return fail })
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t)
			c := healthy("store")
			_ = app.RegisterComponent(c)
			tc.setup(app)

			ran := false
			err := app.RunTask(t.Context(), func(ctx context.Context) error {
				ran = true
				return nil
			})
			if !errors.Is(err, fail) {
				t.Fatalf("expected startup error, got %v", err)
			}
			if ran {
				t.Error("task must not run after a failed startup")
			}
			if !c.stopped {
				t.Error("started components must be stopped after a failed startup")
			}
		})
	}
}

func TestRunTask_ComponentStartError(t *testing.T) {
	app := newTestApp(t)
	_ = app.RegisterComponent(&mockComponent{name: "store", startErr: errors.New("no disk")})

	err := app.RunTask(t.Context(), func(ctx context.Context) error { return nil })
	if err == nil || !strings.Contains(err.Error(), "initialization failed") {
		t.Fatalf("expected initialization error, got %v", err)
	}
}

func TestRunTask_StopErrors(t *testing.T) {
	app := newTestApp(t)
	_ = app.RegisterComponent(&mockComponent{name: "store", stopErr: errors.New("flush failed"),
		health: component.Health{Name: "store", Status: component.StatusHealthy}})

	err := app.RunTask(t.Context(), func(ctx context.Context) error { return nil })
	if err == nil || !strings.Contains(err.Error(), "flush failed") {
		t.Fatalf("expected stop error, got %v", err)
	}

	app = newTestApp(t)
	app.OnStop(func(ctx context.Context) error { return errors.New("hook") })
	taskErr := errors.New("task")
	err = app.RunTask(t.Context(), func(ctx context.Context) error { return taskErr })
	if !errors.Is(err, taskErr) {
		t.Errorf("task error should win over stop errors, got %v", err)
	}
}

func TestRun_ContextCancel(t *testing.T) {
	app := newTestApp(t)
	c := healthy("server")
	_ = app.RegisterComponent(c)

	ctx, cancel := context.WithCancel(t.Context())
	app.OnReady(func(context.Context) error {
		cancel()
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	if !c.started || !c.stopped {
		t.Error("component should have been started and stopped")
	}
}

func TestShutdown(t *testing.T) {
	app := newTestApp(t)
	c := healthy("store")
	_ = app.RegisterComponent(c)
	if err := app.Components.StartAll(t.Context()); err != nil {
		t.Fatal(err)
	}
	if err := app.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if !c.stopped {
		t.Error("expected component to be stopped")
	}
}

func TestSummary_Display(t *testing.T) {
	var buf bytes.Buffer
	app := newTestApp(t, WithSummaryOutput(&buf))
	_ = app.RegisterComponent(&describedComponent{mockComponent: *healthy("http-server")})
	_ = app.RegisterComponent(&mockComponent{name: "redis",
		health: component.Health{Name: "redis", Status: component.StatusUnhealthy, Message: "connection refused"}})

	err := app.RunTask(t.Context(), func(ctx context.Context) error { return nil })
	if err != nil {
		t.Fatalf("RunTask: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"test-svc v1.0.0 started",
		"http-server [http]: 127.0.0.1:3000 (:3000)",
		"Routes (1)",
		"/films -> film.list",
		"Health (unhealthy)",
		"[xx] redis unhealthy: connection refused",
		"[ok] http-server healthy",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestSummary_NilRegistry(t *testing.T) {
	var buf bytes.Buffer
	s := NewSummary("svc", "2.0.0")
	s.out = &buf
	s.SetStartupDuration(1500 * time.Millisecond)
	s.Display(t.Context(), nil)
	if !strings.Contains(buf.String(), "svc v2.0.0 started in 1.50s") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestTreePrefix(t *testing.T) {
	if treePrefix(0, 2) != "├──" || treePrefix(1, 2) != "└──" {
		t.Error("unexpected tree prefixes")
	}
}
