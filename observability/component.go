package observability

import (
	"context"
	"errors"
	"fmt"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/filmotheque/component"
	"github.com/kbukum/filmotheque/logger"
)

// Component installs the tracer and meter providers on Start and flushes
// them on Stop. Disabled, it does nothing.
type Component struct {
	cfg     Config
	service string
	version string
	env     string
	log     *logger.Logger

	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

var _ component.Component = (*Component)(nil)

// NewComponent creates the observability component for a service.
func NewComponent(cfg Config, service, version, env string, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, service: service, version: version, env: env, log: log.WithComponent("observability")}
}

func (c *Component) Name() string { return "observability" }

func (c *Component) Start(ctx context.Context) error {
	if !c.cfg.Enabled {
		c.log.Debug("Observability export disabled")
		return nil
	}
	if err := c.cfg.Validate(); err != nil {
		return err
	}
	tp, err := InitTracer(ctx, c.cfg.Tracer(c.service, c.version, c.env))
	if err != nil {
		return fmt.Errorf("observability tracer: %w", err)
	}
	mp, err := InitMeter(ctx, c.cfg.Meter(c.service, c.version, c.env))
	if err != nil {
		_ = tp.Shutdown(ctx)
		return fmt.Errorf("observability meter: %w", err)
	}
	c.tp, c.mp = tp, mp
	return nil
}

func (c *Component) Stop(ctx context.Context) error {
	var errs []error
	if c.tp != nil {
		errs = append(errs, c.tp.Shutdown(ctx))
	}
	if c.mp != nil {
		errs = append(errs, c.mp.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

func (c *Component) Health(_ context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if !c.cfg.Enabled {
		h.Message = "export disabled"
	}
	return h
}

// Describe returns the startup summary entry.
func (c *Component) Describe() component.Description {
	details := "disabled"
	if c.cfg.Enabled {
		details = fmt.Sprintf("otlp %s sample=%.2f", c.cfg.Endpoint, c.cfg.SampleRate)
	}
	return component.Description{Name: "OpenTelemetry", Type: "observability", Details: details}
}
