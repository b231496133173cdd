package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/filmotheque/component"
	"github.com/kbukum/filmotheque/logger"
)

func TestConfig_Defaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected default endpoint, got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m := cfg.Meter("svc", "1", "test"); m.Interval != 15*time.Second {
		t.Errorf("expected 15s interval, got %v", m.Interval)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{SampleRate: 2, MetricInterval: "15s"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected sample rate error")
	}
	cfg = Config{SampleRate: 0.5, MetricInterval: "soon"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected interval error")
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "ParentBased{root:AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{0.5, "ParentBased{root:TraceIDRatioBased{0.5}"},
	}
	for _, tc := range tests {
		got := sampler(tc.rate).Description()
		if len(got) < len(tc.want) || got[:len(tc.want)] != tc.want {
			t.Errorf("sampler(%v) = %q, want prefix %q", tc.rate, got, tc.want)
		}
	}
}

func TestNewMetrics_Noop(t *testing.T) {
	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	ctx := context.Background()
	metrics.RecordRequestStart(ctx)
	metrics.RecordRequestEnd(ctx, "GET", "/films", 200, 10*time.Millisecond)
	metrics.RecordAuth(ctx, "login", OutcomeSuccess, time.Millisecond)
	metrics.RecordError(ctx, "INTERNAL_ERROR", "film")
}

func TestMetrics_RecordAuth(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	ctx := context.Background()
	metrics.RecordAuth(ctx, "login", OutcomeRejected, time.Millisecond)
	metrics.RecordAuth(ctx, "login", OutcomeRejected, time.Millisecond)
	metrics.RecordAuth(ctx, "login", OutcomeSuccess, time.Millisecond)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "auth.events" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("unexpected data type %T", m.Data)
			}
			for _, dp := range sum.DataPoints {
				outcome, _ := dp.Attributes.Value(attribute.Key(AttrOutcome))
				counts[outcome.AsString()] += dp.Value
			}
		}
	}
	if counts[OutcomeRejected] != 2 || counts[OutcomeSuccess] != 1 {
		t.Errorf("unexpected auth counts %v", counts)
	}
}

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return rec
}

func TestOperation_Success(t *testing.T) {
	rec := withRecorder(t)

	ctx, op := StartOperation(context.Background(), "login", nil)
	op.SetAccount("acc-1")
	op.End(ctx, OutcomeSuccess, nil)

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]
	if s.Name() != "auth.login" {
		t.Errorf("expected span auth.login, got %s", s.Name())
	}
	attrs := map[attribute.Key]string{}
	for _, kv := range s.Attributes() {
		attrs[kv.Key] = kv.Value.Emit()
	}
	if attrs[AttrAccountID] != "acc-1" || attrs[AttrOutcome] != OutcomeSuccess {
		t.Errorf("unexpected attributes %v", attrs)
	}
	if s.Status().Code == codes.Error {
		t.Error("success must not set an error status")
	}
}

func TestOperation_RejectedIsNotSpanError(t *testing.T) {
	rec := withRecorder(t)

	ctx, op := StartOperation(context.Background(), "gate", nil)
	op.End(ctx, OutcomeRejected, fmt.Errorf("token expired"))

	if s := rec.Ended()[0]; s.Status().Code == codes.Error || len(s.Events()) != 0 {
		t.Error("rejections must not be recorded as span errors")
	}
}

func TestOperation_ErrorRecorded(t *testing.T) {
	rec := withRecorder(t)

	ctx, op := StartOperation(context.Background(), "register", nil)
	op.End(ctx, OutcomeError, fmt.Errorf("store down"))

	s := rec.Ended()[0]
	if s.Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", s.Status().Code)
	}
	if len(s.Events()) == 0 {
		t.Error("expected an exception event")
	}
}

func TestSetSpanError_NoSpan(t *testing.T) {
	SetSpanError(context.Background(), fmt.Errorf("no span error"))
}

func TestComponent_Disabled(t *testing.T) {
	ctx := context.Background()
	c := NewComponent(Config{}, "filmotheque", "dev", "test", logger.Nop())
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if h := c.Health(ctx); h.Status != component.StatusHealthy || h.Message != "export disabled" {
		t.Errorf("unexpected health %+v", h)
	}
	if d := c.Describe(); d.Details != "disabled" {
		t.Errorf("unexpected description %+v", d)
	}
	if err := c.Stop(ctx); err != nil {
		t.Errorf("Stop: %v", err)
	}
}

func TestComponent_Enabled(t *testing.T) {
	ctx := context.Background()
	prevTP, prevMP := otel.GetTracerProvider(), otel.GetMeterProvider()
	defer func() {
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
	}()

	// Exporters connect lazily, so Start succeeds without a collector.
	c := NewComponent(Config{Enabled: true, Insecure: true}, "filmotheque", "dev", "test", logger.Nop())
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if c.tp == nil || c.mp == nil {
		t.Fatal("expected providers to be installed")
	}
	stopCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_ = c.Stop(stopCtx)
}
