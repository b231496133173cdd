package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Outcomes recorded for authentication flows.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Operation tracks one authentication flow: a span plus the auth metrics.
type Operation struct {
	Flow    string
	start   time.Time
	span    trace.Span
	metrics *Metrics
}

// StartOperation opens a span named "auth.<flow>". metrics may be nil.
func StartOperation(ctx context.Context, flow string, metrics *Metrics) (context.Context, *Operation) {
	ctx, span := StartSpan(ctx, "auth."+flow, trace.WithAttributes(attribute.String(AttrFlow, flow)))
	return ctx, &Operation{Flow: flow, start: time.Now(), span: span, metrics: metrics}
}

// SetAccount tags the span with the resolved account id.
func (o *Operation) SetAccount(id string) {
	o.span.SetAttributes(attribute.String(AttrAccountID, id))
}

// End closes the span and records the outcome. err is attached to the span
// only for OutcomeError; rejections are expected traffic.
func (o *Operation) End(ctx context.Context, outcome string, err error) {
	duration := time.Since(o.start)
	o.span.SetAttributes(attribute.String(AttrOutcome, outcome))
	if err != nil && outcome == OutcomeError {
		o.span.RecordError(err)
		o.span.SetStatus(codes.Error, err.Error())
	}
	o.span.End()

	if o.metrics != nil {
		o.metrics.RecordAuth(ctx, o.Flow, outcome, duration)
	}
}

// Duration returns the time elapsed since the operation started.
func (o *Operation) Duration() time.Duration {
	return time.Since(o.start)
}
