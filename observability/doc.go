// Package observability wires OpenTelemetry tracing and metrics.
//
// The Component installs OTLP/HTTP exporters when enabled. Instruments come
// from NewMetrics and are safe to create before the component starts:
//
//	metrics, err := observability.NewMetrics(observability.Meter("filmotheque"))
//	ctx, op := observability.StartOperation(ctx, "login", metrics)
//	defer op.End(ctx, observability.OutcomeSuccess, nil)
package observability
