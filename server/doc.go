// Package server runs the HTTP API: a Gin engine behind h2c with graceful
// shutdown, the shared response envelopes and the operational endpoints.
//
// Plain net/http middleware (server/middleware) wraps the whole engine:
// recovery, request id, request logging and the body size limit. Gin-level
// middleware (telemetry, the auth gate, rate limiting) is attached to the
// engine or to route groups.
//
// Operational endpoints (server/endpoint):
//
//   - /health: component health aggregation
//   - /info: build information
//   - /alive: liveness probe
//   - /ready: readiness probe
package server
