// Package errors defines the application error type shared by every layer of
// the service. An AppError carries a machine-readable code, the HTTP status the
// transport should answer with, and an optional cause that is logged but never
// sent to the client.
package errors
