// Package logger provides structured logging on top of zerolog.
//
// Loggers carry the service name, can be scoped to a component and accept
// field maps on every call. Request and account ids stored in a context with
// ContextWithRequestID / ContextWithAccountID are attached by WithContext.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("account")
//	log.Info("account registered", logger.Fields("id", id))
package logger
