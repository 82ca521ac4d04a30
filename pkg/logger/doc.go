// Package logger builds log/slog loggers with context extraction and optional Sentry fan-out.
//
// A ContextExtractor reads a request-scoped value from a context and turns it
// into an attribute. Extractors run on every log call, so values set by
// middleware (request IDs, OAuth flow IDs) appear on every record logged with
// the request context:
//
//	log := logger.New(
//		middlewares.RequestIDExtractor(),
//		venmoauth.LogExtractor(),
//	)
//	log.InfoContext(r.Context(), "callback handled")
//	// {"level":"INFO","msg":"callback handled","request_id":"...","venmo_flow_id":"..."}
//
// NewWithConfig selects level, format (json or text) and output.
// NewWithSentry additionally sends warnings and errors to Sentry when a DSN
// is configured and silently degrades to stdout otherwise, so the same code
// path works locally and in production.
//
// NewNope discards everything and is the default for library code.
package logger
