// Package middlewares provides net/http middleware for services that mount
// the Venmo handler. Both middlewares have the func(http.Handler) http.Handler
// shape and plug into chi or a plain mux.
//
// # Request ID
//
// RequestID assigns a unique ID to each request, reusing X-Request-ID or
// X-Correlation-ID from upstream. Pair it with RequestIDExtractor so every
// log record carries request_id:
//
//	log := logger.New(middlewares.RequestIDExtractor(), venmoauth.LogExtractor())
//	r := chi.NewRouter()
//	r.Use(middlewares.RequestID())
//
// # Recover
//
// Recover catches panics, logs them with a stack trace and answers 500:
//
//	r.Use(middlewares.Recover(middlewares.WithRecoverLogger(log)))
package middlewares
