// Package middleware holds the global echo middleware and the error handler.
//
// These intercept requests to handle cross-cutting concerns such as
// rate limiting, request IDs, request-scoped logging, tracing, CORS and
// panic recovery.
package middleware
