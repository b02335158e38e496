// Package errs defines the error shapes returned to API clients.
//
// Every failure that crosses the HTTP boundary is an *HTTPError, so clients
// always receive the same JSON envelope: a machine code, a message, the
// status, and optional field-level details.
package errs
