// Package lib groups supporting libraries that sit beside the request path:
// the Redis read-through cache, background jobs (asynq), claim emails
// (Resend) and dependency health checks.
package lib
