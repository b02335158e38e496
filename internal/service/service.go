// Package service holds the insurance business rules.
//
// It sits between the HTTP handlers and the repositories: handlers pass
// in already validated input, and the service decides whether the
// operation is allowed, persists it, keeps the cache coherent, and
// schedules notifications.
package service
