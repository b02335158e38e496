// Package sqlerr turns PostgreSQL driver errors into API errors.
//
// Constraint violations become 400s with a stable code such as
// CLAIM_ALREADY_EXISTS or POLICY_NOT_FOUND, missing rows become 404s, and
// anything else is reported as a generic 500 so driver details never reach
// a client.
package sqlerr
