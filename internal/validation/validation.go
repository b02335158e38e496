// Package validation binds request input and validates it with
// go-playground/validator, producing field errors named after the
// query or path parameter the client actually sent.
package validation
