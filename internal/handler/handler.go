// Package handler implements the HTTP controllers.
//
// Handlers bind and validate the request through the typed Handle
// pipeline, call the service layer, and write the JSON response. Errors
// are returned to echo's error handler unchanged.
package handler
