package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "request_id"

	// OperationKey holds the insurance operation serving the request.
	OperationKey = "operation"

	maxRequestIDLength = 128
)

// RequestID reuses the caller's X-Request-ID when it is a short printable
// token and generates one otherwise. The ID is stored in the echo context
// and echoed back on the response.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(RequestIDHeader)
			if !validRequestID(requestID) {
				requestID = uuid.NewString()
			}

			c.Set(RequestIDKey, requestID)
			c.Response().Header().Set(RequestIDHeader, requestID)

			return next(c)
		}
	}
}

// validRequestID accepts visible ASCII only, so a client-supplied ID can
// never break a log line or a response header.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '!' || id[i] > '~' {
			return false
		}
	}
	return true
}

func GetRequestID(c echo.Context) string {
	if requestID, ok := c.Get(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// SetOperation records which insurance operation serves the request.
func SetOperation(c echo.Context, operation string) {
	c.Set(OperationKey, operation)
}

// GetOperation returns the operation set by SetOperation, or "".
func GetOperation(c echo.Context) string {
	if operation, ok := c.Get(OperationKey).(string); ok {
		return operation
	}
	return ""
}
