package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeUpperCaseWithUnderscores(t *testing.T) {
	assert.Equal(t, "BAD_REQUEST", MakeUpperCaseWithUnderscores("Bad Request"))
	assert.Equal(t, "TOO_MANY_REQUESTS", MakeUpperCaseWithUnderscores(http.StatusText(http.StatusTooManyRequests)))
}

func TestConstructors(t *testing.T) {
	custom := "CLAIM_ALREADY_DECIDED"

	tests := []struct {
		name   string
		err    *HTTPError
		status int
		code   string
	}{
		{"forbidden", NewForbiddenError("no", false), http.StatusForbidden, "FORBIDDEN"},
		{"bad request", NewBadRequestError("bad", false, nil, nil, nil), http.StatusBadRequest, "BAD_REQUEST"},
		{"not found", NewNotFoundError("missing", true, nil), http.StatusNotFound, "NOT_FOUND"},
		{"conflict custom code", NewConflictError("decided", true, &custom), http.StatusConflict, custom},
		{"rate limited", NewTooManyRequestsError("slow down"), http.StatusTooManyRequests, "TOO_MANY_REQUESTS"},
		{"internal", NewInternalServerError(), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}

func TestHTTPError_As(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", NewNotFoundError("claim not found", true, nil))

	var httpErr *HTTPError
	assert.True(t, errors.As(wrapped, &httpErr))
	assert.Equal(t, "claim not found", httpErr.Error())
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
}

func TestNewTooManyRequestsError_CarriesRetryAction(t *testing.T) {
	err := NewTooManyRequestsError("slow down")
	if assert.NotNil(t, err.Action) {
		assert.Equal(t, ActionTypeRetry, err.Action.Type)
	}
	assert.True(t, err.Override)
}
