package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deppfellow/go-insurance/internal/errs"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type claimQuery struct {
	Holder string          `param:"holder" validate:"required"`
	Amount decimal.Decimal `query:"amount" validate:"amount"`
	Limit  int             `query:"limit" validate:"omitempty,min=1,max=100"`
	Gender string          `query:"gender" validate:"omitempty,oneof=M F O"`
}

func (q *claimQuery) Validate() error { return Struct(q) }

type customRule struct{}

func (customRule) Validate() error {
	return CustomValidationErrors{{Field: "remarks", Message: "must not be blank"}}
}

func newContext(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("holder")
	c.SetParamValues("P1")
	return c
}

func asHTTPError(t *testing.T, err error) *errs.HTTPError {
	t.Helper()
	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	return httpErr
}

func TestBindAndValidate_OK(t *testing.T) {
	var q claimQuery
	err := BindAndValidate(newContext("/create_claim/P1?amount=12.50&limit=5"), &q)
	require.NoError(t, err)

	assert.Equal(t, "P1", q.Holder)
	assert.True(t, q.Amount.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, 5, q.Limit)
}

func TestBindAndValidate_FieldErrorsUseParameterNames(t *testing.T) {
	var q claimQuery
	err := BindAndValidate(newContext("/create_claim/P1?amount=0&limit=500&gender=X"), &q)

	httpErr := asHTTPError(t, err)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)

	byField := map[string]string{}
	for _, fe := range httpErr.Errors {
		byField[fe.Field] = fe.Error
	}
	assert.Equal(t, "must be greater than 0", byField["amount"])
	assert.Equal(t, "must not exceed 100", byField["limit"])
	assert.Equal(t, "must be one of: M F O", byField["gender"])
}

func TestBindAndValidate_Amount(t *testing.T) {
	tests := []struct {
		amount  string
		wantErr string
	}{
		{"0.01", ""},
		{"1.500", ""},
		{MaxAmount, ""},
		{"0", "must be greater than 0"},
		{"-3", "must be greater than 0"},
		{"0.001", "must have at most 2 decimal places"},
		{"12.345", "must have at most 2 decimal places"},
		{"10000000000000000", "must not exceed " + MaxAmount},
		{"100000000000000000000", "must not exceed " + MaxAmount},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			var q claimQuery
			err := BindAndValidate(newContext("/create_claim/P1?amount="+tt.amount), &q)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}

			httpErr := asHTTPError(t, err)
			require.Len(t, httpErr.Errors, 1)
			assert.Equal(t, "amount", httpErr.Errors[0].Field)
			assert.Equal(t, tt.wantErr, httpErr.Errors[0].Error)
		})
	}
}

func TestBindAndValidate_BindFailure(t *testing.T) {
	var q claimQuery
	err := BindAndValidate(newContext("/create_claim/P1?amount=lots"), &q)

	httpErr := asHTTPError(t, err)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Empty(t, httpErr.Errors)
	assert.NotEmpty(t, httpErr.Message)
}

func TestBindAndValidate_CustomErrors(t *testing.T) {
	err := BindAndValidate(newContext("/x"), &customRule{})

	httpErr := asHTTPError(t, err)
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "remarks", httpErr.Errors[0].Field)
}
