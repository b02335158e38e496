package sqlerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/deppfellow/go-insurance/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func asHTTPError(t *testing.T, err error) *errs.HTTPError {
	t.Helper()

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr), "expected *errs.HTTPError, got %T", err)
	return httpErr
}

func TestMapCode(t *testing.T) {
	assert.Equal(t, UniqueViolation, MapCode("23505"))
	assert.Equal(t, ForeignKeyViolation, MapCode("23503"))
	assert.Equal(t, NotNullViolation, MapCode("23502"))
	assert.Equal(t, CheckViolation, MapCode("23514"))
	assert.Equal(t, NumericOutOfRange, MapCode("22003"))
	assert.Equal(t, ConnectionFailure, MapCode("08006"))
	assert.Equal(t, Other, MapCode("42P01"))
}

func TestHandleError_UniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert claim: %w", &pgconn.PgError{
		Code:           "23505",
		Severity:       "ERROR",
		TableName:      "claims",
		ConstraintName: "claims_pkey",
	})

	httpErr := asHTTPError(t, HandleError(err))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "CLAIM_ALREADY_EXISTS", httpErr.Code)
	assert.True(t, httpErr.Override)
}

func TestHandleError_ForeignKeyViolation(t *testing.T) {
	err := &pgconn.PgError{
		Code:       "23503",
		TableName:  "policies",
		ColumnName: "person_id",
	}

	httpErr := asHTTPError(t, HandleError(err))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "POLICY_NOT_FOUND", httpErr.Code)
	assert.Equal(t, "The referenced Person does not exist", httpErr.Message)
}

func TestHandleError_NotNullViolation(t *testing.T) {
	err := &pgconn.PgError{Code: "23502", TableName: "claims", ColumnName: "amount"}

	httpErr := asHTTPError(t, HandleError(err))
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "amount", httpErr.Errors[0].Field)
	assert.Equal(t, "The Amount is required", httpErr.Message)
}

func TestHandleError_NoRows(t *testing.T) {
	httpErr := asHTTPError(t, HandleError(WithTable("claims", pgx.ErrNoRows)))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "Claim not found", httpErr.Message)

	httpErr = asHTTPError(t, HandleError(WithTable("policies", pgx.ErrNoRows)))
	assert.Equal(t, "Policy not found", httpErr.Message)

	httpErr = asHTTPError(t, HandleError(pgx.ErrNoRows))
	assert.Equal(t, "Resource not found", httpErr.Message)
}

func TestHandleError_PassThroughAndFallback(t *testing.T) {
	conflict := errs.NewConflictError("already decided", true, nil)
	assert.Same(t, conflict, HandleError(conflict))

	httpErr := asHTTPError(t, HandleError(errors.New("connection reset")))
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)

	assert.NoError(t, HandleError(nil))
}

func TestHandleError_NumericOutOfRange(t *testing.T) {
	err := fmt.Errorf("insert claim: %w", &pgconn.PgError{
		Code:      "22003",
		Severity:  "ERROR",
		Message:   "numeric field overflow",
		TableName: "claims",
	})

	httpErr := asHTTPError(t, HandleError(err))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "CLAIM_OUT_OF_RANGE", httpErr.Code)
	assert.Equal(t, "A numeric value is out of range", httpErr.Message)
	assert.True(t, httpErr.Override)

	httpErr = asHTTPError(t, HandleError(&pgconn.PgError{Code: "22003", TableName: "policies", ColumnName: "insured_amount"}))
	assert.Equal(t, "POLICY_OUT_OF_RANGE", httpErr.Code)
	assert.Equal(t, "The Insured Amount value is out of range", httpErr.Message)
}

func TestHandleError_UnmappedPgErrorIsInternal(t *testing.T) {
	httpErr := asHTTPError(t, HandleError(&pgconn.PgError{Code: "40001"}))
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
}

func TestExtractColumnForUniqueViolation(t *testing.T) {
	assert.Equal(t, "email", extractColumnForUniqueViolation("unique_persons_email"))
	assert.Equal(t, "email", extractColumnForUniqueViolation("persons_email_key"))
	assert.Equal(t, "", extractColumnForUniqueViolation("something"))
}
