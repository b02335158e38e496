package repository

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/deppfellow/go-insurance/internal/database"
	"github.com/deppfellow/go-insurance/internal/errs"
	"github.com/deppfellow/go-insurance/internal/model"
	"github.com/deppfellow/go-insurance/internal/sqlerr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTx opens a transaction against INSURANCE_TEST_DATABASE_URL that is
// rolled back when the test ends. Tests are skipped without a database.
func testTx(t *testing.T) pgx.Tx {
	t.Helper()

	dsn := os.Getenv("INSURANCE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("INSURANCE_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	logger := zerolog.Nop()
	require.NoError(t, database.MigrateDSN(ctx, &logger, dsn))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })

	return tx
}

func seed(t *testing.T, tx pgx.Tx) (*model.Person, *model.Policy) {
	t.Helper()
	ctx := context.Background()

	person, err := NewPersonRepository(tx).Create(ctx, model.Person{PersonID: "P-100", Name: "Ana", Gender: "F"})
	require.NoError(t, err)

	policy, err := NewPolicyRepository(tx).Create(ctx, model.Policy{
		PolicyNum:     "POL-100",
		Plan:          "gold",
		InsuredAmount: decimal.RequireFromString("50000"),
		PersonID:      person.PersonID,
	})
	require.NoError(t, err)

	return person, policy
}

func TestClaimRepository_Lifecycle(t *testing.T) {
	tx := testTx(t)
	ctx := context.Background()
	person, policy := seed(t, tx)
	claims := NewClaimRepository(tx)

	created, err := claims.Create(ctx, model.Claim{
		ClaimID:   "C-1",
		Amount:    decimal.RequireFromString("1200.50"),
		PersonID:  person.PersonID,
		PolicyNum: policy.PolicyNum,
	})
	require.NoError(t, err)
	assert.Equal(t, model.ClaimStatusOpen, created.Status)
	assert.True(t, created.ClaimedAmount.IsZero())
	assert.Nil(t, created.DecidedAt)

	decided, err := claims.Decide(ctx, model.ClaimDecision{
		ClaimID:       "C-1",
		Status:        model.ClaimStatusClaimed,
		ClaimedAmount: decimal.RequireFromString("1000"),
		Remarks:       "partial",
		DecidedAt:     time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, model.ClaimStatusClaimed, decided.Status)
	assert.True(t, decided.ClaimedAmount.Equal(decimal.RequireFromString("1000")))
	require.NotNil(t, decided.DecidedAt)

	_, err = claims.Decide(ctx, model.ClaimDecision{ClaimID: "C-1", Status: model.ClaimStatusRejected, DecidedAt: time.Now()})
	assert.ErrorIs(t, err, ErrClaimNotOpen)

	listed, err := claims.ListByPerson(ctx, person.PersonID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "partial", listed[0].Remarks)
}

func TestClaimRepository_GetByIDMissing(t *testing.T) {
	tx := testTx(t)

	_, err := NewClaimRepository(tx).GetByID(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, sqlerr.IsNoRows(err))

	var httpErr *errs.HTTPError
	require.True(t, errors.As(sqlerr.HandleError(err), &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "Claim not found", httpErr.Message)
}

func TestPolicyRepository_ChangeHolder(t *testing.T) {
	tx := testTx(t)
	ctx := context.Background()
	_, policy := seed(t, tx)

	other, err := NewPersonRepository(tx).Create(ctx, model.Person{PersonID: "P-200", Name: "Ben", Gender: "M"})
	require.NoError(t, err)

	moved, err := NewPolicyRepository(tx).ChangeHolder(ctx, policy.PolicyNum, other.PersonID)
	require.NoError(t, err)
	assert.Equal(t, "P-200", moved.PersonID)

	_, err = NewPolicyRepository(tx).ChangeHolder(ctx, policy.PolicyNum, "missing-person")
	assert.Equal(t, sqlerr.ForeignKeyViolation, sqlerr.ErrCode(err))
}

func TestPersonRepository_List(t *testing.T) {
	tx := testTx(t)
	ctx := context.Background()
	repo := NewPersonRepository(tx)

	for _, id := range []string{"L-1", "L-2", "L-3"} {
		_, err := repo.Create(ctx, model.Person{PersonID: id, Name: id})
		require.NoError(t, err)
	}

	page, total, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, total, 3)
	assert.Len(t, page, 2)
}
