package repository

import (
	"context"
	"errors"

	"github.com/deppfellow/go-insurance/internal/model"
	"github.com/deppfellow/go-insurance/internal/sqlerr"
	"github.com/jackc/pgx/v5"
)

const claimColumns = `claim_id, amount, claimed_amount, person_id, policy_num, status, remarks, created_at, decided_at`

// ErrClaimNotOpen is returned by Decide when the claim exists but was
// already approved or rejected.
var ErrClaimNotOpen = errors.New("claim is not open")

type ClaimRepository struct {
	db DBTX
}

func NewClaimRepository(db DBTX) *ClaimRepository {
	return &ClaimRepository{db: db}
}

func (r *ClaimRepository) Create(ctx context.Context, claim model.Claim) (*model.Claim, error) {
	rows, err := r.db.Query(ctx, `
		INSERT INTO claims (claim_id, amount, person_id, policy_num, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+claimColumns,
		claim.ClaimID, claim.Amount, claim.PersonID, claim.PolicyNum, model.ClaimStatusOpen,
	)
	if err != nil {
		return nil, sqlerr.WithTable(claimsTable, err)
	}

	return collectClaim(rows)
}

func (r *ClaimRepository) GetByID(ctx context.Context, claimID string) (*model.Claim, error) {
	rows, err := r.db.Query(ctx, `SELECT `+claimColumns+` FROM claims WHERE claim_id = $1`, claimID)
	if err != nil {
		return nil, sqlerr.WithTable(claimsTable, err)
	}

	return collectClaim(rows)
}

func (r *ClaimRepository) ListByPerson(ctx context.Context, personID string) ([]model.Claim, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+claimColumns+`
		FROM claims
		WHERE person_id = $1
		ORDER BY created_at, claim_id`,
		personID,
	)
	if err != nil {
		return nil, sqlerr.WithTable(claimsTable, err)
	}

	claims, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Claim])
	if err != nil {
		return nil, sqlerr.WithTable(claimsTable, err)
	}
	return claims, nil
}

// Decide applies decision only while the claim is still open. The status
// guard lives in the WHERE clause so two concurrent decisions cannot both win.
func (r *ClaimRepository) Decide(ctx context.Context, decision model.ClaimDecision) (*model.Claim, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE claims
		SET status = $2, claimed_amount = $3, remarks = $4, decided_at = $5
		WHERE claim_id = $1 AND status = 'open'
		RETURNING `+claimColumns,
		decision.ClaimID, decision.Status, decision.ClaimedAmount, decision.Remarks, decision.DecidedAt,
	)
	if err != nil {
		return nil, sqlerr.WithTable(claimsTable, err)
	}

	claim, err := collectClaim(rows)
	if sqlerr.IsNoRows(err) {
		return nil, ErrClaimNotOpen
	}
	return claim, err
}

func collectClaim(rows pgx.Rows) (*model.Claim, error) {
	claim, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.Claim])
	if err != nil {
		return nil, sqlerr.WithTable(claimsTable, err)
	}
	return &claim, nil
}
