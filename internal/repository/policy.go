package repository

import (
	"context"

	"github.com/deppfellow/go-insurance/internal/model"
	"github.com/deppfellow/go-insurance/internal/sqlerr"
	"github.com/jackc/pgx/v5"
)

const policyColumns = `policy_num, plan, insured_amount, person_id, created_at, updated_at`

type PolicyRepository struct {
	db DBTX
}

func NewPolicyRepository(db DBTX) *PolicyRepository {
	return &PolicyRepository{db: db}
}

func (r *PolicyRepository) Create(ctx context.Context, policy model.Policy) (*model.Policy, error) {
	rows, err := r.db.Query(ctx, `
		INSERT INTO policies (policy_num, plan, insured_amount, person_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+policyColumns,
		policy.PolicyNum, policy.Plan, policy.InsuredAmount, policy.PersonID,
	)
	if err != nil {
		return nil, sqlerr.WithTable(policiesTable, err)
	}

	return collectPolicy(rows)
}

func (r *PolicyRepository) GetByNum(ctx context.Context, policyNum string) (*model.Policy, error) {
	rows, err := r.db.Query(ctx, `SELECT `+policyColumns+` FROM policies WHERE policy_num = $1`, policyNum)
	if err != nil {
		return nil, sqlerr.WithTable(policiesTable, err)
	}

	return collectPolicy(rows)
}

func (r *PolicyRepository) ListByPerson(ctx context.Context, personID string) ([]model.Policy, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+policyColumns+`
		FROM policies
		WHERE person_id = $1
		ORDER BY created_at, policy_num`,
		personID,
	)
	if err != nil {
		return nil, sqlerr.WithTable(policiesTable, err)
	}

	policies, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Policy])
	if err != nil {
		return nil, sqlerr.WithTable(policiesTable, err)
	}
	return policies, nil
}

// ChangeHolder moves the policy to personID.
func (r *PolicyRepository) ChangeHolder(ctx context.Context, policyNum, personID string) (*model.Policy, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE policies
		SET person_id = $2, updated_at = now()
		WHERE policy_num = $1
		RETURNING `+policyColumns,
		policyNum, personID,
	)
	if err != nil {
		return nil, sqlerr.WithTable(policiesTable, err)
	}

	return collectPolicy(rows)
}

func collectPolicy(rows pgx.Rows) (*model.Policy, error) {
	policy, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.Policy])
	if err != nil {
		return nil, sqlerr.WithTable(policiesTable, err)
	}
	return &policy, nil
}
