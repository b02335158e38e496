package repository

import (
	"context"

	"github.com/deppfellow/go-insurance/internal/model"
	"github.com/deppfellow/go-insurance/internal/sqlerr"
	"github.com/jackc/pgx/v5"
)

const personColumns = `person_id, name, gender, email, created_at`

type PersonRepository struct {
	db DBTX
}

func NewPersonRepository(db DBTX) *PersonRepository {
	return &PersonRepository{db: db}
}

func (r *PersonRepository) Create(ctx context.Context, person model.Person) (*model.Person, error) {
	rows, err := r.db.Query(ctx, `
		INSERT INTO persons (person_id, name, gender, email)
		VALUES ($1, $2, $3, $4)
		RETURNING `+personColumns,
		person.PersonID, person.Name, person.Gender, person.Email,
	)
	if err != nil {
		return nil, sqlerr.WithTable(personsTable, err)
	}

	created, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.Person])
	if err != nil {
		return nil, sqlerr.WithTable(personsTable, err)
	}
	return &created, nil
}

func (r *PersonRepository) GetByID(ctx context.Context, personID string) (*model.Person, error) {
	rows, err := r.db.Query(ctx, `SELECT `+personColumns+` FROM persons WHERE person_id = $1`, personID)
	if err != nil {
		return nil, sqlerr.WithTable(personsTable, err)
	}

	person, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.Person])
	if err != nil {
		return nil, sqlerr.WithTable(personsTable, err)
	}
	return &person, nil
}

// List returns one page of persons ordered by ID, plus the total count.
func (r *PersonRepository) List(ctx context.Context, limit, offset int) ([]model.Person, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM persons`).Scan(&total); err != nil {
		return nil, 0, sqlerr.WithTable(personsTable, err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+personColumns+`
		FROM persons
		ORDER BY person_id
		LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, sqlerr.WithTable(personsTable, err)
	}

	persons, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Person])
	if err != nil {
		return nil, 0, sqlerr.WithTable(personsTable, err)
	}
	return persons, total, nil
}
