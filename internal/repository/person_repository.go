package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"family-connections/internal/domain"
)

// PersonRepository is read-only here; persons are owned by the surrounding application.
type PersonRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Person, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Person, error)
	ListByFamilyTree(ctx context.Context, treeID string) ([]domain.Person, error)
}

type personRepository struct {
	db *sqlx.DB
}

func NewPersonRepository(db *sqlx.DB) PersonRepository {
	return &personRepository{db: db}
}

const personColumns = `id, name, gender, date_of_birth, donor, is_self, is_alive, family_tree_id, organization_id`

func (r *personRepository) GetByID(ctx context.Context, id string) (*domain.Person, error) {
	var person domain.Person
	query := `SELECT ` + personColumns + ` FROM persons WHERE id = $1`

	err := r.db.GetContext(ctx, &person, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *personRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Person, error) {
	if len(ids) == 0 {
		return []domain.Person{}, nil
	}

	query, args, err := sqlx.In(`SELECT `+personColumns+` FROM persons WHERE id IN (?) ORDER BY name, id`, ids)
	if err != nil {
		return nil, err
	}

	query = r.db.Rebind(query)
	persons := []domain.Person{}
	err = r.db.SelectContext(ctx, &persons, query, args...)
	return persons, err
}

// ListByFamilyTree returns persons owned by the tree plus persons added to it
// through the membership table.
func (r *personRepository) ListByFamilyTree(ctx context.Context, treeID string) ([]domain.Person, error) {
	query := `
		SELECT ` + personColumns + ` FROM persons p
		WHERE p.family_tree_id = $1
			OR EXISTS (
				SELECT 1 FROM family_tree_members m
				WHERE m.family_tree_id = $1 AND m.person_id = p.id
			)
		ORDER BY p.name, p.id`

	persons := []domain.Person{}
	err := r.db.SelectContext(ctx, &persons, query, treeID)
	return persons, err
}
