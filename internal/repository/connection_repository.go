package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"family-connections/internal/domain"
)

type ConnectionRepository interface {
	Create(ctx context.Context, conn *domain.Connection) error
	GetByID(ctx context.Context, id string) (*domain.Connection, error)
	Update(ctx context.Context, conn *domain.Connection) error
	Delete(ctx context.Context, id string) error
	FindOne(ctx context.Context, fromID, toID string, relType domain.RelationshipType) (*domain.Connection, error)
	ListByPerson(ctx context.Context, personID string) ([]domain.Connection, error)
	ListByFamilyTree(ctx context.Context, treeID string) ([]domain.Connection, error)
	ListBetweenPersons(ctx context.Context, personIDs []string) ([]domain.Connection, error)
	Exists(ctx context.Context, fromID, toID string, relType domain.RelationshipType, scopeID *string) (bool, error)
}

type connectionRepository struct {
	db *sqlx.DB
}

func NewConnectionRepository(db *sqlx.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

const connectionColumns = `id, from_person_id, to_person_id, relationship_type, family_tree_id, group_id,
		organization_id, notes, metadata, created_at, updated_at`

func (r *connectionRepository) Create(ctx context.Context, conn *domain.Connection) error {
	query := `
		INSERT INTO connections (id, from_person_id, to_person_id, relationship_type, family_tree_id,
			group_id, organization_id, notes, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		conn.ID, conn.FromPersonID, conn.ToPersonID, conn.RelationshipType, conn.FamilyTreeID,
		conn.GroupID, conn.OrganizationID, conn.Notes, conn.Metadata,
	).Scan(&conn.CreatedAt, &conn.UpdatedAt)
	return translateError(err)
}

func (r *connectionRepository) GetByID(ctx context.Context, id string) (*domain.Connection, error) {
	var conn domain.Connection
	query := `SELECT ` + connectionColumns + ` FROM connections WHERE id = $1`

	err := r.db.GetContext(ctx, &conn, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepository) Update(ctx context.Context, conn *domain.Connection) error {
	query := `
		UPDATE connections
		SET from_person_id = $2, to_person_id = $3, relationship_type = $4, notes = $5,
			metadata = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		conn.ID, conn.FromPersonID, conn.ToPersonID, conn.RelationshipType, conn.Notes, conn.Metadata,
	).Scan(&conn.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return translateError(err)
}

func (r *connectionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM connections WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *connectionRepository) FindOne(ctx context.Context, fromID, toID string, relType domain.RelationshipType) (*domain.Connection, error) {
	var conn domain.Connection
	query := `SELECT ` + connectionColumns + `
		FROM connections
		WHERE from_person_id = $1 AND to_person_id = $2 AND relationship_type = $3
		ORDER BY created_at
		LIMIT 1`

	err := r.db.GetContext(ctx, &conn, query, fromID, toID, relType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepository) ListByPerson(ctx context.Context, personID string) ([]domain.Connection, error) {
	query := `SELECT ` + connectionColumns + `
		FROM connections
		WHERE from_person_id = $1 OR to_person_id = $1
		ORDER BY created_at, id`

	conns := []domain.Connection{}
	err := r.db.SelectContext(ctx, &conns, query, personID)
	return conns, err
}

func (r *connectionRepository) ListByFamilyTree(ctx context.Context, treeID string) ([]domain.Connection, error) {
	query := `SELECT ` + connectionColumns + `
		FROM connections
		WHERE family_tree_id = $1
		ORDER BY created_at, id`

	conns := []domain.Connection{}
	err := r.db.SelectContext(ctx, &conns, query, treeID)
	return conns, err
}

func (r *connectionRepository) ListBetweenPersons(ctx context.Context, personIDs []string) ([]domain.Connection, error) {
	if len(personIDs) == 0 {
		return []domain.Connection{}, nil
	}

	query, args, err := sqlx.In(`SELECT `+connectionColumns+`
		FROM connections
		WHERE from_person_id IN (?) AND to_person_id IN (?)
		ORDER BY created_at, id`, personIDs, personIDs)
	if err != nil {
		return nil, err
	}

	query = r.db.Rebind(query)
	conns := []domain.Connection{}
	err = r.db.SelectContext(ctx, &conns, query, args...)
	return conns, err
}

func (r *connectionRepository) Exists(ctx context.Context, fromID, toID string, relType domain.RelationshipType, scopeID *string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM connections
			WHERE from_person_id = $1 AND to_person_id = $2 AND relationship_type = $3`
	args := []interface{}{fromID, toID, relType}

	if scopeID != nil {
		query += ` AND (family_tree_id = $4 OR group_id = $4 OR organization_id = $4)`
		args = append(args, *scopeID)
	}
	query += `)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, args...)
	return exists, err
}
