package repository

import (
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrUniqueViolation = errors.New("unique constraint violated")
)

const pqUniqueViolation = "23505"

type Repositories struct {
	Person     PersonRepository
	Connection ConnectionRepository
	AuditLog   AuditLogRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Person:     NewPersonRepository(db),
		Connection: NewConnectionRepository(db),
		AuditLog:   NewAuditLogRepository(db),
	}
}

// translateError maps driver errors onto the repository sentinels.
func translateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return errors.Join(ErrUniqueViolation, err)
	}
	return err
}
