package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"family-connections/internal/domain"
)

type ConnectionRepository struct {
	mock.Mock
}

func (m *ConnectionRepository) Create(ctx context.Context, conn *domain.Connection) error {
	args := m.Called(ctx, conn)
	return args.Error(0)
}

func (m *ConnectionRepository) GetByID(ctx context.Context, id string) (*domain.Connection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Connection), args.Error(1)
}

func (m *ConnectionRepository) Update(ctx context.Context, conn *domain.Connection) error {
	args := m.Called(ctx, conn)
	return args.Error(0)
}

func (m *ConnectionRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ConnectionRepository) FindOne(ctx context.Context, fromID, toID string, relType domain.RelationshipType) (*domain.Connection, error) {
	args := m.Called(ctx, fromID, toID, relType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Connection), args.Error(1)
}

func (m *ConnectionRepository) ListByPerson(ctx context.Context, personID string) ([]domain.Connection, error) {
	args := m.Called(ctx, personID)
	return args.Get(0).([]domain.Connection), args.Error(1)
}

func (m *ConnectionRepository) ListByFamilyTree(ctx context.Context, treeID string) ([]domain.Connection, error) {
	args := m.Called(ctx, treeID)
	return args.Get(0).([]domain.Connection), args.Error(1)
}

func (m *ConnectionRepository) ListBetweenPersons(ctx context.Context, personIDs []string) ([]domain.Connection, error) {
	args := m.Called(ctx, personIDs)
	return args.Get(0).([]domain.Connection), args.Error(1)
}

func (m *ConnectionRepository) Exists(ctx context.Context, fromID, toID string, relType domain.RelationshipType, scopeID *string) (bool, error) {
	args := m.Called(ctx, fromID, toID, relType, scopeID)
	return args.Bool(0), args.Error(1)
}
