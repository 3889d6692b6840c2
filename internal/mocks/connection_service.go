package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"family-connections/internal/domain"
	"family-connections/internal/service/connection"
)

type ConnectionService struct {
	mock.Mock
}

func (m *ConnectionService) CreateConnection(ctx context.Context, userID string, input domain.CreateConnectionInput) (*domain.Connection, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Connection), args.Error(1)
}

func (m *ConnectionService) CreateConnectionWithReciprocal(ctx context.Context, userID string, input domain.CreateConnectionInput) (*domain.ConnectionResult, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConnectionResult), args.Error(1)
}

func (m *ConnectionService) GetConnection(ctx context.Context, id string) (*domain.Connection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Connection), args.Error(1)
}

func (m *ConnectionService) GetConnectionsForPerson(ctx context.Context, personID string) ([]domain.PersonConnection, error) {
	args := m.Called(ctx, personID)
	return args.Get(0).([]domain.PersonConnection), args.Error(1)
}

func (m *ConnectionService) GetConnectionsForFamilyTree(ctx context.Context, treeID string) ([]domain.Connection, error) {
	args := m.Called(ctx, treeID)
	return args.Get(0).([]domain.Connection), args.Error(1)
}

func (m *ConnectionService) UpdateConnection(ctx context.Context, userID, id string, input domain.UpdateConnectionInput) (*domain.Connection, error) {
	args := m.Called(ctx, userID, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Connection), args.Error(1)
}

func (m *ConnectionService) UpdateConnectionWithReciprocal(ctx context.Context, userID, id string, input domain.UpdateConnectionInput) (*domain.ConnectionResult, error) {
	args := m.Called(ctx, userID, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConnectionResult), args.Error(1)
}

func (m *ConnectionService) DeleteConnection(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *ConnectionService) DeleteConnectionWithReciprocal(ctx context.Context, userID, id string) (*domain.ConnectionResult, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConnectionResult), args.Error(1)
}

func (m *ConnectionService) ConnectionExists(ctx context.Context, fromID, toID string, relType domain.RelationshipType, scopeID *string) (bool, error) {
	args := m.Called(ctx, fromID, toID, relType, scopeID)
	return args.Bool(0), args.Error(1)
}

func (m *ConnectionService) Validate(input domain.CreateConnectionInput) []string {
	args := m.Called(input)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

func (m *ConnectionService) SetCacheInvalidator(cache connection.CacheInvalidator) {
	m.Called(cache)
}
