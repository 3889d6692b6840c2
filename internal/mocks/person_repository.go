package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"family-connections/internal/domain"
)

type PersonRepository struct {
	mock.Mock
}

func (m *PersonRepository) GetByID(ctx context.Context, id string) (*domain.Person, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Person), args.Error(1)
}

func (m *PersonRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Person, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]domain.Person), args.Error(1)
}

func (m *PersonRepository) ListByFamilyTree(ctx context.Context, treeID string) ([]domain.Person, error) {
	args := m.Called(ctx, treeID)
	return args.Get(0).([]domain.Person), args.Error(1)
}
