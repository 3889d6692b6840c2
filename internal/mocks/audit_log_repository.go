package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"family-connections/internal/domain"
)

type AuditLogRepository struct {
	mock.Mock
}

func (m *AuditLogRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditLogRepository) ListByEntity(ctx context.Context, entityType, entityID string, limit int) ([]domain.AuditLog, error) {
	args := m.Called(ctx, entityType, entityID, limit)
	return args.Get(0).([]domain.AuditLog), args.Error(1)
}
