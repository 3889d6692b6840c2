package audit

import (
	"context"

	"family-connections/internal/domain"
	"family-connections/internal/repository"
)

const defaultHistoryLimit = 20

type Service interface {
	GetConnectionHistory(ctx context.Context, connectionID string, limit int) ([]domain.AuditLog, error)
}

type service struct {
	auditRepo repository.AuditLogRepository
}

func NewService(auditRepo repository.AuditLogRepository) Service {
	return &service{
		auditRepo: auditRepo,
	}
}

// GetConnectionHistory returns the newest audit entries for one connection.
func (s *service) GetConnectionHistory(ctx context.Context, connectionID string, limit int) ([]domain.AuditLog, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.auditRepo.ListByEntity(ctx, domain.EntityConnection, connectionID, limit)
}
