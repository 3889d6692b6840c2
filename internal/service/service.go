package service

import (
	"github.com/redis/go-redis/v9"

	"family-connections/internal/config"
	"family-connections/internal/domain"
	"family-connections/internal/pkg/logger"
	"family-connections/internal/repository"
	"family-connections/internal/service/audit"
	"family-connections/internal/service/connection"
	"family-connections/internal/service/export"
	"family-connections/internal/service/graph"
	"family-connections/internal/service/union"
)

type Services struct {
	Registry   *domain.Registry
	Connection connection.Service
	Graph      graph.Service
	Audit      audit.Service
	Export     export.Service
}

// NewServices wires every service around one shared registry. A nil redis
// client disables the tree view cache; a nil store disables exports.
func NewServices(repos *repository.Repositories, redis *redis.Client, store export.ObjectStore, cfg *config.Config, log *logger.Logger) *Services {
	registry := domain.DefaultRegistry()
	utils := connection.NewUtils(registry)

	connectionService := connection.NewService(utils, repos.Connection, repos.Person, repos.AuditLog, log.With("service", "connection"))

	unions := union.NewProcessor(union.Config{
		MinSharedChildren:    cfg.UnionMinSharedChildren,
		IncludeSingleParents: cfg.UnionIncludeSingleParents,
		GroupSiblings:        cfg.UnionGroupSiblings,
	})
	graphService := graph.NewService(connectionService, repos.Person, utils, unions, redis, cfg.GraphCacheTTL, log.With("service", "graph"))
	connectionService.SetCacheInvalidator(graphService)

	var exportService export.Service
	if store != nil {
		exportService = export.NewService(graphService, store, cfg.MinIOBucket)
	}

	return &Services{
		Registry:   registry,
		Connection: connectionService,
		Graph:      graphService,
		Audit:      audit.NewService(repos.AuditLog),
		Export:     exportService,
	}
}
