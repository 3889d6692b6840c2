package handler

import (
	"family-connections/internal/pkg/i18n"
	"family-connections/internal/service"
)

type Handlers struct {
	Connection       *ConnectionHandler
	Graph            *GraphHandler
	RelationshipType *RelationshipTypeHandler
}

func NewHandlers(services *service.Services, catalog *i18n.Catalog) *Handlers {
	return &Handlers{
		Connection:       NewConnectionHandler(services.Connection, services.Audit),
		Graph:            NewGraphHandler(services.Graph, services.Export),
		RelationshipType: NewRelationshipTypeHandler(services.Registry, catalog),
	}
}
