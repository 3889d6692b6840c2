package handler

import (
	"github.com/gofiber/fiber/v2"

	"family-connections/internal/domain"
	"family-connections/internal/pkg/i18n"
)

type RelationshipTypeHandler struct {
	registry *domain.Registry
	catalog  *i18n.Catalog
}

func NewRelationshipTypeHandler(registry *domain.Registry, catalog *i18n.Catalog) *RelationshipTypeHandler {
	return &RelationshipTypeHandler{registry: registry, catalog: catalog}
}

func (h *RelationshipTypeHandler) List(c *fiber.Ctx) error {
	locale := c.Query("locale", i18n.DefaultLocale)
	return c.Status(fiber.StatusOK).JSON(h.catalog.RelationshipTypes(locale, h.registry))
}
