package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"family-connections/internal/domain"
	"family-connections/internal/middleware"
	"family-connections/internal/service/export"
	"family-connections/internal/service/graph"
	"family-connections/internal/service/hierarchy"
)

type GraphHandler struct {
	graphService  graph.Service
	exportService export.Service
}

func NewGraphHandler(graphService graph.Service, exportService export.Service) *GraphHandler {
	return &GraphHandler{
		graphService:  graphService,
		exportService: exportService,
	}
}

func (h *GraphHandler) GetTreeView(c *fiber.Ctx) error {
	view, err := h.graphService.GetTreeView(c.Context(), c.Params("treeId"))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(view)
}

func (h *GraphHandler) GetPersonRelations(c *fiber.Ctx) error {
	rel, err := h.graphService.GetPersonRelations(c.Context(), c.Params("treeId"), c.Params("personId"))
	if err != nil {
		return personError(err)
	}

	return c.Status(fiber.StatusOK).JSON(rel)
}

func (h *GraphHandler) GetAncestors(c *fiber.Ctx) error {
	maxDepth := c.QueryInt("max_depth", hierarchy.DefaultMaxDepth)

	ancestors, err := h.graphService.GetAncestors(c.Context(), c.Params("treeId"), c.Params("personId"), maxDepth)
	if err != nil {
		return personError(err)
	}

	return c.Status(fiber.StatusOK).JSON(ancestors)
}

func (h *GraphHandler) GetDescendants(c *fiber.Ctx) error {
	maxDepth := c.QueryInt("max_depth", hierarchy.DefaultMaxDepth)

	descendants, err := h.graphService.GetDescendants(c.Context(), c.Params("treeId"), c.Params("personId"), maxDepth)
	if err != nil {
		return personError(err)
	}

	return c.Status(fiber.StatusOK).JSON(descendants)
}

func (h *GraphHandler) Export(c *fiber.Ctx) error {
	if h.exportService == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Export storage is not configured")
	}

	objectKey, err := h.exportService.ExportTree(c.Context(), c.Params("treeId"))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"object_key": objectKey})
}

func personError(err error) error {
	if errors.Is(err, domain.ErrPersonNotFound) {
		return middleware.NotFound("Person not found in this tree")
	}
	return err
}
