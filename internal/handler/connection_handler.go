package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"family-connections/internal/domain"
	"family-connections/internal/middleware"
	"family-connections/internal/service/audit"
	"family-connections/internal/service/connection"
)

type ConnectionHandler struct {
	connService  connection.Service
	auditService audit.Service
}

func NewConnectionHandler(connService connection.Service, auditService audit.Service) *ConnectionHandler {
	return &ConnectionHandler{
		connService:  connService,
		auditService: auditService,
	}
}

func (h *ConnectionHandler) Create(c *fiber.Ctx) error {
	var input domain.CreateConnectionInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	result, err := h.connService.CreateConnectionWithReciprocal(c.Context(), middleware.GetCurrentUserID(c), input)
	if err != nil {
		return connectionError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *ConnectionHandler) Get(c *fiber.Ctx) error {
	conn, err := h.connService.GetConnection(c.Context(), c.Params("connectionId"))
	if err != nil {
		return connectionError(err)
	}

	return c.Status(fiber.StatusOK).JSON(conn)
}

func (h *ConnectionHandler) Update(c *fiber.Ctx) error {
	var input domain.UpdateConnectionInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	result, err := h.connService.UpdateConnectionWithReciprocal(c.Context(), middleware.GetCurrentUserID(c), c.Params("connectionId"), input)
	if err != nil {
		return connectionError(err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *ConnectionHandler) Delete(c *fiber.Ctx) error {
	result, err := h.connService.DeleteConnectionWithReciprocal(c.Context(), middleware.GetCurrentUserID(c), c.Params("connectionId"))
	if err != nil {
		return connectionError(err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *ConnectionHandler) Exists(c *fiber.Ctx) error {
	from, to, relType := c.Query("from"), c.Query("to"), c.Query("type")
	if from == "" || to == "" || relType == "" {
		return middleware.BadRequest("from, to and type are required")
	}

	var scopeID *string
	if treeID := c.Query("tree_id"); treeID != "" {
		scopeID = &treeID
	}

	exists, err := h.connService.ConnectionExists(c.Context(), from, to, domain.RelationshipType(relType), scopeID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"exists": exists})
}

func (h *ConnectionHandler) Validate(c *fiber.Ctx) error {
	var input domain.CreateConnectionInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	messages := h.connService.Validate(input)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"valid":  len(messages) == 0,
		"errors": messages,
	})
}

func (h *ConnectionHandler) History(c *fiber.Ctx) error {
	logs, err := h.auditService.GetConnectionHistory(c.Context(), c.Params("connectionId"), c.QueryInt("limit", 20))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(logs)
}

func (h *ConnectionHandler) ListForPerson(c *fiber.Ctx) error {
	conns, err := h.connService.GetConnectionsForPerson(c.Context(), c.Params("personId"))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(conns)
}

func (h *ConnectionHandler) ListForTree(c *fiber.Ctx) error {
	conns, err := h.connService.GetConnectionsForFamilyTree(c.Context(), c.Params("treeId"))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(conns)
}

func connectionError(err error) error {
	var verr *connection.ValidationError
	switch {
	case errors.As(err, &verr):
		return middleware.Validation(verr.Messages)
	case errors.Is(err, connection.ErrDuplicateConnection):
		return middleware.Conflict(err.Error())
	case errors.Is(err, connection.ErrConnectionNotFound):
		return middleware.NotFound("Connection not found")
	}
	return err
}
