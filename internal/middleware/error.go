package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"family-connections/internal/pkg/logger"
)

type ErrorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
	TraceID string   `json:"trace_id,omitempty"`
}

// ValidationFailure carries one message per failing rule so clients can
// highlight every field at once.
type ValidationFailure struct {
	Messages []string
}

func (e *ValidationFailure) Error() string {
	return strings.Join(e.Messages, "; ")
}

func NewErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"
		errorCode := "INTERNAL_ERROR"
		var details []string

		var vf *ValidationFailure
		var fe *fiber.Error
		switch {
		case errors.As(err, &vf):
			code = fiber.StatusUnprocessableEntity
			message = "Validation failed"
			details = vf.Messages
		case errors.As(err, &fe):
			code = fe.Code
			message = fe.Message
		}

		switch code {
		case fiber.StatusBadRequest:
			errorCode = "BAD_REQUEST"
		case fiber.StatusUnauthorized:
			errorCode = "UNAUTHORIZED"
		case fiber.StatusForbidden:
			errorCode = "FORBIDDEN"
		case fiber.StatusNotFound:
			errorCode = "NOT_FOUND"
		case fiber.StatusConflict:
			errorCode = "CONFLICT"
		case fiber.StatusUnprocessableEntity:
			errorCode = "VALIDATION_ERROR"
		}

		traceID := uuid.New().String()[:8]
		if code >= fiber.StatusInternalServerError {
			log.Error("request failed",
				"trace_id", traceID,
				"method", c.Method(),
				"path", c.Path(),
				"error", err,
			)
		}

		return c.Status(code).JSON(ErrorResponse{
			Code:    errorCode,
			Message: message,
			Errors:  details,
			TraceID: traceID,
		})
	}
}

func Validation(messages []string) error {
	return &ValidationFailure{Messages: messages}
}

func BadRequest(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusBadRequest, message)
}

func Unauthorized(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusUnauthorized, message)
}

func NotFound(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusNotFound, message)
}

func Conflict(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusConflict, message)
}
