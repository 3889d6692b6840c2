package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"family-connections/internal/pkg/logger"
)

const secret = "test-secret"

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: NewErrorHandler(logger.Nop())})
	app.Get("/me", AuthRequired(secret), func(c *fiber.Ctx) error {
		return c.SendString(GetCurrentUserID(c))
	})
	app.Get("/invalid", func(c *fiber.Ctx) error {
		return Validation([]string{"From person is required", "To person is required"})
	})
	app.Get("/conflict", func(c *fiber.Ctx) error {
		return Conflict("this connection already exists")
	})
	return app
}

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func decode(t *testing.T, app *fiber.App, path, bearer string) (int, ErrorResponse, string) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body ErrorResponse
	_ = json.Unmarshal(raw, &body)
	return resp.StatusCode, body, string(raw)
}

func TestAuthRequired(t *testing.T) {
	app := newApp()

	t.Run("Valid token exposes the subject", func(t *testing.T) {
		token := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{
			"sub": "user-42",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		status, _, raw := decode(t, app, "/me", token)
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "user-42", raw)
	})

	t.Run("Missing header", func(t *testing.T) {
		status, body, _ := decode(t, app, "/me", "")
		assert.Equal(t, fiber.StatusUnauthorized, status)
		assert.Equal(t, "UNAUTHORIZED", body.Code)
	})

	t.Run("Expired token", func(t *testing.T) {
		token := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{
			"sub": "user-42",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})
		status, _, _ := decode(t, app, "/me", token)
		assert.Equal(t, fiber.StatusUnauthorized, status)
	})

	t.Run("Wrong key", func(t *testing.T) {
		token := sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "user-42"})
		status, _, _ := decode(t, app, "/me", token)
		assert.Equal(t, fiber.StatusUnauthorized, status)
	})

	t.Run("No subject", func(t *testing.T) {
		token := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"name": "x"})
		status, body, _ := decode(t, app, "/me", token)
		assert.Equal(t, fiber.StatusUnauthorized, status)
		assert.Equal(t, "Token has no subject", body.Message)
	})
}

func TestErrorHandler(t *testing.T) {
	app := newApp()

	status, body, _ := decode(t, app, "/invalid", "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	assert.Equal(t, []string{"From person is required", "To person is required"}, body.Errors)
	assert.Len(t, body.TraceID, 8)

	status, body, _ = decode(t, app, "/conflict", "")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "CONFLICT", body.Code)
	assert.Equal(t, "this connection already exists", body.Message)
}
