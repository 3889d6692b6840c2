package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const UserIDContextKey = "user_id"

// AuthRequired accepts HS256 bearer tokens signed with secret and stores the
// subject claim as the current user id.
func AuthRequired(secret string) fiber.Handler {
	key := []byte(secret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return Unauthorized("Missing authorization header")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return Unauthorized("Invalid authorization header format")
		}

		token, err := parser.Parse(parts[1], func(*jwt.Token) (interface{}, error) {
			return key, nil
		})
		if err != nil || !token.Valid {
			return Unauthorized("Invalid or expired token")
		}

		sub, err := token.Claims.GetSubject()
		if err != nil || sub == "" {
			return Unauthorized("Token has no subject")
		}

		c.Locals(UserIDContextKey, sub)
		return c.Next()
	}
}

func GetCurrentUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals(UserIDContextKey).(string)
	return userID
}
