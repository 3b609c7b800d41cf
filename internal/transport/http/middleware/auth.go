package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/lighthouse/backend/internal/config"
	"github.com/lighthouse/backend/internal/transport/http/dto"
)

const codeUnauthorized = 401

// AdminAuth requires the configured admin key in the Token, X-Admin-Token
// or Authorization: Bearer header. An empty key disables the check.
func AdminAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		apiKey := cfg.Auth.AdminAPIKey
		if apiKey == "" {
			return c.Next()
		}

		if subtle.ConstantTimeCompare([]byte(requestToken(c)), []byte(apiKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    codeUnauthorized,
				Message: "unauthorized",
			})
		}

		return c.Next()
	}
}

func requestToken(c *fiber.Ctx) string {
	if token := c.Get("Token"); token != "" {
		return token
	}
	if token := c.Get("X-Admin-Token"); token != "" {
		return token
	}
	const prefix = "Bearer "
	auth := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(auth, prefix) {
		return auth[len(prefix):]
	}
	return ""
}
