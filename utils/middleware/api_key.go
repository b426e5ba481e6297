package middleware

import (
	"crypto/subtle"

	"github.com/abroadwise/abroad-api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// APIKeyMiddleware gates service-to-service calls behind a static shared
// secret. It is orthogonal to user authentication and may be composed in
// front of it.
type APIKeyMiddleware struct {
	secret string
}

// NewAPIKeyMiddleware creates a new API key middleware
func NewAPIKeyMiddleware(secret string) *APIKeyMiddleware {
	return &APIKeyMiddleware{secret: secret}
}

// Require validates the X-API-Key header: absent → 401, mismatched → 403.
func (m *APIKeyMiddleware) Require() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m.secret == "" {
			// Gate not configured on this deployment
			return response.Forbidden(c, "Service access is not enabled")
		}

		key := c.Get("X-API-Key")
		if key == "" {
			return response.Unauthorized(c, "API key required")
		}

		if subtle.ConstantTimeCompare([]byte(key), []byte(m.secret)) != 1 {
			return response.Forbidden(c, "Invalid API key")
		}

		return c.Next()
	}
}
