package middleware

import (
	"strings"

	"github.com/abroadwise/abroad-api/model"
	"github.com/abroadwise/abroad-api/utils/auth"
	"github.com/abroadwise/abroad-api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// Principal is the authenticated identity attached to the request context
// after token verification.
type Principal struct {
	ID    uint
	Email string
	Role  string
}

// AuthMiddleware establishes identity from a bearer token. Sessions are
// stateless: every request re-verifies from scratch, no store lookup.
type AuthMiddleware struct {
	jwtManager *auth.JWTManager
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
	}
}

// Required returns a handler that rejects requests without a valid token.
// A non-empty roles allow-list additionally requires membership; an empty
// list means any authenticated principal.
func (m *AuthMiddleware) Required(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get token from Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "No token provided")
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return response.Unauthorized(c, "Invalid authorization format")
		}

		claims, err := m.jwtManager.ValidateAccessToken(parts[1])
		if err != nil {
			// Surface the verification error, never swallow it
			return response.UnauthorizedWithDetails(c, "Invalid token", err.Error())
		}

		if len(roles) > 0 {
			allowed := false
			for _, role := range roles {
				if claims.Role == role {
					allowed = true
					break
				}
			}
			if !allowed {
				return response.Forbidden(c, "Forbidden")
			}
		}

		// Attach the principal for downstream handlers
		c.Locals("principal", Principal{
			ID:    claims.UserID,
			Email: claims.Email,
			Role:  claims.Role,
		})

		return c.Next()
	}
}

// RequireAdmin is shorthand for Required("admin")
func (m *AuthMiddleware) RequireAdmin() fiber.Handler {
	return m.Required(model.RoleAdmin)
}

// GetPrincipal extracts the authenticated principal from context
func GetPrincipal(c *fiber.Ctx) (Principal, bool) {
	principal, ok := c.Locals("principal").(Principal)
	return principal, ok
}

// IsAdmin is the handler-level authorization predicate, kept independent of
// the route gate so both layers can be tested on their own.
func IsAdmin(c *fiber.Ctx) bool {
	principal, ok := GetPrincipal(c)
	return ok && principal.Role == model.RoleAdmin
}
