package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apiKeyApp(secret string) *fiber.App {
	m := NewAPIKeyMiddleware(secret)
	app := fiber.New()
	app.Get("/internal", m.Require(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestAPIKeyMissing(t *testing.T) {
	app := apiKeyApp("s3cret")

	resp, err := app.Test(httptest.NewRequest("GET", "/internal", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAPIKeyMismatch(t *testing.T) {
	app := apiKeyApp("s3cret")

	req := httptest.NewRequest("GET", "/internal", nil)
	req.Header.Set("X-API-Key", "wrong")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAPIKeyMatch(t *testing.T) {
	app := apiKeyApp("s3cret")

	req := httptest.NewRequest("GET", "/internal", nil)
	req.Header.Set("X-API-Key", "s3cret")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAPIKeyUnconfiguredGateStaysClosed(t *testing.T) {
	app := apiKeyApp("")

	// Even a guessed empty key never opens an unconfigured gate
	req := httptest.NewRequest("GET", "/internal", nil)
	req.Header.Set("X-API-Key", "")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
