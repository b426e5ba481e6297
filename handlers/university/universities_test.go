package university

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/abroadwise/abroad-api/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// queryApp mounts only the validation middleware; the terminal handler
// reports what was parsed so the store is never needed.
func queryApp() *fiber.App {
	handler := NewUniversityHandler(services.NewUniversityService(nil, nil))

	app := fiber.New()
	app.Get("/universities", handler.ValidateListQuery, func(c *fiber.Ctx) error {
		lo := c.Locals(listOptionsKey).(*listOptions)
		return c.JSON(fiber.Map{
			"page":    lo.opts.Page,
			"limit":   lo.opts.Limit,
			"country": lo.country,
			"program": lo.program,
		})
	})
	return app
}

func TestValidateListQueryDefaults(t *testing.T) {
	app := queryApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/universities", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, float64(1), body["page"])
	assert.Equal(t, float64(10), body["limit"])
}

func TestValidateListQueryPassesReservedKeys(t *testing.T) {
	app := queryApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/universities?country=12&program=MBBS", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "12", body["country"])
	assert.Equal(t, "MBBS", body["program"])
}

func TestValidateListQueryRejectsExcessiveLimit(t *testing.T) {
	app := queryApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/universities?limit=5000", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body map[string]interface{}
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &body))
	errDetail := body["error"].(map[string]interface{})
	assert.Equal(t, "Limit cannot exceed 100", errDetail["message"])
}

func TestValidateListQueryRejectsUnknownFilter(t *testing.T) {
	app := queryApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/universities?password_hash=x", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestValidateListQueryRejectsZeroPage(t *testing.T) {
	app := queryApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/universities?page=0", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body map[string]interface{}
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &body))
	errDetail := body["error"].(map[string]interface{})
	assert.Equal(t, "Page number must be greater than 0", errDetail["message"])
}
