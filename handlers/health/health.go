package health

import (
	"github.com/abroadwise/abroad-api/database"
	"github.com/abroadwise/abroad-api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// HealthHandler reports process and database liveness
type HealthHandler struct {
	store *database.GORMStore
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store *database.GORMStore) *HealthHandler {
	return &HealthHandler{store: store}
}

// Ping handles GET /ping
func (h *HealthHandler) Ping(c *fiber.Ctx) error {
	dbStatus := "up"
	if err := h.store.HealthCheck(); err != nil {
		dbStatus = "down"
	}

	return response.Success(c, fiber.Map{
		"status":   "ok",
		"database": dbStatus,
	})
}
