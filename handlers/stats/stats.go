package stats

import (
	"log"

	"github.com/abroadwise/abroad-api/model"
	"github.com/abroadwise/abroad-api/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// StatsHandler serves catalog counters to trusted services. Routes using it
// sit behind the X-API-Key gate, not user authentication.
type StatsHandler struct {
	db *gorm.DB
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(db *gorm.DB) *StatsHandler {
	return &StatsHandler{db: db}
}

// GetCatalogStats handles GET /internal/stats
func (h *StatsHandler) GetCatalogStats(c *fiber.Ctx) error {
	var countries, universities, users, pendingOrphans int64

	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&model.Country{}, &countries},
		{&model.University{}, &universities},
		{&model.User{}, &users},
	}
	for _, count := range counts {
		if err := h.db.Model(count.model).Count(count.dest).Error; err != nil {
			log.Println("catalog stats failed:", err)
			return response.InternalServerError(c, "Failed to compute stats")
		}
	}

	if err := h.db.Model(&model.OrphanAsset{}).
		Where("deleted_on IS NULL").
		Count(&pendingOrphans).Error; err != nil {
		log.Println("catalog stats failed:", err)
		return response.InternalServerError(c, "Failed to compute stats")
	}

	return response.Success(c, fiber.Map{
		"countries":             countries,
		"universities":          universities,
		"users":                 users,
		"pending_orphan_assets": pendingOrphans,
	})
}
