package router

import (
	"log"
	"time"

	"github.com/abroadwise/abroad-api/config"
	"github.com/abroadwise/abroad-api/database"
	auth_handlers "github.com/abroadwise/abroad-api/handlers/auth"
	country_handlers "github.com/abroadwise/abroad-api/handlers/country"
	health_handlers "github.com/abroadwise/abroad-api/handlers/health"
	stats_handlers "github.com/abroadwise/abroad-api/handlers/stats"
	university_handlers "github.com/abroadwise/abroad-api/handlers/university"
	"github.com/abroadwise/abroad-api/services"
	"github.com/abroadwise/abroad-api/services/assets"
	"github.com/abroadwise/abroad-api/utils/auth"
	"github.com/abroadwise/abroad-api/utils/cache"
	"github.com/abroadwise/abroad-api/utils/middleware"
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes wires middleware, handlers and route groups. store may carry a
// nil asset host; writes that need uploads fail per-request, reads still work.
func SetupRoutes(app *fiber.App, store *database.GORMStore, assetStore assets.Store, cfg *config.Config) {
	db := store.DB()

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret:        cfg.JWTSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		Expiry:        24 * time.Hour,     // Access token expires in 24 hours
		RefreshExpiry: 7 * 24 * time.Hour, // Refresh token expires in 7 days
		Issuer:        cfg.JWTIssuer,
	})

	// Redis-backed brute force protection, disabled when Redis is unreachable
	var bruteForceProtection *middleware.BruteForceProtection
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
		} else {
			bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
		}
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager)
	apiKeyMiddleware := middleware.NewAPIKeyMiddleware(cfg.ServiceAPIKey)

	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)

	countryService := services.NewCountryService(db, assetStore)
	countryHandler := country_handlers.NewCountryHandler(countryService)

	universityService := services.NewUniversityService(db, assetStore)
	universityHandler := university_handlers.NewUniversityHandler(universityService)

	healthHandler := health_handlers.NewHealthHandler(store)
	statsHandler := stats_handlers.NewStatsHandler(db)

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    cfg.AllowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", healthHandler.Ping)

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Countries routes
	countries := api.Group("/countries")
	countries.Get("/", countryHandler.ListCountries)                                      // Public: List countries
	countries.Get("/:id", countryHandler.GetCountry)                                      // Public: Get country by ID
	countries.Post("/", authMiddleware.RequireAdmin(), countryHandler.CreateCountry)      // Admin only: Create country
	countries.Patch("/:id", authMiddleware.RequireAdmin(), countryHandler.UpdateCountry)  // Admin only: Partial update
	countries.Delete("/:id", authMiddleware.RequireAdmin(), countryHandler.DeleteCountry) // Admin only: Delete country

	// Universities routes
	universities := api.Group("/universities")
	universities.Get("/", universityHandler.ValidateListQuery, universityHandler.ListUniversities) // Public: List with filters
	universities.Get("/:id", universityHandler.GetUniversity)                                      // Public: Get university by ID
	universities.Post("/", authMiddleware.RequireAdmin(), universityHandler.CreateUniversity)      // Admin only: Create university
	universities.Put("/:id", authMiddleware.RequireAdmin(), universityHandler.UpdateUniversity)    // Admin only: Update university
	universities.Delete("/:id", authMiddleware.RequireAdmin(), universityHandler.DeleteUniversity) // Admin only: Delete university
	universities.Post("/:id/brochure", authMiddleware.RequireAdmin(), universityHandler.UploadBrochure)

	// Service-to-service routes, gated by the static key instead of a user token
	internal := app.Group("/internal", apiKeyMiddleware.Require())
	internal.Get("/stats", statsHandler.GetCatalogStats)
}
