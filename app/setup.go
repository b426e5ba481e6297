package app

import (
	"fmt"
	"log"
	"os"

	"github.com/abroadwise/abroad-api/api"
	"github.com/abroadwise/abroad-api/config"
	"github.com/abroadwise/abroad-api/database"
	"github.com/abroadwise/abroad-api/router"
	"github.com/abroadwise/abroad-api/services/assets"
	"github.com/abroadwise/abroad-api/services/cron"
)

// SetupAndRunServer builds the full dependency graph and blocks serving
// requests until the listener fails.
func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM(cfg)
	if err != nil {
		print("Check whether the Postgres is running or not\n")
		return err
	}

	if err := store.Init(); err != nil {
		print("Failed to initialize database tables\n")
		return err
	}

	// Asset host is optional; without credentials the catalog serves
	// reads and metadata-only writes
	var assetStore assets.Store
	if cfg.SpacesConfigured() {
		spaces, err := assets.NewSpacesClient(cfg)
		if err != nil {
			log.Printf("Warning: Failed to initialize asset host: %v. Uploads will be disabled.", err)
		} else {
			assetStore = spaces
		}
	} else {
		log.Println("Asset host credentials not set. Uploads will be disabled.")
	}

	// Cron Manager retries failed remote asset deletions in the background
	var cronManager *cron.Manager
	if os.Getenv("CRON_ENABLED") != "false" && assetStore != nil { // Default to enabled
		cronManager = cron.NewManager(assets.NewCleaner(store.DB(), assetStore))
		if err := cronManager.Start(); err != nil {
			log.Printf("Warning: Failed to start cron jobs: %v", err)
		}
	}

	// Defer Closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		store.Close()
	}()

	// Init API
	server := api.NewAPIServer(fmt.Sprintf(":%d", cfg.Port))
	app := server.GetEngine()

	// Setup Routes
	router.SetupRoutes(app, store, assetStore, cfg)

	// Get the PORT & Start the Server
	return server.Run()
}
