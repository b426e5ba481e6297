package cron

import (
	"context"
	"log"
	"time"

	"github.com/abroadwise/abroad-api/services/assets"
	"github.com/robfig/cron/v3"
)

// Manager schedules the background maintenance jobs
type Manager struct {
	cron    *cron.Cron
	cleaner *assets.Cleaner
}

// NewManager creates a cron manager
func NewManager(cleaner *assets.Cleaner) *Manager {
	return &Manager{
		cron:    cron.New(),
		cleaner: cleaner,
	}
}

// Start registers and starts the scheduled jobs
func (m *Manager) Start() error {
	// Retry orphaned remote assets every 15 minutes
	_, err := m.cron.AddFunc("*/15 * * * *", m.sweepOrphanAssets)
	if err != nil {
		return err
	}

	m.cron.Start()
	log.Println("Cron manager started")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (m *Manager) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron manager stopped")
}

func (m *Manager) sweepOrphanAssets() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	swept, err := m.cleaner.SweepOrphans(ctx, 50)
	if err != nil {
		log.Printf("orphan asset sweep failed: %v", err)
		return
	}
	if swept > 0 {
		log.Printf("orphan asset sweep removed %d assets", swept)
	}
}
