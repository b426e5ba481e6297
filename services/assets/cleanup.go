package assets

import (
	"context"
	"log"

	"github.com/abroadwise/abroad-api/model"
	"gorm.io/gorm"
)

// Cleaner performs best-effort remote deletes. Asset mutations sit outside
// the store's transaction boundary, so a failed delete never aborts the
// surrounding operation; it is recorded as an orphan for the sweeper.
type Cleaner struct {
	db    *gorm.DB
	store Store
}

// NewCleaner creates a cleaner over the given store
func NewCleaner(db *gorm.DB, store Store) *Cleaner {
	return &Cleaner{db: db, store: store}
}

// BestEffortDelete tries to remove a remote asset. On failure the asset is
// recorded as an orphan and the error is logged, not returned.
func (c *Cleaner) BestEffortDelete(ctx context.Context, publicID, kind, reason string) {
	if publicID == "" || c.store == nil {
		return
	}

	if err := c.store.Delete(ctx, publicID); err != nil {
		log.Printf("asset delete failed (kind=%s public_id=%s): %v", kind, publicID, err)
		c.recordOrphan(publicID, kind, reason, err)
	}
}

func (c *Cleaner) recordOrphan(publicID, kind, reason string, cause error) {
	orphan := model.OrphanAsset{
		PublicID:  publicID,
		Kind:      kind,
		Reason:    reason,
		Attempts:  1,
		LastError: cause.Error(),
	}
	if err := c.db.Create(&orphan).Error; err != nil {
		log.Printf("failed to record orphan asset %s: %v", publicID, err)
	}
}

// SweepOrphans retries deletion of recorded orphans. Called periodically by
// the cron manager.
func (c *Cleaner) SweepOrphans(ctx context.Context, batchSize int) (int, error) {
	if c.store == nil {
		return 0, nil
	}

	var orphans []model.OrphanAsset
	err := c.db.Where("deleted_on IS NULL").
		Order("created_at ASC").
		Limit(batchSize).
		Find(&orphans).Error
	if err != nil {
		return 0, err
	}

	swept := 0
	for i := range orphans {
		orphan := &orphans[i]
		if err := c.store.Delete(ctx, orphan.PublicID); err != nil {
			orphan.Attempts++
			orphan.LastError = err.Error()
			c.db.Save(orphan)
			continue
		}

		now := c.db.NowFunc()
		orphan.DeletedOn = &now
		if err := c.db.Save(orphan).Error; err != nil {
			log.Printf("failed to mark orphan %s as deleted: %v", orphan.PublicID, err)
			continue
		}
		swept++
	}

	return swept, nil
}
