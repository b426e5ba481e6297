package services

import (
	"context"
	"errors"
	"mime/multipart"

	"github.com/abroadwise/abroad-api/model"
	"github.com/abroadwise/abroad-api/services/assets"
	"github.com/abroadwise/abroad-api/utils/query"
	"gorm.io/gorm"
)

// CountryService orchestrates country CRUD: validation hand-off, the query
// builder, persistence and the flag image lifecycle.
type CountryService struct {
	db      *gorm.DB
	store   assets.Store
	cleaner *assets.Cleaner
}

// NewCountryService creates a country service. store may be nil when the
// asset host is not configured; image operations are then skipped.
func NewCountryService(db *gorm.DB, store assets.Store) *CountryService {
	return &CountryService{
		db:      db,
		store:   store,
		cleaner: assets.NewCleaner(db, store),
	}
}

// ListConfig declares what the country list endpoint lets the query string do
func (s *CountryService) ListConfig() query.Config {
	return query.Config{
		DefaultLimit: 100,
		MaxLimit:     1000,
		DefaultSort:  query.SortKey{Field: "created_at", Desc: true},
		FilterFields: map[string]bool{
			"name":      true,
			"code":      true,
			"currency":  true,
			"continent": true,
		},
		SortFields: map[string]bool{
			"name":       true,
			"code":       true,
			"continent":  true,
			"created_at": true,
		},
		SelectFields: map[string]bool{
			"id":          true,
			"name":        true,
			"code":        true,
			"currency":    true,
			"continent":   true,
			"description": true,
			"flag_image":  true,
			"created_at":  true,
			"updated_at":  true,
		},
		SearchFields: []string{"name", "code", "continent"},
	}
}

// List executes a validated read operation and returns the page plus the
// total filtered count.
func (s *CountryService) List(opts *query.Options) ([]model.Country, int64, error) {
	cfg := s.ListConfig()

	var total int64
	if err := opts.ApplyFilters(s.db.Model(&model.Country{}), cfg).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var countries []model.Country
	if err := opts.Apply(s.db.Model(&model.Country{}), cfg).Find(&countries).Error; err != nil {
		return nil, 0, err
	}

	return countries, total, nil
}

// Get fetches a country by id
func (s *CountryService) Get(id uint) (*model.Country, error) {
	var country model.Country
	if err := s.db.First(&country, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &country, nil
}

// Create persists a new country. When a flag file accompanies the request it
// is uploaded first; if the insert then fails, the fresh upload is scheduled
// for cleanup rather than left dangling.
func (s *CountryService) Create(ctx context.Context, country *model.Country, flag *multipart.FileHeader) error {
	if flag != nil {
		asset, err := s.uploadFlag(ctx, flag)
		if err != nil {
			return err
		}
		country.FlagImage = &asset
	}

	if err := s.db.Create(country).Error; err != nil {
		if country.FlagImage != nil {
			s.cleaner.BestEffortDelete(ctx, country.FlagImage.PublicID, "flag", "country create failed")
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return err
	}

	return nil
}

// Update applies the merged changes. A replacement flag deletes the prior
// remote asset best-effort; a host failure never blocks the update.
func (s *CountryService) Update(ctx context.Context, id uint, apply func(*model.Country), flag *multipart.FileHeader) (*model.Country, error) {
	country, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if flag != nil {
		if country.FlagImage != nil {
			s.cleaner.BestEffortDelete(ctx, country.FlagImage.PublicID, "flag", "flag replaced")
		}
		asset, err := s.uploadFlag(ctx, flag)
		if err != nil {
			return nil, err
		}
		country.FlagImage = &asset
	}

	apply(country)

	if err := s.db.Save(country).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	return country, nil
}

// Delete verifies existence, removes the remote flag asset best-effort,
// then deletes the document.
func (s *CountryService) Delete(ctx context.Context, id uint) error {
	country, err := s.Get(id)
	if err != nil {
		return err
	}

	if country.FlagImage != nil {
		s.cleaner.BestEffortDelete(ctx, country.FlagImage.PublicID, "flag", "country deleted")
	}

	return s.db.Delete(country).Error
}

func (s *CountryService) uploadFlag(ctx context.Context, flag *multipart.FileHeader) (model.Asset, error) {
	if s.store == nil {
		return model.Asset{}, errors.New("asset host is not configured")
	}

	file, err := flag.Open()
	if err != nil {
		return model.Asset{}, err
	}
	defer file.Close()

	key := assets.GenerateKey("flags", flag.Filename)
	return s.store.Upload(ctx, key, file, assets.GetContentType(flag.Filename))
}
