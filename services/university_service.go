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

// CountryAll is the sentinel value that disables the country filter
const CountryAll = "all"

// MaxReviewImages caps the review image files accepted per request
const MaxReviewImages = 10

// UniversityFiles bundles the multipart assets a write may carry
type UniversityFiles struct {
	Logo         *multipart.FileHeader
	Cover        *multipart.FileHeader
	ReviewImages []*multipart.FileHeader
}

// UniversityService orchestrates university CRUD, the bespoke list filters
// and the logo/cover/review-image/brochure lifecycle.
type UniversityService struct {
	db      *gorm.DB
	store   assets.Store
	cleaner *assets.Cleaner
}

// NewUniversityService creates a university service
func NewUniversityService(db *gorm.DB, store assets.Store) *UniversityService {
	return &UniversityService{
		db:      db,
		store:   store,
		cleaner: assets.NewCleaner(db, store),
	}
}

// ListConfig declares what the university list endpoint lets the query
// string do. country, program and search get bespoke handling in List.
func (s *UniversityService) ListConfig() query.Config {
	return query.Config{
		DefaultLimit: 10,
		MaxLimit:     100,
		DefaultSort:  query.SortKey{Field: "created_at", Desc: true},
		FilterFields: map[string]bool{
			"established":  true,
			"medium":       true,
			"duration":     true,
			"gpa_required": true,
			"fees_usd":     true,
		},
		SortFields: map[string]bool{
			"name":        true,
			"established": true,
			"created_at":  true,
			"fees_usd":    true,
		},
		SearchFields: []string{"name", "display_name", "location"},
		Reserved:     []string{"country", "program"},
	}
}

// List executes the composed read. country filters by reference id, with the
// "all" sentinel skipping the filter entirely; a malformed id is a client
// error before any store call. program is a membership filter against the
// programs list. A well-formed id that matches nothing yields an empty page,
// not an error.
func (s *UniversityService) List(opts *query.Options, country, program string) ([]model.University, int64, error) {
	cfg := s.ListConfig()

	base := s.db.Model(&model.University{})

	if country != "" && country != CountryAll {
		countryID, err := ParseID(country)
		if err != nil {
			return nil, 0, &query.BadRequestError{Message: "Invalid country id"}
		}
		base = base.Where("country_id = ?", countryID)
	}

	if program != "" {
		base = base.Where("? = ANY(programs)", program)
	}

	var total int64
	if err := opts.ApplyFilters(base.Session(&gorm.Session{}), cfg).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var universities []model.University
	err := opts.Apply(base.Session(&gorm.Session{}), cfg).
		Preload("Country", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "code")
		}).
		Find(&universities).Error
	if err != nil {
		return nil, 0, err
	}

	return universities, total, nil
}

// Get fetches a university with its country populated to a small projection
// so the nested document is never leaked wholesale.
func (s *UniversityService) Get(id uint) (*model.University, error) {
	var university model.University
	err := s.db.
		Preload("Country", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "code")
		}).
		First(&university, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &university, nil
}

// CountryExists checks the reference at write time. The column only
// validates id format, so the service enforces existence itself.
func (s *UniversityService) CountryExists(id uint) (bool, error) {
	var count int64
	if err := s.db.Model(&model.Country{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create uploads any supplied assets first, merges their handles into the
// record, then persists. A failed insert schedules cleanup of everything
// just uploaded.
func (s *UniversityService) Create(ctx context.Context, university *model.University, files UniversityFiles) error {
	exists, err := s.CountryExists(university.CountryID)
	if err != nil {
		return err
	}
	if !exists {
		return &query.BadRequestError{Message: "Country does not exist"}
	}

	uploaded, err := s.attachAssets(ctx, university, files)
	if err != nil {
		s.cleanupUploads(ctx, uploaded, "university create aborted")
		return err
	}

	if err := s.db.Create(university).Error; err != nil {
		s.cleanupUploads(ctx, uploaded, "university create failed")
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return err
	}

	return nil
}

// Update fetches the existing record to discover prior asset handles,
// deletes any replaced assets best-effort, uploads replacements, applies
// the merged changes and persists.
func (s *UniversityService) Update(ctx context.Context, id uint, apply func(*model.University), files UniversityFiles) (*model.University, error) {
	university, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	apply(university)

	if university.CountryID != 0 {
		exists, err := s.CountryExists(university.CountryID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, &query.BadRequestError{Message: "Country does not exist"}
		}
	}

	if files.Logo != nil && university.LogoPublicID != "" {
		s.cleaner.BestEffortDelete(ctx, university.LogoPublicID, "logo", "logo replaced")
	}
	if files.Cover != nil && university.CoverImagePublicID != "" {
		s.cleaner.BestEffortDelete(ctx, university.CoverImagePublicID, "cover", "cover replaced")
	}

	uploaded, err := s.attachAssets(ctx, university, files)
	if err != nil {
		s.cleanupUploads(ctx, uploaded, "university update aborted")
		return nil, err
	}

	if err := s.db.Save(university).Error; err != nil {
		s.cleanupUploads(ctx, uploaded, "university update failed")
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	return university, nil
}

// Delete removes every associated remote asset independently, so one host
// failure never aborts the others or the document deletion.
func (s *UniversityService) Delete(ctx context.Context, id uint) error {
	university, err := s.Get(id)
	if err != nil {
		return err
	}

	s.cleaner.BestEffortDelete(ctx, university.LogoPublicID, "logo", "university deleted")
	s.cleaner.BestEffortDelete(ctx, university.CoverImagePublicID, "cover", "university deleted")
	s.cleaner.BestEffortDelete(ctx, university.BrochurePublicID, "brochure", "university deleted")
	for _, review := range university.Reviews {
		s.cleaner.BestEffortDelete(ctx, review.ImagePublicID, "review", "university deleted")
	}

	return s.db.Delete(university).Error
}

// AttachBrochure stores a validated brochure PDF, replacing any prior one
func (s *UniversityService) AttachBrochure(ctx context.Context, id uint, file *multipart.FileHeader) (*model.University, error) {
	university, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if university.BrochurePublicID != "" {
		s.cleaner.BestEffortDelete(ctx, university.BrochurePublicID, "brochure", "brochure replaced")
	}

	asset, err := s.upload(ctx, "brochures", file)
	if err != nil {
		return nil, err
	}

	university.BrochureURL = asset.URL
	university.BrochurePublicID = asset.PublicID

	if err := s.db.Save(university).Error; err != nil {
		s.cleaner.BestEffortDelete(ctx, asset.PublicID, "brochure", "brochure attach failed")
		return nil, err
	}

	return university, nil
}

// attachAssets uploads the supplied files and merges their handles into the
// record. Review images fill the reviews' image slots in listed order.
func (s *UniversityService) attachAssets(ctx context.Context, university *model.University, files UniversityFiles) ([]model.Asset, error) {
	var uploaded []model.Asset

	if files.Logo != nil {
		asset, err := s.upload(ctx, "logos", files.Logo)
		if err != nil {
			return uploaded, err
		}
		uploaded = append(uploaded, asset)
		university.Logo = asset.URL
		university.LogoPublicID = asset.PublicID
	}

	if files.Cover != nil {
		asset, err := s.upload(ctx, "covers", files.Cover)
		if err != nil {
			return uploaded, err
		}
		uploaded = append(uploaded, asset)
		university.CoverImage = asset.URL
		university.CoverImagePublicID = asset.PublicID
	}

	for i, file := range files.ReviewImages {
		if i >= len(university.Reviews) {
			break
		}
		asset, err := s.upload(ctx, "reviews", file)
		if err != nil {
			return uploaded, err
		}
		uploaded = append(uploaded, asset)
		university.Reviews[i].Image = asset.URL
		university.Reviews[i].ImagePublicID = asset.PublicID
	}

	return uploaded, nil
}

func (s *UniversityService) cleanupUploads(ctx context.Context, uploaded []model.Asset, reason string) {
	for _, asset := range uploaded {
		s.cleaner.BestEffortDelete(ctx, asset.PublicID, "upload", reason)
	}
}

func (s *UniversityService) upload(ctx context.Context, prefix string, file *multipart.FileHeader) (model.Asset, error) {
	if s.store == nil {
		return model.Asset{}, errors.New("asset host is not configured")
	}

	f, err := file.Open()
	if err != nil {
		return model.Asset{}, err
	}
	defer f.Close()

	key := assets.GenerateKey(prefix, file.Filename)
	return s.store.Upload(ctx, key, f, assets.GetContentType(file.Filename))
}
