package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"github.com/abroadwise/abroad-api/config"
	"github.com/abroadwise/abroad-api/database"
	"github.com/abroadwise/abroad-api/model"
	"github.com/abroadwise/abroad-api/utils/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// failingStore always fails deletes, simulating an unreachable asset host
type failingStore struct{}

func (failingStore) Upload(ctx context.Context, key string, data io.Reader, contentType string) (model.Asset, error) {
	return model.Asset{}, errors.New("host unavailable")
}

func (failingStore) Delete(ctx context.Context, publicID string) error {
	return errors.New("host unavailable")
}

// integrationDB connects to the database configured through the environment.
// These tests run against a real PostgreSQL instance.
func integrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}

	cfg, err := config.Get()
	if err != nil {
		t.Skipf("configuration incomplete: %v", err)
	}

	store, err := database.StartGORM(cfg)
	require.NoError(t, err)
	require.NoError(t, store.Init())

	t.Cleanup(func() { store.Close() })
	return store.DB()
}

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func TestCountryCRUD(t *testing.T) {
	db := integrationDB(t)
	svc := NewCountryService(db, nil)
	ctx := context.Background()

	name := uniqueName("Testland")
	code := fmt.Sprintf("T%d", time.Now().UnixNano()%100000)

	country := model.Country{
		Name:      name,
		Code:      code,
		Currency:  "EUR",
		Continent: "Europe",
	}
	require.NoError(t, svc.Create(ctx, &country, nil))
	require.NotZero(t, country.ID)
	t.Cleanup(func() { db.Unscoped().Delete(&model.Country{}, country.ID) })

	fetched, err := svc.Get(country.ID)
	require.NoError(t, err)
	assert.Equal(t, name, fetched.Name)

	// Duplicate name violates the unique index
	dup := model.Country{Name: name, Code: code, Currency: "EUR", Continent: "Europe"}
	assert.ErrorIs(t, svc.Create(ctx, &dup, nil), ErrDuplicate)

	updated, err := svc.Update(ctx, country.ID, func(c *model.Country) {
		c.Currency = "USD"
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "USD", updated.Currency)

	require.NoError(t, svc.Delete(ctx, country.ID))

	// A second delete finds nothing
	assert.ErrorIs(t, svc.Delete(ctx, country.ID), ErrNotFound)
}

func TestCountryListFilters(t *testing.T) {
	db := integrationDB(t)
	svc := NewCountryService(db, nil)
	ctx := context.Background()

	continent := uniqueName("Atlantis")
	var ids []uint
	for i := 0; i < 3; i++ {
		c := model.Country{
			Name:      uniqueName("Listland"),
			Code:      fmt.Sprintf("L%d%d", i, time.Now().UnixNano()%10000),
			Currency:  "EUR",
			Continent: continent,
		}
		require.NoError(t, svc.Create(ctx, &c, nil))
		ids = append(ids, c.ID)
	}
	t.Cleanup(func() {
		for _, id := range ids {
			db.Unscoped().Delete(&model.Country{}, id)
		}
	})

	opts, err := query.Parse(map[string]string{
		"continent": continent,
		"limit":     "2",
	}, svc.ListConfig())
	require.NoError(t, err)

	page, total, err := svc.List(opts)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 2)
}

func TestUniversityRequiresExistingCountry(t *testing.T) {
	db := integrationDB(t)
	svc := NewUniversityService(db, nil)
	ctx := context.Background()

	u := model.University{
		Name:      uniqueName("Ghost University"),
		CountryID: 999999999,
	}
	err := svc.Create(ctx, &u, UniversityFiles{})
	require.Error(t, err)
	assert.True(t, query.IsBadRequest(err))
	assert.Equal(t, "Country does not exist", err.Error())
}

func TestUniversityListByCountry(t *testing.T) {
	db := integrationDB(t)
	countrySvc := NewCountryService(db, nil)
	svc := NewUniversityService(db, nil)
	ctx := context.Background()

	country := model.Country{
		Name:      uniqueName("Uniland"),
		Code:      fmt.Sprintf("U%d", time.Now().UnixNano()%100000),
		Currency:  "EUR",
		Continent: "Europe",
	}
	require.NoError(t, countrySvc.Create(ctx, &country, nil))
	t.Cleanup(func() { db.Unscoped().Delete(&model.Country{}, country.ID) })

	u := model.University{
		Name:      uniqueName("Test University"),
		CountryID: country.ID,
		Programs:  []string{"MBBS", "BDS"},
	}
	require.NoError(t, svc.Create(ctx, &u, UniversityFiles{}))
	t.Cleanup(func() { db.Unscoped().Delete(&model.University{}, u.ID) })

	opts, err := query.Parse(map[string]string{}, svc.ListConfig())
	require.NoError(t, err)

	// Filter by the owning country
	page, total, err := svc.List(opts, fmt.Sprint(country.ID), "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, page, 1)
	require.NotNil(t, page[0].Country, "the country reference is populated")
	assert.Equal(t, country.Name, page[0].Country.Name)

	// Program membership filter
	_, total, err = svc.List(opts, fmt.Sprint(country.ID), "MBBS")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, total, err = svc.List(opts, fmt.Sprint(country.ID), "LLB")
	require.NoError(t, err)
	assert.Zero(t, total)

	// A well-formed id that matches nothing is an empty page, not an error
	page, total, err = svc.List(opts, "999999999", "")
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, page)

	// A malformed id never reaches the store
	_, _, err = svc.List(opts, "not-a-number", "")
	require.Error(t, err)
	assert.True(t, query.IsBadRequest(err))
}

func TestUniversityDeleteSurvivesHostFailure(t *testing.T) {
	db := integrationDB(t)
	countrySvc := NewCountryService(db, nil)
	svc := NewUniversityService(db, failingStore{})
	ctx := context.Background()

	country := model.Country{
		Name:      uniqueName("Orphanland"),
		Code:      fmt.Sprintf("O%d", time.Now().UnixNano()%100000),
		Currency:  "EUR",
		Continent: "Europe",
	}
	require.NoError(t, countrySvc.Create(ctx, &country, nil))
	t.Cleanup(func() { db.Unscoped().Delete(&model.Country{}, country.ID) })

	u := model.University{
		Name:         uniqueName("Orphan University"),
		CountryID:    country.ID,
		Logo:         "https://cdn.test/logos/a.png",
		LogoPublicID: "logos/a.png",
	}
	require.NoError(t, db.Create(&u).Error)
	t.Cleanup(func() { db.Unscoped().Delete(&model.University{}, u.ID) })

	// The host is down, yet the document delete must still succeed
	require.NoError(t, svc.Delete(ctx, u.ID))

	_, err := svc.Get(u.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// The failed remote delete was recorded for the sweeper
	var orphan model.OrphanAsset
	err = db.Where("public_id = ?", "logos/a.png").First(&orphan).Error
	require.NoError(t, err)
	assert.Equal(t, "logo", orphan.Kind)
	assert.GreaterOrEqual(t, orphan.Attempts, 1)
	t.Cleanup(func() { db.Unscoped().Delete(&model.OrphanAsset{}, orphan.ID) })
}
