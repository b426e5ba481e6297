package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/abroadwise/abroad-api/config"
	"github.com/abroadwise/abroad-api/database"
	"github.com/abroadwise/abroad-api/model"
	"github.com/abroadwise/abroad-api/utils/auth"
	"gorm.io/gorm"
)

func main() {
	if err := config.LoadENV(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := config.Get()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	store, err := database.StartGORM(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := store.DB()

	separator := strings.Repeat("=", 60)
	fmt.Println(separator)
	fmt.Println("Abroadwise - Database Seeding")
	fmt.Println(separator)

	if err := seedAdmin(db); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}
	if err := seedCatalog(db); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	fmt.Println(separator)
	fmt.Println("Seeding completed")
	fmt.Println(separator)
}

func seedAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		fmt.Println("Admin user already exists, skipping")
		return nil
	}

	hash, err := auth.HashPassword("changeme-now")
	if err != nil {
		return err
	}

	admin := model.User{
		Email:        "admin@abroadwise.local",
		PasswordHash: hash,
		Name:         "Administrator",
		Role:         model.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	fmt.Println("Created admin user admin@abroadwise.local (change the password)")
	return nil
}

func seedCatalog(db *gorm.DB) error {
	countries := []model.Country{
		{Name: "Germany", Code: "DE", Currency: "EUR", Continent: "Europe",
			Description: "Tuition-free public universities and strong engineering programs."},
		{Name: "Georgia", Code: "GE", Currency: "GEL", Continent: "Europe",
			Description: "Affordable medical education with English-medium programs."},
		{Name: "Philippines", Code: "PH", Currency: "PHP", Continent: "Asia",
			Description: "US-pattern medical curriculum in an English-speaking country."},
	}

	for i := range countries {
		country := &countries[i]
		err := db.Where("code = ?", country.Code).First(&model.Country{}).Error
		if err == nil {
			fmt.Printf("Country %s already exists, skipping\n", country.Name)
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := db.Create(country).Error; err != nil {
			return err
		}
		fmt.Printf("Created country %s\n", country.Name)
	}

	var germany model.Country
	if err := db.Where("code = ?", "DE").First(&germany).Error; err != nil {
		return err
	}

	universities := []model.University{
		{
			Name:        "tu-munich",
			DisplayName: "Technical University of Munich",
			CountryID:   germany.ID,
			Location:    "Munich, Bavaria",
			Established: 1868,
			Programs:    []string{"Engineering", "Computer Science", "Medicine"},
			Medium:      "English / German",
			Duration:    "3-5 years",
		},
	}

	for i := range universities {
		u := &universities[i]
		err := db.Where("name = ?", u.Name).First(&model.University{}).Error
		if err == nil {
			fmt.Printf("University %s already exists, skipping\n", u.DisplayName)
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := db.Create(u).Error; err != nil {
			return err
		}
		fmt.Printf("Created university %s\n", u.DisplayName)
	}

	return nil
}
