package model

import (
	"time"

	"gorm.io/gorm"
)

// Country represents a destination country in the catalog
type Country struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;uniqueIndex" json:"name"`
	Code        string         `gorm:"type:varchar(10);not null;uniqueIndex" json:"code"` // e.g. "UK", "DE"
	Currency    string         `gorm:"type:varchar(20);not null" json:"currency"`
	Continent   string         `gorm:"type:varchar(40);not null" json:"continent"`
	Description string         `json:"description,omitempty"`
	FlagImage   *Asset         `gorm:"serializer:json" json:"flag_image,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Universities []University `gorm:"foreignKey:CountryID;constraint:OnDelete:CASCADE" json:"universities,omitempty"`
}
