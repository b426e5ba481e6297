package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Highlight is a labelled stat shown on a university card
type Highlight struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Icon  string `json:"icon,omitempty"`
}

// FeeYear is one row of the year-wise fee breakdown
type FeeYear struct {
	Year    string `json:"year"`
	Tuition string `json:"tuition"`
	Hostel  string `json:"hostel"`
}

// Review is a student testimonial. ImagePublicID tracks the remote asset so
// it can be removed when the review or the university goes away.
type Review struct {
	Name          string  `json:"name"`
	Image         string  `json:"image,omitempty"`
	ImagePublicID string  `json:"image_public_id,omitempty"`
	Rating        float64 `json:"rating"` // 1..5
	Review        string  `json:"review"`
}

// FAQ is a question/answer pair shown on the university page
type FAQ struct {
	Q string `json:"q"`
	A string `json:"a"`
}

// University represents a partner institution in the catalog
type University struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	DisplayName string `gorm:"type:varchar(255)" json:"university"` // display/legal name
	CountryID   uint   `gorm:"not null;index" json:"country_id"`
	Location    string `gorm:"type:varchar(255)" json:"location"`
	Tagline     string `gorm:"type:varchar(255)" json:"tagline,omitempty"`

	CoverImage         string `json:"cover_image,omitempty"`
	CoverImagePublicID string `json:"cover_image_public_id,omitempty"`
	Logo               string `json:"logo,omitempty"`
	LogoPublicID       string `json:"logo_public_id,omitempty"`
	BrochureURL        string `json:"brochure_url,omitempty"`
	BrochurePublicID   string `json:"brochure_public_id,omitempty"`

	Established int         `json:"established,omitempty"`
	Highlights  []Highlight `gorm:"serializer:json" json:"highlights,omitempty"`
	About       string      `json:"about,omitempty"`

	Programs    pq.StringArray `gorm:"type:text[]" json:"programs,omitempty"`
	Duration    string         `gorm:"type:varchar(80)" json:"duration,omitempty"`
	Medium      string         `gorm:"type:varchar(80)" json:"medium,omitempty"`
	GPARequired string         `gorm:"type:varchar(40)" json:"gpa_required,omitempty"`
	FeesUSD     string         `gorm:"type:varchar(40)" json:"fees_usd,omitempty"`
	FeesINR     string         `gorm:"type:varchar(40)" json:"fees_inr,omitempty"`

	FeeStructure []FeeYear      `gorm:"serializer:json" json:"fee_structure,omitempty"`
	HostelCost   string         `gorm:"type:varchar(80)" json:"hostel_cost,omitempty"`
	ApprovedBy   pq.StringArray `gorm:"type:text[]" json:"approved_by,omitempty"`
	Facilities   pq.StringArray `gorm:"type:text[]" json:"facilities,omitempty"`
	Eligibility  pq.StringArray `gorm:"type:text[]" json:"eligibility,omitempty"`

	AdmissionSteps pq.StringArray `gorm:"type:text[]" json:"admission_steps,omitempty"`
	Documents      pq.StringArray `gorm:"type:text[]" json:"documents,omitempty"`

	Reviews []Review `gorm:"serializer:json" json:"reviews,omitempty"`
	FAQs    []FAQ    `gorm:"serializer:json" json:"faqs,omitempty"`

	// Comparison rows are opaque records assembled by the marketing frontend
	Comparison datatypes.JSON `json:"comparison,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Country *Country `gorm:"foreignKey:CountryID" json:"country,omitempty"`
}
