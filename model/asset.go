package model

import "time"

// Asset is a handle to an object stored on the external asset host.
// A valid handle always carries both fields; partial values are rejected
// at the validation boundary.
type Asset struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

// IsZero reports whether the handle is empty.
func (a Asset) IsZero() bool {
	return a.PublicID == "" && a.URL == ""
}

// OrphanAsset records a remote asset whose deletion failed mid-flow so the
// reconciliation sweeper can retry it later. Asset mutations are not wrapped
// in a transaction with the document store, so this is the compensation log.
type OrphanAsset struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	PublicID  string     `gorm:"not null;index" json:"public_id"`
	Kind      string     `gorm:"type:varchar(40)" json:"kind"` // flag, logo, cover, review, brochure
	Reason    string     `gorm:"type:varchar(255)" json:"reason"`
	Attempts  int        `gorm:"default:0" json:"attempts"`
	LastError string     `json:"last_error,omitempty"`
	DeletedOn *time.Time `json:"deleted_on,omitempty"` // set once the sweeper succeeds
}
