package model

import (
	"time"

	"gorm.io/gorm"
)

// Roles form a closed set; anything else is rejected at registration time.
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// User represents a registered back-office or student account
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	Name         string         `gorm:"not null" json:"name"`
	Role         string         `gorm:"type:varchar(20);default:'student'" json:"role"` // student, admin
}

// IsValidRole reports whether role belongs to the closed role set.
func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleStudent
}
