package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a registered account.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name         string    `json:"name" gorm:"size:50;not null" validate:"required,min=2,max=50"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null" validate:"required,email"`
	PasswordHash string    `json:"-" gorm:"size:255"` // Never expose in JSON
	Avatar       string    `json:"avatar" gorm:"size:512"`
	Role         Role      `json:"role" gorm:"type:varchar(20);not null;default:'user';index" validate:"required,oneof=user business_owner admin moderator"`
	Phone        string    `json:"phone,omitempty" gorm:"size:32" validate:"max=32"`
	Bio          string    `json:"bio,omitempty" gorm:"size:500" validate:"max=500"`
	OAuthSubject *string   `json:"-" gorm:"column:oauth_subject;uniqueIndex;size:255"`
	IsVerified   bool      `json:"isVerified" gorm:"not null"`
	IsActive     bool      `json:"isActive" gorm:"not null;index"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// SavedSpots is filled from user_saved_spots when requested.
	SavedSpots []string `json:"savedSpots,omitempty" gorm:"-"`
}

// UserSummary is the public view of a user embedded in spots and reviews.
type UserSummary struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email,omitempty"`
	Avatar string    `json:"avatar"`
}

func (UserSummary) TableName() string {
	return "users"
}

// NormalizeEmail lowercases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// BeforeSave keeps the stored email normalized.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	return nil
}

// UserSavedSpot is one wishlist entry. SpotID is stored opaquely.
type UserSavedSpot struct {
	UserID    uuid.UUID `gorm:"type:char(36);primaryKey"`
	SpotID    string    `gorm:"size:64;primaryKey"`
	CreatedAt time.Time
}

func (UserSavedSpot) TableName() string {
	return "user_saved_spots"
}
