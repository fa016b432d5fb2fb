package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Review is one user's rating of one spot. A user may review a spot once.
type Review struct {
	ID           uuid.UUID                   `json:"id" gorm:"type:char(36);primaryKey"`
	UserID       uuid.UUID                   `json:"userId" gorm:"type:char(36);not null;uniqueIndex:idx_reviews_user_spot,priority:1"`
	User         *UserSummary                `json:"user,omitempty" gorm:"foreignKey:UserID" validate:"-"`
	SpotID       uuid.UUID                   `json:"spot" gorm:"type:char(36);not null;uniqueIndex:idx_reviews_user_spot,priority:2;index:idx_reviews_spot_status,priority:1"`
	Rating       int                         `json:"rating" gorm:"not null" validate:"required,min=1,max=5"`
	Text         string                      `json:"text" gorm:"type:text;not null" validate:"required,min=10,max=1000"`
	Images       datatypes.JSONSlice[string] `json:"images" gorm:"type:json" validate:"max=5"`
	HelpfulCount int                         `json:"helpfulCount" gorm:"not null;default:0"`
	Status       ModerationStatus            `json:"status" gorm:"type:varchar(20);not null;default:'approved';index:idx_reviews_spot_status,priority:2"`
	CreatedAt    time.Time                   `json:"createdAt" gorm:"index"`
	UpdatedAt    time.Time                   `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = StatusApproved
	}
	if r.Images == nil {
		r.Images = datatypes.JSONSlice[string]{}
	}
	return nil
}

// ReviewHelpfulVote records that a user marked a review helpful.
type ReviewHelpfulVote struct {
	ReviewID  uuid.UUID `gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID `gorm:"type:char(36);primaryKey"`
	CreatedAt time.Time
}
