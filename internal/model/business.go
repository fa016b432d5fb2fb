package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

type Plan string

const (
	PlanFree       Plan = "free"
	PlanBasic      Plan = "basic"
	PlanPremium    Plan = "premium"
	PlanEnterprise Plan = "enterprise"
)

// BusinessAnalytics is a snapshot refreshed when the dashboard is viewed.
type BusinessAnalytics struct {
	TotalViews    int64   `json:"totalViews" gorm:"not null;default:0"`
	TotalReviews  int64   `json:"totalReviews" gorm:"not null;default:0"`
	AverageRating float64 `json:"averageRating" gorm:"type:decimal(2,1);not null;default:0"`
}

// Business is the ownership profile of a business owner. One per owner.
type Business struct {
	ID                    uuid.UUID                   `json:"id" gorm:"type:char(36);primaryKey"`
	OwnerID               uuid.UUID                   `json:"ownerId" gorm:"type:char(36);not null;uniqueIndex"`
	Owner                 *User                       `json:"owner,omitempty" gorm:"foreignKey:OwnerID" validate:"-"`
	ClaimedSpots          []Spot                      `json:"claimedSpots" gorm:"many2many:business_spots" validate:"-"`
	BusinessName          string                      `json:"businessName" gorm:"size:150;not null" validate:"required,max=150"`
	BusinessType          string                      `json:"businessType" gorm:"size:100;not null" validate:"required,max=100"`
	RegistrationNumber    string                      `json:"registrationNumber,omitempty" gorm:"size:100"`
	VerificationStatus    VerificationStatus          `json:"verificationStatus" gorm:"type:varchar(20);not null;default:'pending'"`
	VerificationDocuments datatypes.JSONSlice[string] `json:"verificationDocuments" gorm:"type:json"`
	Plan                  Plan                        `json:"plan" gorm:"type:varchar(20);not null;default:'free'"`
	PlanExpiry            *time.Time                  `json:"planExpiry,omitempty"`
	Analytics             BusinessAnalytics           `json:"analytics" gorm:"embedded;embeddedPrefix:analytics_"`
	CreatedAt             time.Time                   `json:"createdAt"`
	UpdatedAt             time.Time                   `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (b *Business) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.VerificationStatus == "" {
		b.VerificationStatus = VerificationPending
	}
	if b.Plan == "" {
		b.Plan = PlanFree
	}
	if b.VerificationDocuments == nil {
		b.VerificationDocuments = datatypes.JSONSlice[string]{}
	}
	return nil
}
