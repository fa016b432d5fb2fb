package model

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Category is the closed set of spot categories.
type Category string

const (
	CategoryFoodCafes     Category = "Food & Cafes"
	CategoryFashion       Category = "Fashion & Clothing"
	CategoryLocalServices Category = "Local Services"
	CategoryHealth        Category = "Health & Wellness"
	CategoryEducation     Category = "Education & Training"
	CategoryRealEstate    Category = "Real Estate"
	CategoryAutomotive    Category = "Automotive"
	CategoryEntertainment Category = "Entertainment"
	CategoryEvents        Category = "Events & Weddings"
)

var Categories = []Category{
	CategoryFoodCafes, CategoryFashion, CategoryLocalServices, CategoryHealth, CategoryEducation,
	CategoryRealEstate, CategoryAutomotive, CategoryEntertainment, CategoryEvents,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// PriceRange is one of four ordered price tiers.
type PriceRange string

const (
	PriceBudget    PriceRange = "$"
	PriceModerate  PriceRange = "$$"
	PriceExpensive PriceRange = "$$$"
	PriceLuxury    PriceRange = "$$$$"
)

func (p PriceRange) Valid() bool {
	switch p {
	case PriceBudget, PriceModerate, PriceExpensive, PriceLuxury:
		return true
	}
	return false
}

// GeoPoint is a longitude/latitude pair, rendered as a GeoJSON point.
type GeoPoint struct {
	Longitude float64 `json:"-" gorm:"not null;index:idx_spots_geo,priority:2" validate:"longitude"`
	Latitude  float64 `json:"-" gorm:"not null;index:idx_spots_geo,priority:1" validate:"latitude"`
}

type geoJSONPoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func (p GeoPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(geoJSONPoint{Type: "Point", Coordinates: []float64{p.Longitude, p.Latitude}})
}

func (p *GeoPoint) UnmarshalJSON(data []byte) error {
	var raw geoJSONPoint
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Coordinates) != 2 {
		return fmt.Errorf("coordinates must be [longitude, latitude]")
	}
	p.Longitude, p.Latitude = raw.Coordinates[0], raw.Coordinates[1]
	return nil
}

// Location is stored inline on the spot row.
type Location struct {
	Address     string   `json:"address" gorm:"size:255;not null" validate:"required"`
	City        string   `json:"city" gorm:"size:100;not null;index" validate:"required"`
	Coordinates GeoPoint `json:"coordinates" gorm:"embedded"`
}

type Contact struct {
	Phone   string `json:"phone,omitempty" gorm:"size:32"`
	Website string `json:"website,omitempty" gorm:"size:255" validate:"omitempty,url"`
	Email   string `json:"email,omitempty" gorm:"size:255" validate:"omitempty,email"`
}

type Hours struct {
	Monday    string `json:"monday,omitempty" gorm:"size:64"`
	Tuesday   string `json:"tuesday,omitempty" gorm:"size:64"`
	Wednesday string `json:"wednesday,omitempty" gorm:"size:64"`
	Thursday  string `json:"thursday,omitempty" gorm:"size:64"`
	Friday    string `json:"friday,omitempty" gorm:"size:64"`
	Saturday  string `json:"saturday,omitempty" gorm:"size:64"`
	Sunday    string `json:"sunday,omitempty" gorm:"size:64"`
}

// Spot represents a listed business or venue.
// Rating and ReviewCount are derived from approved reviews and only written by the aggregator.
type Spot struct {
	ID            uuid.UUID                   `json:"id" gorm:"type:char(36);primaryKey"`
	Name          string                      `json:"name" gorm:"size:100;not null" validate:"required,min=2,max=100"`
	Description   string                      `json:"description" gorm:"type:text;not null" validate:"required,min=10,max=2000"`
	Category      Category                    `json:"category" gorm:"size:50;not null;index" validate:"required,enum"`
	Subcategory   string                      `json:"subcategory,omitempty" gorm:"size:100"`
	Location      Location                    `json:"location" gorm:"embedded"`
	Contact       Contact                     `json:"contact" gorm:"embedded;embeddedPrefix:contact_"`
	Hours         Hours                       `json:"hours" gorm:"embedded;embeddedPrefix:hours_"`
	Images        datatypes.JSONSlice[string] `json:"images" gorm:"type:json"`
	FeaturedImage string                      `json:"featuredImage" gorm:"size:512;not null" validate:"required"`
	Rating        float64                     `json:"rating" gorm:"type:decimal(2,1);not null;default:0;index"`
	ReviewCount   int                         `json:"reviewCount" gorm:"not null;default:0"`
	PriceRange    PriceRange                  `json:"priceRange" gorm:"size:4;not null;default:'$$'" validate:"required,enum"`
	Tags          datatypes.JSONSlice[string] `json:"tags" gorm:"type:json"`
	Features      datatypes.JSONSlice[string] `json:"features" gorm:"type:json"`
	OwnerID       *uuid.UUID                  `json:"ownerId,omitempty" gorm:"type:char(36);index"`
	Owner         *UserSummary                `json:"owner,omitempty" gorm:"foreignKey:OwnerID" validate:"-"`
	IsVerified    bool                        `json:"isVerified" gorm:"not null"`
	IsActive      bool                        `json:"isActive" gorm:"not null;index"`
	Status        ModerationStatus            `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Views         int64                       `json:"views" gorm:"not null;default:0"`
	CreatedAt     time.Time                   `json:"createdAt" gorm:"index"`
	UpdatedAt     time.Time                   `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (s *Spot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.PriceRange == "" {
		s.PriceRange = PriceModerate
	}
	if s.Status == "" {
		s.Status = StatusPending
	}
	if s.Images == nil {
		s.Images = datatypes.JSONSlice[string]{}
	}
	if s.Tags == nil {
		s.Tags = datatypes.JSONSlice[string]{}
	}
	if s.Features == nil {
		s.Features = datatypes.JSONSlice[string]{}
	}
	return nil
}

// OwnedBy reports whether userID owns the spot.
func (s *Spot) OwnedBy(userID uuid.UUID) bool {
	return s.OwnerID != nil && *s.OwnerID == userID
}
