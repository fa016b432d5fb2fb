package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"spotly/internal/model"
)

// BusinessRepository defines business profile persistence operations.
type BusinessRepository interface {
	Create(ctx context.Context, business *model.Business) error
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*model.Business, error)
	AddClaimedSpot(ctx context.Context, businessID, spotID uuid.UUID) error
	UpdateAnalytics(ctx context.Context, id uuid.UUID, analytics model.BusinessAnalytics) error
	Count(ctx context.Context) (int64, error)
}

type businessRepository struct {
	db *gorm.DB
}

// NewBusinessRepository creates a new business repository.
func NewBusinessRepository(db *gorm.DB) BusinessRepository {
	return &businessRepository{db: db}
}

func (r *businessRepository) Create(ctx context.Context, business *model.Business) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(business).Error
}

// FindByOwner loads the owner's profile with its claimed spots.
func (r *businessRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*model.Business, error) {
	var business model.Business
	if err := r.db.WithContext(ctx).
		Preload("ClaimedSpots", func(tx *gorm.DB) *gorm.DB { return tx.Order("spots.created_at") }).
		Where("owner_id = ?", ownerID).First(&business).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

// AddClaimedSpot links spot to the business. Linking twice is a no-op.
func (r *businessRepository) AddClaimedSpot(ctx context.Context, businessID, spotID uuid.UUID) error {
	db := r.db.WithContext(ctx)
	var n int64
	if err := db.Table("business_spots").
		Where("business_id = ? AND spot_id = ?", businessID, spotID).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return db.Exec("INSERT INTO business_spots (business_id, spot_id) VALUES (?, ?)", businessID, spotID).Error
}

func (r *businessRepository) UpdateAnalytics(ctx context.Context, id uuid.UUID, analytics model.BusinessAnalytics) error {
	return r.db.WithContext(ctx).Model(&model.Business{}).Where("id = ?", id).
		Updates(map[string]any{
			"analytics_total_views":    analytics.TotalViews,
			"analytics_total_reviews":  analytics.TotalReviews,
			"analytics_average_rating": analytics.AverageRating,
		}).Error
}

func (r *businessRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Business{}).Count(&n).Error
	return n, err
}
