package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"spotly/internal/model"
)

var reviewSortColumns = map[string]string{
	"createdAt":    "created_at",
	"rating":       "rating",
	"helpfulCount": "helpful_count",
}

// RatingStats is the sum and count of approved ratings for a spot.
type RatingStats struct {
	Sum   int64
	Count int64
}

// ReviewRepository defines review persistence operations.
type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Review, error)
	ExistsForUserAndSpot(ctx context.Context, userID, spotID uuid.UUID) (bool, error)
	ListBySpot(ctx context.Context, spotID uuid.UUID, status model.ModerationStatus, sort string, page model.PageQuery) ([]model.Review, int64, error)
	ApprovedStats(ctx context.Context, spotID uuid.UUID) (RatingStats, error)
	ToggleHelpful(ctx context.Context, reviewID, userID uuid.UUID) (helpful bool, count int, err error)
	CountForSpots(ctx context.Context, spotIDs []uuid.UUID) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository.
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// withAuthor preloads the author's display fields.
func withAuthor(db *gorm.DB) *gorm.DB {
	return db.Preload("User", func(tx *gorm.DB) *gorm.DB {
		return tx.Select("id", "name", "avatar")
	})
}

func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(review).Error
}

func (r *reviewRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&model.Review{}).Where("id = ?", id).Updates(fields).Error
}

// Delete removes the review and its helpful votes.
func (r *reviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("review_id = ?", id).Delete(&model.ReviewHelpfulVote{}).Error; err != nil {
		return err
	}
	res := db.Where("id = ?", id).Delete(&model.Review{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	var review model.Review
	if err := withAuthor(r.db.WithContext(ctx)).Where("id = ?", id).First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) ExistsForUserAndSpot(ctx context.Context, userID, spotID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("user_id = ? AND spot_id = ?", userID, spotID).
		Count(&n).Error
	return n > 0, err
}

func (r *reviewRepository) ListBySpot(ctx context.Context, spotID uuid.UUID, status model.ModerationStatus, sort string, page model.PageQuery) ([]model.Review, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Review{}).Where("spot_id = ?", spotID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	reviews := []model.Review{}
	if err := withAuthor(q).
		Clauses(orderBy(sort, reviewSortColumns, "-createdAt")).
		Offset(page.Offset()).Limit(page.Limit).
		Find(&reviews).Error; err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// ApprovedStats scans every approved review of the spot.
func (r *reviewRepository) ApprovedStats(ctx context.Context, spotID uuid.UUID) (RatingStats, error) {
	var stats RatingStats
	err := r.db.WithContext(ctx).Model(&model.Review{}).
		Select("COALESCE(SUM(rating), 0) AS sum, COUNT(*) AS count").
		Where("spot_id = ? AND status = ?", spotID, model.StatusApproved).
		Scan(&stats).Error
	return stats, err
}

// ToggleHelpful flips the user's helpful vote and keeps helpful_count equal to the number of votes.
func (r *reviewRepository) ToggleHelpful(ctx context.Context, reviewID, userID uuid.UUID) (bool, int, error) {
	helpful := false
	var count int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("review_id = ? AND user_id = ?", reviewID, userID).Delete(&model.ReviewHelpfulVote{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			helpful = true
			if err := tx.Create(&model.ReviewHelpfulVote{ReviewID: reviewID, UserID: userID}).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&model.ReviewHelpfulVote{}).Where("review_id = ?", reviewID).Count(&count).Error; err != nil {
			return err
		}
		return tx.Model(&model.Review{}).Where("id = ?", reviewID).
			UpdateColumn("helpful_count", count).Error
	})
	return helpful, int(count), err
}

// CountForSpots counts reviews of any status on the given spots.
func (r *reviewRepository) CountForSpots(ctx context.Context, spotIDs []uuid.UUID) (int64, error) {
	if len(spotIDs) == 0 {
		return 0, nil
	}
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Review{}).Where("spot_id IN ?", spotIDs).Count(&n).Error
	return n, err
}

func (r *reviewRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Review{}).Count(&n).Error
	return n, err
}
