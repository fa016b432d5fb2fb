package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	apperrors "spotly/internal/errors"
	"spotly/internal/metrics"
	"spotly/internal/model"
	"spotly/internal/repository"
	"spotly/internal/validation"
)

const defaultReviewPageLimit = 10

// ReviewInput is the body of a review creation.
type ReviewInput struct {
	SpotID string   `json:"spot"`
	Rating int      `json:"rating"`
	Text   string   `json:"text"`
	Images []string `json:"images"`
}

// ReviewUpdate carries the author's edit. Nil fields are left unchanged.
type ReviewUpdate struct {
	Rating *int    `json:"rating"`
	Text   *string `json:"text"`
}

// HelpfulResult is the outcome of a helpful toggle.
type HelpfulResult struct {
	Helpful      bool `json:"helpful"`
	HelpfulCount int  `json:"helpfulCount"`
}

// ReviewService handles reviews. Every write that can change a spot's approved
// reviews recomputes the spot's rating in the same transaction.
type ReviewService interface {
	ListBySpot(ctx context.Context, spotID uuid.UUID, sort string, page model.PageQuery) ([]model.Review, model.Pagination, error)
	Create(ctx context.Context, actor Actor, in ReviewInput) (*model.Review, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, in ReviewUpdate) (*model.Review, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	ToggleHelpful(ctx context.Context, actor Actor, id uuid.UUID) (*HelpfulResult, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ModerationStatus) (*model.Review, error)
}

type reviewService struct {
	repos *repository.Repositories
}

// NewReviewService creates a new review service.
func NewReviewService(repos *repository.Repositories) ReviewService {
	return &reviewService{repos: repos}
}

// ListBySpot returns the approved reviews of a spot.
func (s *reviewService) ListBySpot(ctx context.Context, spotID uuid.UUID, sort string, page model.PageQuery) ([]model.Review, model.Pagination, error) {
	page = page.Normalize(defaultReviewPageLimit)
	reviews, total, err := s.repos.Reviews.ListBySpot(ctx, spotID, model.StatusApproved, sort, page)
	if err != nil {
		return nil, model.Pagination{}, storeError(err, nil, "list reviews")
	}
	return reviews, model.NewPagination(page, total), nil
}

// Create stores the actor's review of a spot. A second review of the same spot is rejected.
func (s *reviewService) Create(ctx context.Context, actor Actor, in ReviewInput) (*model.Review, error) {
	spotID, err := uuid.Parse(in.SpotID)
	if err != nil {
		return nil, apperrors.Validation([]apperrors.FieldError{{Field: "spot", Message: "spot must be a valid id"}})
	}

	review := &model.Review{
		UserID: actor.ID,
		SpotID: spotID,
		Rating: in.Rating,
		Text:   in.Text,
		Images: datatypes.JSONSlice[string](nonNil(in.Images)),
		Status: model.StatusApproved,
	}
	if err := validation.Struct(review); err != nil {
		return nil, err
	}

	err = s.repos.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		// Lock the spot so concurrent review writes recompute in order
		if _, err := tx.Spots.FindByIDForUpdate(ctx, spotID); err != nil {
			return storeError(err, ErrSpotNotFound, "lock spot")
		}

		exists, err := tx.Reviews.ExistsForUserAndSpot(ctx, actor.ID, spotID)
		if err != nil {
			return storeError(err, nil, "check existing review")
		}
		if exists {
			return ErrAlreadyReviewed
		}

		if err := tx.Reviews.Create(ctx, review); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyReviewed
			}
			return storeError(err, nil, "create review")
		}
		return recomputeRating(ctx, tx, spotID)
	})
	if err != nil {
		return nil, err
	}

	return s.find(ctx, review.ID)
}

// Update edits rating and text. Only the author may edit.
func (s *reviewService) Update(ctx context.Context, actor Actor, id uuid.UUID, in ReviewUpdate) (*model.Review, error) {
	err := s.repos.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		review, locked, err := lockReview(ctx, tx, id)
		if err != nil {
			return err
		}
		if review.UserID != actor.ID {
			return apperrors.Forbidden("Not authorized to update this review")
		}

		fields := map[string]any{}
		if in.Rating != nil {
			review.Rating = *in.Rating
			fields["rating"] = review.Rating
		}
		if in.Text != nil {
			review.Text = *in.Text
			fields["text"] = review.Text
		}
		if err := validation.Struct(review); err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}

		if err := tx.Reviews.UpdateFields(ctx, id, fields); err != nil {
			return storeError(err, ErrReviewNotFound, "update review")
		}
		if !locked {
			return nil
		}
		return recomputeRating(ctx, tx, review.SpotID)
	})
	if err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

// Delete removes a review. The author and admins may delete.
func (s *reviewService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	return s.repos.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		review, locked, err := lockReview(ctx, tx, id)
		if err != nil {
			return err
		}
		if review.UserID != actor.ID && !actor.IsAdmin() {
			return apperrors.Forbidden("Not authorized to delete this review")
		}

		if err := tx.Reviews.Delete(ctx, id); err != nil {
			return storeError(err, ErrReviewNotFound, "delete review")
		}
		if !locked {
			return nil
		}
		return recomputeRating(ctx, tx, review.SpotID)
	})
}

// ToggleHelpful marks or unmarks the review as helpful for the actor.
func (s *reviewService) ToggleHelpful(ctx context.Context, actor Actor, id uuid.UUID) (*HelpfulResult, error) {
	if _, err := s.repos.Reviews.FindByID(ctx, id); err != nil {
		return nil, storeError(err, ErrReviewNotFound, "find review")
	}
	helpful, count, err := s.repos.Reviews.ToggleHelpful(ctx, id, actor.ID)
	if err != nil {
		return nil, storeError(err, ErrReviewNotFound, "toggle helpful")
	}
	return &HelpfulResult{Helpful: helpful, HelpfulCount: count}, nil
}

// UpdateStatus moderates a review and recomputes the spot rating.
func (s *reviewService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ModerationStatus) (*model.Review, error) {
	switch status {
	case model.StatusApproved, model.StatusPending, model.StatusRejected:
	default:
		return nil, apperrors.Validation([]apperrors.FieldError{{Field: "status", Message: "status must be one of [approved, pending, rejected]"}})
	}

	err := s.repos.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		review, locked, err := lockReview(ctx, tx, id)
		if err != nil {
			return err
		}
		if review.Status == status {
			return nil
		}
		if err := tx.Reviews.UpdateFields(ctx, id, map[string]any{"status": status}); err != nil {
			return storeError(err, ErrReviewNotFound, "update review status")
		}
		if !locked {
			return nil
		}
		return recomputeRating(ctx, tx, review.SpotID)
	})
	if err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

func (s *reviewService) find(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	review, err := s.repos.Reviews.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, ErrReviewNotFound, "find review")
	}
	return review, nil
}

// lockReview loads the review and locks its spot row. locked is false when the
// spot no longer exists, in which case there is no aggregate to maintain.
func lockReview(ctx context.Context, tx *repository.Repositories, id uuid.UUID) (*model.Review, bool, error) {
	review, err := tx.Reviews.FindByID(ctx, id)
	if err != nil {
		return nil, false, storeError(err, ErrReviewNotFound, "find review")
	}
	if _, err := tx.Spots.FindByIDForUpdate(ctx, review.SpotID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return review, false, nil
		}
		return nil, false, storeError(err, nil, "lock spot")
	}
	return review, true, nil
}

// recomputeRating rewrites rating and reviewCount from a full scan of the
// spot's approved reviews. Callers hold the spot row lock.
func recomputeRating(ctx context.Context, tx *repository.Repositories, spotID uuid.UUID) error {
	stats, err := tx.Reviews.ApprovedStats(ctx, spotID)
	if err != nil {
		return storeError(err, nil, "scan approved reviews")
	}
	if err := tx.Spots.UpdateAggregate(ctx, spotID, averageRating(stats.Sum, stats.Count), int(stats.Count)); err != nil {
		return storeError(err, ErrSpotNotFound, "update spot rating")
	}
	metrics.RecordRatingRecompute()
	return nil
}

// averageRating is sum/count rounded half up to one decimal place, or 0 without ratings.
func averageRating(sum, count int64) float64 {
	if count <= 0 {
		return 0
	}
	avg, _ := decimal.NewFromInt(sum).Div(decimal.NewFromInt(count)).Round(1).Float64()
	return avg
}
