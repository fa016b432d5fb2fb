package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"spotly/internal/model"
	"spotly/internal/repository"
	"spotly/internal/validation"
)

// ClaimInput describes the business profile created on a first claim.
// Later claims ignore it.
type ClaimInput struct {
	BusinessName       string `json:"businessName"`
	BusinessType       string `json:"businessType"`
	RegistrationNumber string `json:"registrationNumber"`
}

// ClaimResult is the business profile and the claimed spot after a claim.
type ClaimResult struct {
	Business *model.Business `json:"business"`
	Spot     *model.Spot     `json:"spot"`
}

// Dashboard is the owner's business profile with a freshly computed analytics snapshot.
type Dashboard struct {
	Business  *model.Business         `json:"business"`
	Analytics model.BusinessAnalytics `json:"analytics"`
}

// BusinessService handles spot claims and owner dashboards.
type BusinessService interface {
	Claim(ctx context.Context, actor Actor, spotID uuid.UUID, in ClaimInput) (*ClaimResult, error)
	Dashboard(ctx context.Context, ownerID uuid.UUID) (*Dashboard, error)
	OwnedSpots(ctx context.Context, ownerID uuid.UUID) ([]model.Spot, error)
}

type businessService struct {
	repos *repository.Repositories
}

// NewBusinessService creates a new business service.
func NewBusinessService(repos *repository.Repositories) BusinessService {
	return &businessService{repos: repos}
}

// Claim links an unowned spot to the actor's business, creating the profile on the
// first claim. The spot goes back to pending until an admin approves it and a plain
// user is promoted to business owner.
func (s *businessService) Claim(ctx context.Context, actor Actor, spotID uuid.UUID, in ClaimInput) (*ClaimResult, error) {
	err := s.repos.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		spot, err := tx.Spots.FindByIDForUpdate(ctx, spotID)
		if err != nil {
			return storeError(err, ErrSpotNotFound, "lock spot")
		}
		if spot.OwnerID != nil {
			return ErrSpotAlreadyClaimed
		}

		business, err := tx.Businesses.FindByOwner(ctx, actor.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			business = &model.Business{
				OwnerID:            actor.ID,
				BusinessName:       strings.TrimSpace(in.BusinessName),
				BusinessType:       strings.TrimSpace(in.BusinessType),
				RegistrationNumber: strings.TrimSpace(in.RegistrationNumber),
			}
			if err := validation.Struct(business); err != nil {
				return err
			}
			if err := tx.Businesses.Create(ctx, business); err != nil {
				return storeError(err, nil, "create business")
			}
		} else if err != nil {
			return storeError(err, nil, "find business")
		}

		if err := tx.Businesses.AddClaimedSpot(ctx, business.ID, spotID); err != nil {
			return storeError(err, nil, "add claimed spot")
		}

		// Update user role to business_owner if not already
		user, err := tx.Users.FindByID(ctx, actor.ID)
		if err != nil {
			return storeError(err, ErrUserNotFound, "find user")
		}
		if user.Role == model.RoleUser {
			if err := tx.Users.UpdateFields(ctx, actor.ID, map[string]any{"role": model.RoleBusinessOwner}); err != nil {
				return storeError(err, ErrUserNotFound, "promote user")
			}
		}

		// Require admin approval
		return storeError(tx.Spots.UpdateFields(ctx, spotID, map[string]any{
			"owner_id": actor.ID,
			"status":   model.StatusPending,
		}), ErrSpotNotFound, "assign spot owner")
	})
	if err != nil {
		return nil, err
	}

	business, err := s.repos.Businesses.FindByOwner(ctx, actor.ID)
	if err != nil {
		return nil, storeError(err, ErrBusinessNotFound, "find business")
	}
	spot, err := s.repos.Spots.FindByID(ctx, spotID)
	if err != nil {
		return nil, storeError(err, ErrSpotNotFound, "find spot")
	}
	return &ClaimResult{Business: business, Spot: spot}, nil
}

// Dashboard recomputes and stores the analytics snapshot over the claimed spots:
// total views, reviews of any status, and the approved average rating.
func (s *businessService) Dashboard(ctx context.Context, ownerID uuid.UUID) (*Dashboard, error) {
	business, err := s.repos.Businesses.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, storeError(err, ErrBusinessNotFound, "find business")
	}

	var analytics model.BusinessAnalytics
	var sum, count int64
	spotIDs := make([]uuid.UUID, 0, len(business.ClaimedSpots))
	for _, spot := range business.ClaimedSpots {
		spotIDs = append(spotIDs, spot.ID)
		analytics.TotalViews += spot.Views

		stats, err := s.repos.Reviews.ApprovedStats(ctx, spot.ID)
		if err != nil {
			return nil, storeError(err, nil, "scan approved reviews")
		}
		sum += stats.Sum
		count += stats.Count
	}
	analytics.AverageRating = averageRating(sum, count)

	analytics.TotalReviews, err = s.repos.Reviews.CountForSpots(ctx, spotIDs)
	if err != nil {
		return nil, storeError(err, nil, "count reviews")
	}

	if err := s.repos.Businesses.UpdateAnalytics(ctx, business.ID, analytics); err != nil {
		return nil, storeError(err, ErrBusinessNotFound, "save analytics")
	}
	business.Analytics = analytics
	return &Dashboard{Business: business, Analytics: analytics}, nil
}

// OwnedSpots lists every spot owned by the user, newest first.
func (s *businessService) OwnedSpots(ctx context.Context, ownerID uuid.UUID) ([]model.Spot, error) {
	spots, _, err := s.repos.Spots.List(ctx, repository.SpotFilter{OwnerID: &ownerID, Sort: "-createdAt"},
		model.PageQuery{Page: 1, Limit: model.MaxPageLimit})
	if err != nil {
		return nil, storeError(err, nil, "list owned spots")
	}
	return spots, nil
}
