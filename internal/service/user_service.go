package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	apperrors "spotly/internal/errors"
	"spotly/internal/model"
	"spotly/internal/repository"
	"spotly/internal/validation"
)

// maxSpotRefLength bounds the opaque spot reference kept in a wishlist.
const maxSpotRefLength = 64

// ProfileInput holds the editable profile fields. Nil fields are left unchanged.
type ProfileInput struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Bio   *string `json:"bio"`
}

// UserService exposes profile and wishlist operations for the signed in user.
type UserService interface {
	Profile(ctx context.Context, userID uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileInput) (*model.User, error)
	UpdateAvatar(ctx context.Context, userID uuid.UUID, avatarURL string) (*model.User, error)
	ToggleSavedSpot(ctx context.Context, userID uuid.UUID, spotID string) (saved bool, err error)
	SavedSpots(ctx context.Context, userID uuid.UUID) ([]model.Spot, error)
}

type userService struct {
	repos *repository.Repositories
}

// NewUserService builds a UserService on the shared repositories.
func NewUserService(repos *repository.Repositories) UserService {
	return &userService{repos: repos}
}

func (s *userService) Profile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.repos.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, ErrUserNotFound, "find user")
	}
	saved, err := s.repos.Users.SavedSpotIDs(ctx, userID)
	if err != nil {
		return nil, storeError(err, nil, "load saved spots")
	}
	user.SavedSpots = saved
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileInput) (*model.User, error) {
	user, err := s.repos.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, ErrUserNotFound, "find user")
	}

	fields := map[string]any{}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
		fields["name"] = user.Name
	}
	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
		fields["phone"] = user.Phone
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
		fields["bio"] = user.Bio
	}
	if err := validation.Struct(user); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return user, nil
	}

	if err := s.repos.Users.UpdateFields(ctx, userID, fields); err != nil {
		return nil, storeError(err, ErrUserNotFound, "update profile")
	}
	return user, nil
}

func (s *userService) UpdateAvatar(ctx context.Context, userID uuid.UUID, avatarURL string) (*model.User, error) {
	if avatarURL == "" {
		return nil, apperrors.BadRequest("Please upload an image")
	}
	if err := s.repos.Users.UpdateFields(ctx, userID, map[string]any{"avatar": avatarURL}); err != nil {
		return nil, storeError(err, ErrUserNotFound, "update avatar")
	}
	user, err := s.repos.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, ErrUserNotFound, "find user")
	}
	return user, nil
}

// ToggleSavedSpot adds or removes the reference and returns the resulting membership.
// The reference is stored as given; it does not have to name an existing spot.
func (s *userService) ToggleSavedSpot(ctx context.Context, userID uuid.UUID, spotID string) (bool, error) {
	spotID = strings.TrimSpace(spotID)
	if spotID == "" || len(spotID) > maxSpotRefLength {
		return false, apperrors.BadRequest("Invalid spot id")
	}
	saved, err := s.repos.Users.ToggleSavedSpot(ctx, userID, spotID)
	if err != nil {
		return false, storeError(err, nil, "toggle saved spot")
	}
	return saved, nil
}

// SavedSpots returns the saved spots that still exist and are active, in the order they were saved.
func (s *userService) SavedSpots(ctx context.Context, userID uuid.UUID) ([]model.Spot, error) {
	ids, err := s.repos.Users.SavedSpotIDs(ctx, userID)
	if err != nil {
		return nil, storeError(err, nil, "load saved spots")
	}
	spots, err := s.repos.Spots.FindByIDs(ctx, ids, true)
	if err != nil {
		return nil, storeError(err, nil, "load spots")
	}

	byID := make(map[string]model.Spot, len(spots))
	for _, spot := range spots {
		byID[spot.ID.String()] = spot
	}
	out := make([]model.Spot, 0, len(spots))
	for _, id := range ids {
		if spot, ok := byID[id]; ok {
			out = append(out, spot)
		}
	}
	return out, nil
}
