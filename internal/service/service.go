package service

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "spotly/internal/errors"
	"spotly/internal/model"
)

var (
	// ErrInvalidCredentials is returned for an unknown email and for a wrong password alike.
	ErrInvalidCredentials = apperrors.InvalidCredential("Invalid email or password")
	// ErrUserAlreadyExists is returned when trying to register an existing email.
	ErrUserAlreadyExists = apperrors.Conflict("User with this email already exists")
	// ErrInvalidRefreshToken is returned when refresh token is invalid or expired.
	ErrInvalidRefreshToken = apperrors.InvalidCredential("Invalid or expired refresh token")
	// ErrAccountDisabled is returned for deactivated users on login and on every authenticated request.
	ErrAccountDisabled = apperrors.AccountDisabled("Your account has been deactivated")
	// ErrTokenUserNotFound is returned when a valid token names a user that no longer exists.
	ErrTokenUserNotFound = apperrors.InvalidCredential("User not found. Token is invalid.")

	ErrUserNotFound       = apperrors.NotFound("User not found")
	ErrSpotNotFound       = apperrors.NotFound("Spot not found")
	ErrReviewNotFound     = apperrors.NotFound("Review not found")
	ErrBusinessNotFound   = apperrors.NotFound("Business profile not found")
	ErrAlreadyReviewed    = apperrors.Conflict("You have already reviewed this spot")
	ErrSpotAlreadyClaimed = apperrors.Conflict("This spot is already claimed")

	ErrOAuthNotConfigured = apperrors.Unavailable("OAuth login is not configured")
	ErrInvalidOAuthState  = apperrors.BadRequest("Invalid or expired OAuth state")
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   uuid.UUID
	Role model.Role
}

// IsAdmin reports whether the actor has the admin role.
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == model.RoleAdmin
}

// storeError maps a repository error onto the application taxonomy.
// notFound is returned for missing records; typed errors pass through untouched.
func storeError(err error, notFound *apperrors.AppError, op string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if notFound != nil {
			return notFound
		}
		return apperrors.NotFound("Resource not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.Conflict("Duplicate value")
	}
	return apperrors.Internal(op, err)
}
