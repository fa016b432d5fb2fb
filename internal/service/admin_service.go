package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	apperrors "spotly/internal/errors"
	"spotly/internal/model"
	"spotly/internal/repository"
)

const (
	defaultUserPageLimit = 20
	analyticsListSize    = 10
)

// UserQuery is the admin user listing query string.
type UserQuery struct {
	Role   model.Role `query:"role"`
	Search string     `query:"search"`
	Page   int        `query:"page"`
	Limit  int        `query:"limit"`
}

// Overview holds platform wide totals.
type Overview struct {
	TotalUsers      int64 `json:"totalUsers"`
	TotalSpots      int64 `json:"totalSpots"`
	TotalReviews    int64 `json:"totalReviews"`
	TotalBusinesses int64 `json:"totalBusinesses"`
}

// RoleCount is one row of the users-by-role breakdown.
type RoleCount struct {
	Role  model.Role `json:"role"`
	Count int64      `json:"count"`
}

// PlatformAnalytics is the admin dashboard payload.
type PlatformAnalytics struct {
	Overview        Overview                   `json:"overview"`
	UsersByRole     []RoleCount                `json:"usersByRole"`
	SpotsByCategory []repository.CategoryCount `json:"spotsByCategory"`
	RecentUsers     []model.User               `json:"recentUsers"`
	TopRatedSpots   []model.Spot               `json:"topRatedSpots"`
}

// AdminService exposes user management and platform analytics.
type AdminService interface {
	ListUsers(ctx context.Context, q UserQuery) ([]model.User, model.Pagination, error)
	Analytics(ctx context.Context) (*PlatformAnalytics, error)
	ToggleUserActive(ctx context.Context, actor Actor, userID uuid.UUID) (*model.User, error)
}

type adminService struct {
	repos *repository.Repositories
}

// NewAdminService creates a new admin service.
func NewAdminService(repos *repository.Repositories) AdminService {
	return &adminService{repos: repos}
}

func (s *adminService) ListUsers(ctx context.Context, q UserQuery) ([]model.User, model.Pagination, error) {
	if q.Role != "" && !q.Role.Valid() {
		return nil, model.Pagination{}, apperrors.Validation([]apperrors.FieldError{{Field: "role", Message: "role must be one of [user, business_owner, admin, moderator]"}})
	}
	page := model.PageQuery{Page: q.Page, Limit: q.Limit}.Normalize(defaultUserPageLimit)

	users, total, err := s.repos.Users.List(ctx, repository.UserFilter{Role: q.Role, Search: strings.TrimSpace(q.Search)}, page)
	if err != nil {
		return nil, model.Pagination{}, storeError(err, nil, "list users")
	}
	if users == nil {
		users = []model.User{}
	}
	return users, model.NewPagination(page, total), nil
}

func (s *adminService) Analytics(ctx context.Context) (*PlatformAnalytics, error) {
	var (
		out PlatformAnalytics
		err error
	)

	if out.Overview.TotalUsers, err = s.repos.Users.Count(ctx); err != nil {
		return nil, storeError(err, nil, "count users")
	}
	if out.Overview.TotalSpots, err = s.repos.Spots.Count(ctx, repository.SpotFilter{}); err != nil {
		return nil, storeError(err, nil, "count spots")
	}
	if out.Overview.TotalReviews, err = s.repos.Reviews.Count(ctx); err != nil {
		return nil, storeError(err, nil, "count reviews")
	}
	if out.Overview.TotalBusinesses, err = s.repos.Businesses.Count(ctx); err != nil {
		return nil, storeError(err, nil, "count businesses")
	}

	byRole, err := s.repos.Users.CountByRole(ctx)
	if err != nil {
		return nil, storeError(err, nil, "count users by role")
	}
	out.UsersByRole = make([]RoleCount, 0, len(model.Roles))
	for _, role := range model.Roles {
		out.UsersByRole = append(out.UsersByRole, RoleCount{Role: role, Count: byRole[role]})
	}

	if out.SpotsByCategory, err = s.repos.Spots.CountActiveByCategory(ctx); err != nil {
		return nil, storeError(err, nil, "count spots by category")
	}
	if out.RecentUsers, err = s.repos.Users.Recent(ctx, analyticsListSize); err != nil {
		return nil, storeError(err, nil, "recent users")
	}
	if out.TopRatedSpots, err = s.repos.Spots.TopRated(ctx, analyticsListSize); err != nil {
		return nil, storeError(err, nil, "top rated spots")
	}
	return &out, nil
}

// ToggleUserActive flips the active flag. Admins cannot deactivate themselves.
func (s *adminService) ToggleUserActive(ctx context.Context, actor Actor, userID uuid.UUID) (*model.User, error) {
	if userID == actor.ID {
		return nil, apperrors.BadRequest("You cannot deactivate your own account")
	}

	user, err := s.repos.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, ErrUserNotFound, "find user")
	}

	user.IsActive = !user.IsActive
	if err := s.repos.Users.UpdateFields(ctx, userID, map[string]any{"is_active": user.IsActive}); err != nil {
		return nil, storeError(err, ErrUserNotFound, "toggle user")
	}
	return user, nil
}
