package service

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	apperrors "spotly/internal/errors"
	"spotly/internal/model"
	"spotly/internal/repository"
	"spotly/internal/validation"
)

const defaultSpotPageLimit = 12

// SpotQuery is the public listing query string.
type SpotQuery struct {
	Category   model.Category   `query:"category"`
	PriceRange model.PriceRange `query:"priceRange"`
	MinRating  float64          `query:"minRating"`
	City       string           `query:"city"`
	Search     string           `query:"search"`
	Sort       string           `query:"sort"`
	Page       int              `query:"page"`
	Limit      int              `query:"limit"`
}

// SpotInput is the body of a spot creation.
type SpotInput struct {
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Category      model.Category   `json:"category"`
	Subcategory   string           `json:"subcategory"`
	Location      model.Location   `json:"location"`
	Contact       model.Contact    `json:"contact"`
	Hours         model.Hours      `json:"hours"`
	PriceRange    model.PriceRange `json:"priceRange"`
	Tags          []string         `json:"tags"`
	Features      []string         `json:"features"`
	FeaturedImage string           `json:"featuredImage"`
	Images        []string         `json:"images"`
}

// SpotUpdate carries a partial spot edit. Nil fields are left unchanged and
// Images are appended to the gallery.
type SpotUpdate struct {
	Name          *string           `json:"name"`
	Description   *string           `json:"description"`
	Category      *model.Category   `json:"category"`
	Subcategory   *string           `json:"subcategory"`
	Location      *model.Location   `json:"location"`
	Contact       *model.Contact    `json:"contact"`
	Hours         *model.Hours      `json:"hours"`
	PriceRange    *model.PriceRange `json:"priceRange"`
	Tags          *[]string         `json:"tags"`
	Features      *[]string         `json:"features"`
	FeaturedImage *string           `json:"featuredImage"`
	Images        []string          `json:"images"`
	IsActive      *bool             `json:"isActive"`
}

// SpotService handles listing, discovery and management of spots.
type SpotService interface {
	List(ctx context.Context, q SpotQuery) ([]model.Spot, model.Pagination, error)
	Nearby(ctx context.Context, lng, lat, maxDistance float64) ([]repository.NearbySpot, error)
	Get(ctx context.Context, actor *Actor, id uuid.UUID) (*model.Spot, error)
	Create(ctx context.Context, actor Actor, in SpotInput) (*model.Spot, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, in SpotUpdate) (*model.Spot, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ModerationStatus) (*model.Spot, error)
	ListPending(ctx context.Context, page model.PageQuery) ([]model.Spot, model.Pagination, error)
}

type spotService struct {
	repos *repository.Repositories
}

// NewSpotService creates a new spot service.
func NewSpotService(repos *repository.Repositories) SpotService {
	return &spotService{repos: repos}
}

// List returns approved, active spots matching every set filter.
func (s *spotService) List(ctx context.Context, q SpotQuery) ([]model.Spot, model.Pagination, error) {
	page := model.PageQuery{Page: q.Page, Limit: q.Limit}.Normalize(defaultSpotPageLimit)
	filter := repository.SpotFilter{
		Category:   q.Category,
		PriceRange: q.PriceRange,
		City:       strings.TrimSpace(q.City),
		Search:     strings.TrimSpace(q.Search),
		Status:     model.StatusApproved,
		ActiveOnly: true,
		Sort:       q.Sort,
	}
	if q.MinRating > 0 {
		minRating := q.MinRating
		filter.MinRating = &minRating
	}

	spots, total, err := s.repos.Spots.List(ctx, filter, page)
	if err != nil {
		return nil, model.Pagination{}, storeError(err, nil, "list spots")
	}
	return spots, model.NewPagination(page, total), nil
}

func (s *spotService) Nearby(ctx context.Context, lng, lat, maxDistance float64) ([]repository.NearbySpot, error) {
	var fields []apperrors.FieldError
	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		fields = append(fields, apperrors.FieldError{Field: "longitude", Message: "longitude must be a valid longitude"})
	}
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		fields = append(fields, apperrors.FieldError{Field: "latitude", Message: "latitude must be a valid latitude"})
	}
	if math.IsNaN(maxDistance) || maxDistance < 0 {
		fields = append(fields, apperrors.FieldError{Field: "maxDistance", Message: "maxDistance must be at least 0"})
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation(fields)
	}

	spots, err := s.repos.Spots.Nearby(ctx, lng, lat, maxDistance)
	if err != nil {
		return nil, storeError(err, nil, "find nearby spots")
	}
	return spots, nil
}

// Get returns a spot and counts the view. Spots that are not approved and active
// are only visible to their owner and to admins.
func (s *spotService) Get(ctx context.Context, actor *Actor, id uuid.UUID) (*model.Spot, error) {
	spot, err := s.repos.Spots.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, ErrSpotNotFound, "find spot")
	}

	if spot.Status != model.StatusApproved || !spot.IsActive {
		if actor == nil || (!actor.IsAdmin() && !spot.OwnedBy(actor.ID)) {
			return nil, ErrSpotNotFound
		}
	}

	if err := s.repos.Spots.IncrementViews(ctx, id); err != nil {
		return nil, storeError(err, ErrSpotNotFound, "increment views")
	}
	spot.Views++
	return spot, nil
}

// Create stores a new spot owned by the actor. Admin spots are approved immediately.
func (s *spotService) Create(ctx context.Context, actor Actor, in SpotInput) (*model.Spot, error) {
	ownerID := actor.ID
	spot := &model.Spot{
		Name:          strings.TrimSpace(in.Name),
		Description:   strings.TrimSpace(in.Description),
		Category:      in.Category,
		Subcategory:   in.Subcategory,
		Location:      in.Location,
		Contact:       in.Contact,
		Hours:         in.Hours,
		PriceRange:    in.PriceRange,
		Tags:          datatypes.JSONSlice[string](nonNil(in.Tags)),
		Features:      datatypes.JSONSlice[string](nonNil(in.Features)),
		FeaturedImage: in.FeaturedImage,
		Images:        datatypes.JSONSlice[string](nonNil(in.Images)),
		OwnerID:       &ownerID,
		IsActive:      true,
		Status:        model.StatusPending,
	}
	if spot.PriceRange == "" {
		spot.PriceRange = model.PriceModerate
	}
	if actor.IsAdmin() {
		spot.Status = model.StatusApproved
		spot.IsVerified = true
	}

	if err := validation.Struct(spot); err != nil {
		return nil, err
	}
	if err := s.repos.Spots.Create(ctx, spot); err != nil {
		return nil, storeError(err, nil, "create spot")
	}
	return spot, nil
}

// Update applies a partial edit by the owner or an admin. Derived and moderation
// fields are never written here.
func (s *spotService) Update(ctx context.Context, actor Actor, id uuid.UUID, in SpotUpdate) (*model.Spot, error) {
	spot, err := s.repos.Spots.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, ErrSpotNotFound, "find spot")
	}

	// Check ownership
	if !spot.OwnedBy(actor.ID) && !actor.IsAdmin() {
		return nil, apperrors.Forbidden("Not authorized to update this spot")
	}

	fields := applySpotUpdate(spot, in)
	if err := validation.Struct(spot); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return spot, nil
	}

	if err := s.repos.Spots.UpdateFields(ctx, id, fields); err != nil {
		return nil, storeError(err, ErrSpotNotFound, "update spot")
	}
	updated, err := s.repos.Spots.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, ErrSpotNotFound, "find spot")
	}
	return updated, nil
}

// applySpotUpdate mutates spot in place and returns the changed columns.
func applySpotUpdate(spot *model.Spot, in SpotUpdate) map[string]any {
	fields := map[string]any{}
	if in.Name != nil {
		spot.Name = strings.TrimSpace(*in.Name)
		fields["name"] = spot.Name
	}
	if in.Description != nil {
		spot.Description = strings.TrimSpace(*in.Description)
		fields["description"] = spot.Description
	}
	if in.Category != nil {
		spot.Category = *in.Category
		fields["category"] = spot.Category
	}
	if in.Subcategory != nil {
		spot.Subcategory = *in.Subcategory
		fields["subcategory"] = spot.Subcategory
	}
	if in.Location != nil {
		spot.Location = *in.Location
		fields["address"] = spot.Location.Address
		fields["city"] = spot.Location.City
		fields["longitude"] = spot.Location.Coordinates.Longitude
		fields["latitude"] = spot.Location.Coordinates.Latitude
	}
	if in.Contact != nil {
		spot.Contact = *in.Contact
		fields["contact_phone"] = spot.Contact.Phone
		fields["contact_website"] = spot.Contact.Website
		fields["contact_email"] = spot.Contact.Email
	}
	if in.Hours != nil {
		h := *in.Hours
		spot.Hours = h
		fields["hours_monday"] = h.Monday
		fields["hours_tuesday"] = h.Tuesday
		fields["hours_wednesday"] = h.Wednesday
		fields["hours_thursday"] = h.Thursday
		fields["hours_friday"] = h.Friday
		fields["hours_saturday"] = h.Saturday
		fields["hours_sunday"] = h.Sunday
	}
	if in.PriceRange != nil {
		spot.PriceRange = *in.PriceRange
		fields["price_range"] = spot.PriceRange
	}
	if in.Tags != nil {
		spot.Tags = datatypes.JSONSlice[string](nonNil(*in.Tags))
		fields["tags"] = spot.Tags
	}
	if in.Features != nil {
		spot.Features = datatypes.JSONSlice[string](nonNil(*in.Features))
		fields["features"] = spot.Features
	}
	if in.FeaturedImage != nil {
		spot.FeaturedImage = *in.FeaturedImage
		fields["featured_image"] = spot.FeaturedImage
	}
	if len(in.Images) > 0 {
		spot.Images = append(append(datatypes.JSONSlice[string]{}, spot.Images...), in.Images...)
		fields["images"] = spot.Images
	}
	if in.IsActive != nil {
		spot.IsActive = *in.IsActive
		fields["is_active"] = spot.IsActive
	}
	return fields
}

func (s *spotService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repos.Spots.Delete(ctx, id); err != nil {
		return storeError(err, ErrSpotNotFound, "delete spot")
	}
	return nil
}

// UpdateStatus approves or rejects a spot. Approval also marks it verified.
func (s *spotService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ModerationStatus) (*model.Spot, error) {
	if status != model.StatusApproved && status != model.StatusRejected {
		return nil, apperrors.Validation([]apperrors.FieldError{{Field: "status", Message: "status must be one of [approved, rejected]"}})
	}
	if _, err := s.repos.Spots.FindByID(ctx, id); err != nil {
		return nil, storeError(err, ErrSpotNotFound, "find spot")
	}

	fields := map[string]any{"status": status, "is_verified": status == model.StatusApproved}
	if err := s.repos.Spots.UpdateFields(ctx, id, fields); err != nil {
		return nil, storeError(err, ErrSpotNotFound, "update spot status")
	}
	spot, err := s.repos.Spots.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, ErrSpotNotFound, "find spot")
	}
	return spot, nil
}

func (s *spotService) ListPending(ctx context.Context, page model.PageQuery) ([]model.Spot, model.Pagination, error) {
	page = page.Normalize(model.MaxPageLimit)
	spots, total, err := s.repos.Spots.List(ctx, repository.SpotFilter{Status: model.StatusPending, Sort: "-createdAt"}, page)
	if err != nil {
		return nil, model.Pagination{}, storeError(err, nil, "list pending spots")
	}
	return spots, model.NewPagination(page, total), nil
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
