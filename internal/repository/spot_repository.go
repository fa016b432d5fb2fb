package repository

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"spotly/internal/model"
)

const (
	DefaultNearbyDistance = 10000.0
	MaxNearbyResults      = 20
)

// SpotFilter narrows spot listings. Set filters are AND-composed.
type SpotFilter struct {
	Category   model.Category
	PriceRange model.PriceRange
	MinRating  *float64
	City       string
	Search     string
	Status     model.ModerationStatus
	ActiveOnly bool
	OwnerID    *uuid.UUID
	Sort       string
}

var spotSortColumns = map[string]string{
	"createdAt":   "created_at",
	"rating":      "rating",
	"reviewCount": "review_count",
	"views":       "views",
	"name":        "name",
}

// CategoryCount is one row of the active-spots-by-category breakdown.
type CategoryCount struct {
	Category model.Category `json:"category"`
	Count    int64          `json:"count"`
}

// NearbySpot is a spot with its distance from the query point.
type NearbySpot struct {
	model.Spot
	Distance float64 `json:"distance"`
}

// SpotRepository defines spot persistence operations.
type SpotRepository interface {
	Create(ctx context.Context, spot *model.Spot) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Spot, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Spot, error)
	FindByIDs(ctx context.Context, ids []string, activeOnly bool) ([]model.Spot, error)
	List(ctx context.Context, filter SpotFilter, page model.PageQuery) ([]model.Spot, int64, error)
	Nearby(ctx context.Context, lng, lat, maxDistance float64) ([]NearbySpot, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
	UpdateAggregate(ctx context.Context, id uuid.UUID, rating float64, reviewCount int) error
	TopRated(ctx context.Context, n int) ([]model.Spot, error)
	Count(ctx context.Context, filter SpotFilter) (int64, error)
	CountActiveByCategory(ctx context.Context) ([]CategoryCount, error)
}

type spotRepository struct {
	db *gorm.DB
}

// NewSpotRepository creates a new spot repository.
func NewSpotRepository(db *gorm.DB) SpotRepository {
	return &spotRepository{db: db}
}

// withOwner preloads the owner's name, email and avatar.
func withOwner(db *gorm.DB) *gorm.DB {
	return db.Preload("Owner")
}

func (r *spotRepository) Create(ctx context.Context, spot *model.Spot) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(spot).Error
}

// UpdateFields writes only the given columns so concurrent aggregate updates are not overwritten.
func (r *spotRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&model.Spot{}).Where("id = ?", id).Updates(fields).Error
}

// Delete removes the spot and its business claims. Reviews are left in place.
func (r *spotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM business_spots WHERE spot_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Spot{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *spotRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Spot, error) {
	var spot model.Spot
	if err := withOwner(r.db.WithContext(ctx)).Where("id = ?", id).First(&spot).Error; err != nil {
		return nil, err
	}
	return &spot, nil
}

// FindByIDForUpdate finds a spot by ID with row-level lock for update.
func (r *spotRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Spot, error) {
	var spot model.Spot
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id = ?", id).First(&spot).Error; err != nil {
		return nil, err
	}
	return &spot, nil
}

func (r *spotRepository) FindByIDs(ctx context.Context, ids []string, activeOnly bool) ([]model.Spot, error) {
	spots := []model.Spot{}
	if len(ids) == 0 {
		return spots, nil
	}
	q := r.db.WithContext(ctx).Where("id IN ?", ids)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&spots).Error; err != nil {
		return nil, err
	}
	return spots, nil
}

func (r *spotRepository) filtered(ctx context.Context, f SpotFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Spot{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if f.OwnerID != nil {
		q = q.Where("owner_id = ?", *f.OwnerID)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.PriceRange != "" {
		q = q.Where("price_range = ?", f.PriceRange)
	}
	if f.MinRating != nil {
		q = q.Where("rating >= ?", *f.MinRating)
	}
	if f.City != "" {
		q = q.Where("LOWER(city) LIKE ? ESCAPE '!'", containsPattern(f.City))
	}
	if f.Search != "" {
		p := containsPattern(f.Search)
		q = q.Where("(LOWER(name) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!' OR LOWER(CAST(tags AS CHAR)) LIKE ? ESCAPE '!')", p, p, p)
	}
	return q
}

func (r *spotRepository) List(ctx context.Context, filter SpotFilter, page model.PageQuery) ([]model.Spot, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	spots := []model.Spot{}
	if err := withOwner(r.filtered(ctx, filter)).
		Clauses(orderBy(filter.Sort, spotSortColumns, "-createdAt")).
		Offset(page.Offset()).Limit(page.Limit).
		Find(&spots).Error; err != nil {
		return nil, 0, err
	}
	return spots, total, nil
}

// Nearby returns approved, active spots within maxDistance meters ordered by distance.
func (r *spotRepository) Nearby(ctx context.Context, lng, lat, maxDistance float64) ([]NearbySpot, error) {
	if maxDistance <= 0 {
		maxDistance = DefaultNearbyDistance
	}
	box := boundingBoxAround(lng, lat, maxDistance)

	var candidates []model.Spot
	if err := r.db.WithContext(ctx).
		Where("status = ? AND is_active = ?", model.StatusApproved, true).
		Where("latitude BETWEEN ? AND ?", box.minLat, box.maxLat).
		Where("longitude BETWEEN ? AND ?", box.minLng, box.maxLng).
		Find(&candidates).Error; err != nil {
		return nil, err
	}

	out := make([]NearbySpot, 0, len(candidates))
	for _, s := range candidates {
		d := haversineMeters(lng, lat, s.Location.Coordinates.Longitude, s.Location.Coordinates.Latitude)
		if d <= maxDistance {
			out = append(out, NearbySpot{Spot: s, Distance: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if len(out) > MaxNearbyResults {
		out = out[:MaxNearbyResults]
	}
	return out, nil
}

func (r *spotRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Spot{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

// UpdateAggregate writes the derived rating fields. Callers hold the row lock.
func (r *spotRepository) UpdateAggregate(ctx context.Context, id uuid.UUID, rating float64, reviewCount int) error {
	return r.db.WithContext(ctx).Model(&model.Spot{}).Where("id = ?", id).
		UpdateColumns(map[string]any{"rating": rating, "review_count": reviewCount}).Error
}

func (r *spotRepository) TopRated(ctx context.Context, n int) ([]model.Spot, error) {
	spots := []model.Spot{}
	if err := r.db.WithContext(ctx).
		Where("status = ? AND is_active = ?", model.StatusApproved, true).
		Order("rating DESC").Order("review_count DESC").Order("id").
		Limit(n).Find(&spots).Error; err != nil {
		return nil, err
	}
	return spots, nil
}

func (r *spotRepository) Count(ctx context.Context, filter SpotFilter) (int64, error) {
	var n int64
	err := r.filtered(ctx, filter).Count(&n).Error
	return n, err
}

func (r *spotRepository) CountActiveByCategory(ctx context.Context) ([]CategoryCount, error) {
	rows := []CategoryCount{}
	if err := r.db.WithContext(ctx).Model(&model.Spot{}).
		Select("category, COUNT(*) AS count").
		Where("is_active = ?", true).
		Group("category").Order("count DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
