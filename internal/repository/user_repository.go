package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"spotly/internal/model"
)

// UserFilter narrows admin user listings.
type UserFilter struct {
	Role   model.Role
	Search string
}

// UserRepository defines persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByOAuthSubject(ctx context.Context, subject string) (*model.User, error)
	List(ctx context.Context, filter UserFilter, page model.PageQuery) ([]model.User, int64, error)
	Recent(ctx context.Context, n int) ([]model.User, error)
	Count(ctx context.Context) (int64, error)
	CountByRole(ctx context.Context) (map[model.Role]int64, error)

	ToggleSavedSpot(ctx context.Context, userID uuid.UUID, spotID string) (bool, error)
	SavedSpotIDs(ctx context.Context, userID uuid.UUID) ([]string, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", model.NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByOAuthSubject(ctx context.Context, subject string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("oauth_subject = ?", subject).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter, page model.PageQuery) ([]model.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.User{})
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.Search != "" {
		p := containsPattern(filter.Search)
		q = q.Where("(LOWER(name) LIKE ? ESCAPE '!' OR LOWER(email) LIKE ? ESCAPE '!')", p, p)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	if err := q.Order("created_at DESC").Order("id").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) Recent(ctx context.Context, n int) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(n).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Count(&n).Error
	return n, err
}

func (r *userRepository) CountByRole(ctx context.Context) (map[model.Role]int64, error) {
	var rows []struct {
		Role  model.Role
		Count int64
	}
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Select("role, COUNT(*) AS count").Group("role").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[model.Role]int64, len(rows))
	for _, row := range rows {
		out[row.Role] = row.Count
	}
	return out, nil
}

// ToggleSavedSpot removes the entry if present, otherwise adds it, and reports membership afterwards.
// The spot id is not checked against the spots table.
func (r *userRepository) ToggleSavedSpot(ctx context.Context, userID uuid.UUID, spotID string) (bool, error) {
	saved := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND spot_id = ?", userID, spotID).Delete(&model.UserSavedSpot{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		saved = true
		return tx.Create(&model.UserSavedSpot{UserID: userID, SpotID: spotID}).Error
	})
	return saved, err
}

func (r *userRepository) SavedSpotIDs(ctx context.Context, userID uuid.UUID) ([]string, error) {
	ids := []string{}
	if err := r.db.WithContext(ctx).Model(&model.UserSavedSpot{}).
		Where("user_id = ?", userID).Order("created_at").
		Pluck("spot_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
