package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repositories groups every repository bound to the same connection or transaction.
type Repositories struct {
	db         *gorm.DB
	Users      UserRepository
	Spots      SpotRepository
	Reviews    ReviewRepository
	Businesses BusinessRepository
}

// NewRepositories builds GORM-backed repositories sharing db.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:         db,
		Users:      NewUserRepository(db),
		Spots:      NewSpotRepository(db),
		Reviews:    NewReviewRepository(db),
		Businesses: NewBusinessRepository(db),
	}
}

// WithTransaction executes fn with repositories bound to one database transaction.
// Returning an error from fn rolls every write back.
func (r *Repositories) WithTransaction(ctx context.Context, fn func(ctx context.Context, repos *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewRepositories(tx))
	})
}

// Ping checks the underlying connection.
func (r *Repositories) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern returns a lowercase LIKE pattern matching s anywhere. Use with ESCAPE '!'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}

// orderBy turns "field" or "-field" into an ORDER BY clause using the allowed column map.
// Unknown fields fall back to def.
func orderBy(sort string, allowed map[string]string, def string) clause.OrderBy {
	if sort == "" {
		sort = def
	}
	desc := strings.HasPrefix(sort, "-")
	col, ok := allowed[strings.TrimPrefix(sort, "-")]
	if !ok {
		desc = strings.HasPrefix(def, "-")
		col = allowed[strings.TrimPrefix(def, "-")]
	}
	return clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: col}, Desc: desc},
		{Column: clause.Column{Name: "id"}},
	}}
}
