package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"spotly/internal/db"
	"spotly/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := db.NewSQLite(fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8]))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func seedUser(t *testing.T, repos *Repositories, email string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{Name: "User " + email, Email: email, Role: role, IsActive: true}
	require.NoError(t, repos.Users.Create(t.Context(), u))
	return u
}

type spotOpt func(*model.Spot)

func seedSpot(t *testing.T, repos *Repositories, name string, opts ...spotOpt) *model.Spot {
	t.Helper()
	s := &model.Spot{
		Name:          name,
		Description:   "A lovely place called " + name,
		Category:      model.CategoryFoodCafes,
		Location:      model.Location{Address: "1 Main St", City: "Cairo", Coordinates: model.GeoPoint{Longitude: 31.2357, Latitude: 30.0444}},
		FeaturedImage: "/uploads/" + name + ".jpg",
		PriceRange:    model.PriceModerate,
		Status:        model.StatusApproved,
		IsActive:      true,
	}
	for _, opt := range opts {
		opt(s)
	}
	require.NoError(t, repos.Spots.Create(t.Context(), s))
	return s
}
