package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"spotly/internal/db"
	"spotly/internal/model"
	"spotly/internal/repository"
)

func newTestRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := db.NewSQLite(fmt.Sprintf("file:svc_%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8]))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return repository.NewRepositories(gdb)
}

func seedUser(t *testing.T, repos *repository.Repositories, email string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{Name: "User " + email, Email: email, Role: role, IsActive: true}
	require.NoError(t, repos.Users.Create(t.Context(), u))
	return u
}

func actorOf(u *model.User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

func seedSpot(t *testing.T, repos *repository.Repositories, name string, opts ...func(*model.Spot)) *model.Spot {
	t.Helper()
	s := &model.Spot{
		Name:          name,
		Description:   "A lovely place called " + name,
		Category:      model.CategoryFoodCafes,
		Location:      model.Location{Address: "1 Main St", City: "Cairo", Coordinates: model.GeoPoint{Longitude: 31.2357, Latitude: 30.0444}},
		FeaturedImage: "/uploads/spots/" + name + ".jpg",
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

func reloadSpot(t *testing.T, repos *repository.Repositories, id uuid.UUID) *model.Spot {
	t.Helper()
	s, err := repos.Spots.FindByID(t.Context(), id)
	require.NoError(t, err)
	return s
}
