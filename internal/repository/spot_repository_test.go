package repository

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"spotly/internal/model"
)

func names(spots []model.Spot) []string {
	out := make([]string, len(spots))
	for i, s := range spots {
		out[i] = s.Name
	}
	return out
}

func TestSpotRepository_ListFilters(t *testing.T) {
	repos := NewRepositories(newTestDB(t))
	ctx := t.Context()

	seedSpot(t, repos, "Bean There", func(s *model.Spot) {
		s.Tags = datatypes.JSONSlice[string]{"coffee", "quiet"}
		s.Location.City = "New Cairo"
	})
	seedSpot(t, repos, "Glam Threads", func(s *model.Spot) {
		s.Category = model.CategoryFashion
		s.PriceRange = model.PriceLuxury
		s.Location.City = "Alexandria"
	})
	seedSpot(t, repos, "Hidden Draft", func(s *model.Spot) { s.Status = model.StatusPending })
	seedSpot(t, repos, "Closed Cafe", func(s *model.Spot) { s.IsActive = false })

	public := SpotFilter{Status: model.StatusApproved, ActiveOnly: true}
	page := model.PageQuery{Page: 1, Limit: 10}

	tests := []struct {
		name   string
		filter func(f SpotFilter) SpotFilter
		want   []string
	}{
		{"all public", func(f SpotFilter) SpotFilter { f.Sort = "name"; return f }, []string{"Bean There", "Glam Threads"}},
		{"category", func(f SpotFilter) SpotFilter { f.Category = model.CategoryFashion; return f }, []string{"Glam Threads"}},
		{"price", func(f SpotFilter) SpotFilter { f.PriceRange = model.PriceLuxury; return f }, []string{"Glam Threads"}},
		{"city partial case-insensitive", func(f SpotFilter) SpotFilter { f.City = "cAIRO"; return f }, []string{"Bean There"}},
		{"search tags", func(f SpotFilter) SpotFilter { f.Search = "COFFEE"; return f }, []string{"Bean There"}},
		{"search name", func(f SpotFilter) SpotFilter { f.Search = "threads"; return f }, []string{"Glam Threads"}},
		{"search wildcard literal", func(f SpotFilter) SpotFilter { f.Search = "%"; return f }, []string{}},
		{"and composed", func(f SpotFilter) SpotFilter {
			f.Category = model.CategoryFashion
			f.Search = "coffee"
			return f
		}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spots, total, err := repos.Spots.List(ctx, tt.filter(public), page)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(spots))
			assert.Equal(t, int64(len(tt.want)), total)
		})
	}
}

func TestSpotRepository_ListPaginationAndSort(t *testing.T) {
	repos := NewRepositories(newTestDB(t))
	ctx := t.Context()
	for i, name := range []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo"} {
		s := seedSpot(t, repos, name)
		require.NoError(t, repos.Spots.UpdateAggregate(ctx, s.ID, float64(i), i))
	}

	spots, total, err := repos.Spots.List(ctx, SpotFilter{Sort: "-rating"}, model.PageQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Equal(t, []string{"Charlie", "Bravo"}, names(spots))

	spots, _, err = repos.Spots.List(ctx, SpotFilter{Sort: "bogus"}, model.PageQuery{Page: 3, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, spots, 1)

	spots, total, err = repos.Spots.List(ctx, SpotFilter{}, model.PageQuery{Page: 100000000000000000, Limit: 100}.Normalize(12))
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Empty(t, spots)

	minRating := 3.0
	n, err := repos.Spots.Count(ctx, SpotFilter{MinRating: &minRating})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestSpotRepository_Nearby(t *testing.T) {
	repos := NewRepositories(newTestDB(t))
	ctx := t.Context()

	// Tahrir Square as origin.
	seedSpot(t, repos, "Origin", func(s *model.Spot) {
		s.Location.Coordinates = model.GeoPoint{Longitude: 31.2357, Latitude: 30.0444}
	})
	seedSpot(t, repos, "Zamalek", func(s *model.Spot) {
		s.Location.Coordinates = model.GeoPoint{Longitude: 31.2243, Latitude: 30.0626}
	})
	seedSpot(t, repos, "Giza Pyramids", func(s *model.Spot) {
		s.Location.Coordinates = model.GeoPoint{Longitude: 31.1342, Latitude: 29.9792}
	})
	seedSpot(t, repos, "Pending Nearby", func(s *model.Spot) {
		s.Status = model.StatusPending
	})

	got, err := repos.Spots.Nearby(ctx, 31.2357, 30.0444, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Origin", got[0].Name)
	assert.Equal(t, "Zamalek", got[1].Name)
	assert.InDelta(t, 2300, got[1].Distance, 300)

	got, err = repos.Spots.Nearby(ctx, 31.2357, 30.0444, 20000)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, "Giza Pyramids", got[2].Name)
}

func TestSpotRepository_NearbyIncludesSpotsAtRadiusEdge(t *testing.T) {
	repos := NewRepositories(newTestDB(t))

	// 0.08988 degrees due north is about 9994 m.
	seedSpot(t, repos, "Edge North", func(s *model.Spot) {
		s.Location.Coordinates = model.GeoPoint{Longitude: 31.2357, Latitude: 30.0444 + 0.08988}
	})
	seedSpot(t, repos, "Just Outside", func(s *model.Spot) {
		s.Location.Coordinates = model.GeoPoint{Longitude: 31.2357, Latitude: 30.0444 + 0.0901}
	})

	got, err := repos.Spots.Nearby(t.Context(), 31.2357, 30.0444, 10000)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Edge North", got[0].Name)
	assert.Less(t, got[0].Distance, 10000.0)
}

func TestSpotRepository_NearbyCapsResults(t *testing.T) {
	repos := NewRepositories(newTestDB(t))
	for i := 0; i < MaxNearbyResults+5; i++ {
		seedSpot(t, repos, "Spot "+string(rune('A'+i)))
	}

	got, err := repos.Spots.Nearby(t.Context(), 31.2357, 30.0444, 1000)
	require.NoError(t, err)
	assert.Len(t, got, MaxNearbyResults)
}

func TestSpotRepository_IncrementViewsAndDelete(t *testing.T) {
	repos := NewRepositories(newTestDB(t))
	ctx := t.Context()
	s := seedSpot(t, repos, "Counter")

	require.NoError(t, repos.Spots.IncrementViews(ctx, s.ID))
	require.NoError(t, repos.Spots.IncrementViews(ctx, s.ID))

	found, err := repos.Spots.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), found.Views)

	require.NoError(t, repos.Spots.Delete(ctx, s.ID))
	_, err = repos.Spots.FindByID(ctx, s.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repos.Spots.Delete(ctx, s.ID), gorm.ErrRecordNotFound)
}

func TestSpotRepository_FindByIDPreloadsOwner(t *testing.T) {
	repos := NewRepositories(newTestDB(t))
	owner := seedUser(t, repos, "owner@x.com", model.RoleBusinessOwner)
	s := seedSpot(t, repos, "Owned", func(s *model.Spot) { s.OwnerID = &owner.ID })

	found, err := repos.Spots.FindByID(t.Context(), s.ID)
	require.NoError(t, err)
	require.NotNil(t, found.Owner)
	assert.Equal(t, "owner@x.com", found.Owner.Email)
	assert.True(t, found.OwnedBy(owner.ID))

	raw, err := json.Marshal(found)
	require.NoError(t, err)
	var body struct {
		Owner map[string]any `json:"owner"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, map[string]any{
		"id":     owner.ID.String(),
		"name":   owner.Name,
		"email":  "owner@x.com",
		"avatar": "",
	}, body.Owner)
}

func TestSpotRepository_CountActiveByCategory(t *testing.T) {
	repos := NewRepositories(newTestDB(t))
	seedSpot(t, repos, "A")
	seedSpot(t, repos, "B")
	seedSpot(t, repos, "C", func(s *model.Spot) { s.Category = model.CategoryAutomotive })
	seedSpot(t, repos, "D", func(s *model.Spot) { s.IsActive = false })

	rows, err := repos.Spots.CountActiveByCategory(t.Context())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, CategoryCount{Category: model.CategoryFoodCafes, Count: 2}, rows[0])
}
