package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"spotly/internal/model"
)

func TestUserRepository_EmailIsUniqueAndCaseInsensitive(t *testing.T) {
	repos := NewRepositories(newTestDB(t))
	ctx := t.Context()

	seedUser(t, repos, "Alice@Example.com", model.RoleUser)

	found, err := repos.Users.FindByEmail(ctx, "  ALICE@example.COM")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", found.Email)

	dup := &model.User{Name: "Other", Email: "alice@EXAMPLE.com", Role: model.RoleUser, IsActive: true}
	err = repos.Users.Create(ctx, dup)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestUserRepository_ToggleSavedSpot(t *testing.T) {
	repos := NewRepositories(newTestDB(t))
	ctx := t.Context()
	u := seedUser(t, repos, "a@x.com", model.RoleUser)
	spotID := uuid.NewString()

	saved, err := repos.Users.ToggleSavedSpot(ctx, u.ID, spotID)
	require.NoError(t, err)
	assert.True(t, saved)

	ids, err := repos.Users.SavedSpotIDs(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{spotID}, ids)

	saved, err = repos.Users.ToggleSavedSpot(ctx, u.ID, spotID)
	require.NoError(t, err)
	assert.False(t, saved)

	ids, err = repos.Users.SavedSpotIDs(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestUserRepository_ToggleSavedSpot_OpaqueID(t *testing.T) {
	repos := NewRepositories(newTestDB(t))
	u := seedUser(t, repos, "a@x.com", model.RoleUser)

	saved, err := repos.Users.ToggleSavedSpot(t.Context(), u.ID, "does-not-exist")
	require.NoError(t, err)
	assert.True(t, saved)
}

func TestUserRepository_ListAndCounts(t *testing.T) {
	repos := NewRepositories(newTestDB(t))
	ctx := t.Context()
	seedUser(t, repos, "admin@x.com", model.RoleAdmin)
	seedUser(t, repos, "owner@x.com", model.RoleBusinessOwner)
	seedUser(t, repos, "u1@x.com", model.RoleUser)
	seedUser(t, repos, "u2@x.com", model.RoleUser)

	users, total, err := repos.Users.List(ctx, UserFilter{Role: model.RoleUser}, model.PageQuery{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, users, 1)

	users, total, err = repos.Users.List(ctx, UserFilter{Search: "OWNER"}, model.PageQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "owner@x.com", users[0].Email)

	byRole, err := repos.Users.CountByRole(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), byRole[model.RoleUser])
	assert.Equal(t, int64(1), byRole[model.RoleAdmin])

	n, err := repos.Users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestUserRepository_FindByOAuthSubject(t *testing.T) {
	repos := NewRepositories(newTestDB(t))
	ctx := t.Context()
	sub := "google|123"
	u := &model.User{Name: "Oauth", Email: "o@x.com", Role: model.RoleUser, IsActive: true, OAuthSubject: &sub}
	require.NoError(t, repos.Users.Create(ctx, u))

	found, err := repos.Users.FindByOAuthSubject(ctx, sub)
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = repos.Users.FindByOAuthSubject(ctx, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
