package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "spotly/internal/errors"
	"spotly/internal/model"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }

func TestAverageRating(t *testing.T) {
	tests := []struct {
		sum, count int64
		want       float64
	}{
		{0, 0, 0},
		{4, 1, 4.0},
		{8, 2, 4.0},
		{13, 4, 3.3}, // 3.25 rounds half up
		{7, 2, 3.5},
		{10, 3, 3.3},
		{11, 3, 3.7},
		{29, 6, 4.8},
		{5, 5, 1.0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, averageRating(tt.sum, tt.count), "%d/%d", tt.sum, tt.count)
	}
}

func TestReviewService_CreateUpdatesAggregate(t *testing.T) {
	repos := newTestRepos(t)
	svc := NewReviewService(repos)
	ctx := t.Context()

	a := seedUser(t, repos, "a@x.com", model.RoleUser)
	admin := seedUser(t, repos, "admin@x.com", model.RoleAdmin)
	spot, err := NewSpotService(repos).Create(ctx, actorOf(admin), SpotInput{
		Name:          "Spot X",
		Description:   "Admin created and auto approved",
		Category:      model.CategoryFoodCafes,
		Location:      model.Location{Address: "1 Nile St", City: "Cairo"},
		FeaturedImage: "/uploads/spots/x.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, spot.Status)

	review, err := svc.Create(ctx, actorOf(a), ReviewInput{SpotID: spot.ID.String(), Rating: 4, Text: "Lovely place, great staff"})
	require.NoError(t, err)
	require.NotNil(t, review.User)
	assert.Equal(t, a.Name, review.User.Name)
	assert.Equal(t, model.StatusApproved, review.Status)

	got := reloadSpot(t, repos, spot.ID)
	assert.Equal(t, 4.0, got.Rating)
	assert.Equal(t, 1, got.ReviewCount)

	// second review by the same user
	_, err = svc.Create(ctx, actorOf(a), ReviewInput{SpotID: spot.ID.String(), Rating: 1, Text: "Changed my mind entirely"})
	assert.Equal(t, ErrAlreadyReviewed, err)
	assert.Equal(t, 400, apperrors.StatusCode(apperrors.KindOf(err)))

	got = reloadSpot(t, repos, spot.ID)
	assert.Equal(t, 4.0, got.Rating)
	assert.Equal(t, 1, got.ReviewCount)

	require.NoError(t, svc.Delete(ctx, actorOf(a), review.ID))
	got = reloadSpot(t, repos, spot.ID)
	assert.Equal(t, 0.0, got.Rating)
	assert.Equal(t, 0, got.ReviewCount)
}

func TestReviewService_MeanOfApproved(t *testing.T) {
	repos := newTestRepos(t)
	svc := NewReviewService(repos)
	ctx := t.Context()
	spot := seedSpot(t, repos, "Y")

	r3, err := svc.Create(ctx, actorOf(seedUser(t, repos, "a@x.com", model.RoleUser)), ReviewInput{SpotID: spot.ID.String(), Rating: 3, Text: "It was fine overall"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, actorOf(seedUser(t, repos, "b@x.com", model.RoleUser)), ReviewInput{SpotID: spot.ID.String(), Rating: 5, Text: "Best place in town"})
	require.NoError(t, err)

	got := reloadSpot(t, repos, spot.ID)
	assert.Equal(t, 4.0, got.Rating)
	assert.Equal(t, 2, got.ReviewCount)

	// moderation removes the 3 from the approved set
	_, err = svc.UpdateStatus(ctx, r3.ID, model.StatusRejected)
	require.NoError(t, err)
	got = reloadSpot(t, repos, spot.ID)
	assert.Equal(t, 5.0, got.Rating)
	assert.Equal(t, 1, got.ReviewCount)

	// and approving it again restores it
	_, err = svc.UpdateStatus(ctx, r3.ID, model.StatusApproved)
	require.NoError(t, err)
	got = reloadSpot(t, repos, spot.ID)
	assert.Equal(t, 4.0, got.Rating)
	assert.Equal(t, 2, got.ReviewCount)

	_, err = svc.UpdateStatus(ctx, r3.ID, model.ModerationStatus("bogus"))
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestReviewService_Update(t *testing.T) {
	repos := newTestRepos(t)
	svc := NewReviewService(repos)
	ctx := t.Context()
	spot := seedSpot(t, repos, "U")
	author := seedUser(t, repos, "a@x.com", model.RoleUser)
	other := seedUser(t, repos, "b@x.com", model.RoleUser)
	admin := seedUser(t, repos, "c@x.com", model.RoleAdmin)

	review, err := svc.Create(ctx, actorOf(author), ReviewInput{SpotID: spot.ID.String(), Rating: 2, Text: "Not great, a bit noisy"})
	require.NoError(t, err)

	tests := []struct {
		name      string
		actor     Actor
		input     ReviewUpdate
		wantKind  apperrors.Kind
		wantScore float64
	}{
		{"other user", actorOf(other), ReviewUpdate{Rating: intPtr(5)}, apperrors.KindForbidden, 2},
		{"admin cannot edit", actorOf(admin), ReviewUpdate{Rating: intPtr(5)}, apperrors.KindForbidden, 2},
		{"rating out of range", actorOf(author), ReviewUpdate{Rating: intPtr(6)}, apperrors.KindValidation, 2},
		{"text too short", actorOf(author), ReviewUpdate{Text: strPtr("meh")}, apperrors.KindValidation, 2},
		{"author edits", actorOf(author), ReviewUpdate{Rating: intPtr(5), Text: strPtr("Went back and loved it")}, "", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, err := svc.Update(ctx, tt.actor, review.ID, tt.input)
			if tt.wantKind != "" {
				assert.True(t, apperrors.Is(err, tt.wantKind), "got %v", err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, 5, updated.Rating)
				assert.Equal(t, "Went back and loved it", updated.Text)
			}
			assert.Equal(t, tt.wantScore, reloadSpot(t, repos, spot.ID).Rating)
		})
	}
}

func TestReviewService_CreateValidation(t *testing.T) {
	repos := newTestRepos(t)
	svc := NewReviewService(repos)
	u := actorOf(seedUser(t, repos, "a@x.com", model.RoleUser))

	_, err := svc.Create(t.Context(), u, ReviewInput{SpotID: "not-a-uuid", Rating: 3, Text: "Valid text here"})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	_, err = svc.Create(t.Context(), u, ReviewInput{SpotID: uuid.NewString(), Rating: 3, Text: "Valid text here"})
	assert.Equal(t, ErrSpotNotFound, err)

	spot := seedSpot(t, repos, "V")
	_, err = svc.Create(t.Context(), u, ReviewInput{SpotID: spot.ID.String(), Rating: 0, Text: "short", Images: []string{"1", "2", "3", "4", "5", "6"}})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	fields := map[string]bool{}
	for _, f := range appErr.Fields {
		fields[f.Field] = true
	}
	assert.True(t, fields["rating"])
	assert.True(t, fields["text"])
	assert.True(t, fields["images"])
}

func TestReviewService_DeletePermissions(t *testing.T) {
	repos := newTestRepos(t)
	svc := NewReviewService(repos)
	ctx := t.Context()
	spot := seedSpot(t, repos, "D")
	author := seedUser(t, repos, "a@x.com", model.RoleUser)
	other := seedUser(t, repos, "b@x.com", model.RoleUser)
	admin := seedUser(t, repos, "c@x.com", model.RoleAdmin)

	review, err := svc.Create(ctx, actorOf(author), ReviewInput{SpotID: spot.ID.String(), Rating: 5, Text: "Absolutely wonderful"})
	require.NoError(t, err)

	err = svc.Delete(ctx, actorOf(other), review.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))

	require.NoError(t, svc.Delete(ctx, actorOf(admin), review.ID))
	assert.Equal(t, ErrReviewNotFound, svc.Delete(ctx, actorOf(admin), review.ID))
	assert.Equal(t, 0, reloadSpot(t, repos, spot.ID).ReviewCount)
}

func TestReviewService_ReviewOfDeletedSpotCanStillBeDeleted(t *testing.T) {
	repos := newTestRepos(t)
	svc := NewReviewService(repos)
	ctx := t.Context()
	spot := seedSpot(t, repos, "Gone")
	author := seedUser(t, repos, "a@x.com", model.RoleUser)

	review, err := svc.Create(ctx, actorOf(author), ReviewInput{SpotID: spot.ID.String(), Rating: 5, Text: "Absolutely wonderful"})
	require.NoError(t, err)
	require.NoError(t, repos.Spots.Delete(ctx, spot.ID))

	assert.NoError(t, svc.Delete(ctx, actorOf(author), review.ID))
}

func TestReviewService_ToggleHelpfulAndList(t *testing.T) {
	repos := newTestRepos(t)
	svc := NewReviewService(repos)
	ctx := t.Context()
	spot := seedSpot(t, repos, "H")
	author := seedUser(t, repos, "a@x.com", model.RoleUser)
	voter := seedUser(t, repos, "b@x.com", model.RoleUser)

	review, err := svc.Create(ctx, actorOf(author), ReviewInput{SpotID: spot.ID.String(), Rating: 4, Text: "Good coffee and cake"})
	require.NoError(t, err)

	res, err := svc.ToggleHelpful(ctx, actorOf(voter), review.ID)
	require.NoError(t, err)
	assert.Equal(t, &HelpfulResult{Helpful: true, HelpfulCount: 1}, res)

	res, err = svc.ToggleHelpful(ctx, actorOf(voter), review.ID)
	require.NoError(t, err)
	assert.Equal(t, &HelpfulResult{Helpful: false, HelpfulCount: 0}, res)

	_, err = svc.ToggleHelpful(ctx, actorOf(voter), uuid.New())
	assert.Equal(t, ErrReviewNotFound, err)

	reviews, page, err := svc.ListBySpot(ctx, spot.ID, "", model.PageQuery{})
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
	assert.Equal(t, model.Pagination{Page: 1, Limit: 10, Total: 1, Pages: 1}, page)
}
