package repositories

import (
	"testing"

	"mehndi_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewRepository_AverageApproved(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewReviewRepository()

	c := testutil.CreateCustomer(t, db)
	d := testutil.CreateDesigner(t, db, true)

	avg, err := repo.AverageApproved(db, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, avg)

	testutil.CreateReview(t, db, c.ID, d.ID, 4)
	testutil.CreateReview(t, db, c.ID, d.ID, 2)
	rejected := testutil.CreateReview(t, db, c.ID, d.ID, 1)
	rejected.IsApproved = false
	require.NoError(t, repo.UpdateModeration(db, rejected))

	avg, err = repo.AverageApproved(db, d.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, avg, 1e-9)

	stats, err := repo.GetRatingStats(db, d.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalReviews)
	assert.InDelta(t, 3.0, stats.AverageRating, 1e-9)
	assert.Equal(t, int64(1), stats.Distribution[4])
	assert.Equal(t, int64(0), stats.Distribution[1])
}
