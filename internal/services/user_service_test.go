package services

import (
	"net/http"
	"testing"

	"mehndi_backend/internal/models"
	"mehndi_backend/internal/services/dto"
	"mehndi_backend/internal/testutil"
	"mehndi_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_UpdateProfile(t *testing.T) {
	env := newTestEnv(t, testutil.Date(2024, 5, 1, 9, 0))
	customer := testutil.CreateCustomer(t, env.db)
	designer := testutil.CreateDesigner(t, env.db, true)

	city := "Jaipur"
	specialization := "Bridal"
	resp, err := env.svc.Users.UpdateProfile(env.ctx, env.db, customer.ID, &dto.UpdateProfileRequest{
		Location:       &city,
		Specialization: &specialization,
	})
	require.NoError(t, err)
	assert.Equal(t, "Jaipur", resp.Location)
	// Поля дизайнера у покупателя не меняются
	assert.Empty(t, env.reload(t, customer.ID).Specialization)

	resp, err = env.svc.Users.UpdateProfile(env.ctx, env.db, designer.ID, &dto.UpdateProfileRequest{Specialization: &specialization})
	require.NoError(t, err)
	assert.Equal(t, "Bridal", resp.Specialization)

	_, err = env.svc.Users.GetMe(env.ctx, env.db, "missing")
	assertAppError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
}

func TestUserService_StatsPerRole(t *testing.T) {
	env := newTestEnv(t, testutil.Date(2024, 5, 1, 9, 0))
	customer := testutil.CreateCustomer(t, env.db)
	designer := testutil.CreateDesigner(t, env.db, true)
	design := testutil.CreateDesign(t, env.db, designer.ID, models.DesignStatusApproved)
	testutil.CreateDesign(t, env.db, designer.ID, models.DesignStatusPending)

	first, err := env.svc.Bookings.Create(env.ctx, env.db, actorOf(customer), bookingRequest(designer.ID, "2024-06-01", "10:00", 2))
	require.NoError(t, err)
	_, err = env.svc.Bookings.Create(env.ctx, env.db, actorOf(customer), bookingRequest(designer.ID, "2024-06-02", "10:00", 2))
	require.NoError(t, err)
	_, err = env.svc.Bookings.Cancel(env.ctx, env.db, actorOf(customer), first.ID, "rescheduled")
	require.NoError(t, err)
	_, err = env.svc.Catalog.ToggleFavorite(env.ctx, env.db, actorOf(customer), design.ID)
	require.NoError(t, err)

	designerStats, err := env.svc.Users.Stats(env.ctx, env.db, actorOf(designer))
	require.NoError(t, err)
	assert.Equal(t, int64(1), designerStats.TotalBookings)
	require.NotNil(t, designerStats.PendingBookings)
	assert.Equal(t, int64(1), *designerStats.PendingBookings)
	require.NotNil(t, designerStats.TotalDesigns)
	assert.Equal(t, int64(2), *designerStats.TotalDesigns)

	customerStats, err := env.svc.Users.Stats(env.ctx, env.db, actorOf(customer))
	require.NoError(t, err)
	require.NotNil(t, customerStats.FavoritesCount)
	assert.Equal(t, int64(1), *customerStats.FavoritesCount)
	assert.Nil(t, customerStats.TotalDesigns)
}

func TestUserService_GetDesigner(t *testing.T) {
	env := newTestEnv(t, testutil.Date(2024, 5, 1, 9, 0))
	admin := testutil.CreateAdmin(t, env.db)
	designer := testutil.CreateDesigner(t, env.db, true)
	pending := testutil.CreateDesigner(t, env.db, false)
	testutil.CreateDesign(t, env.db, designer.ID, models.DesignStatusApproved)
	testutil.CreateDesign(t, env.db, designer.ID, models.DesignStatusRejected)

	resp, err := env.svc.Users.GetDesigner(env.ctx, env.db, Actor{}, designer.ID)
	require.NoError(t, err)
	require.NotNil(t, resp.ApprovedDesignsCount)
	assert.Equal(t, int64(1), *resp.ApprovedDesignsCount)
	assert.Empty(t, resp.Email)

	_, err = env.svc.Users.GetDesigner(env.ctx, env.db, actorOf(pending), pending.ID)
	require.NoError(t, err)
	_, err = env.svc.Users.GetDesigner(env.ctx, env.db, actorOf(admin), pending.ID)
	require.NoError(t, err)
	_, err = env.svc.Users.GetDesigner(env.ctx, env.db, Actor{}, pending.ID)
	assertAppError(t, err, apperrors.CodeNotFound, http.StatusNotFound)

	users, err := env.svc.Users.ListUsers(env.ctx, env.db, dto.UserListQuery{Role: "designer"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), users.Total)
}
