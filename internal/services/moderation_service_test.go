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

func designerIDs(items []*dto.UserResponse) []string {
	ids := make([]string, 0, len(items))
	for _, u := range items {
		ids = append(ids, u.ID)
	}
	return ids
}

func TestModerationService_ApproveDesignerMakesItListed(t *testing.T) {
	env := newTestEnv(t, testutil.Date(2024, 5, 1, 9, 0))
	admin := testutil.CreateAdmin(t, env.db)
	customer := testutil.CreateCustomer(t, env.db)
	visible := testutil.CreateDesigner(t, env.db, true)
	pending := testutil.CreateDesigner(t, env.db, false)

	listed, err := env.svc.Users.ListDesigners(env.ctx, env.db, dto.DesignerListQuery{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{visible.ID}, designerIDs(listed.Items))

	queue, err := env.svc.Moderation.PendingDesigners(env.ctx, env.db, dto.PageQuery{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{pending.ID}, designerIDs(queue.Items))

	_, err = env.svc.Users.GetDesigner(env.ctx, env.db, actorOf(customer), pending.ID)
	assertAppError(t, err, apperrors.CodeNotFound, http.StatusNotFound)

	_, err = env.svc.Moderation.ApproveDesigner(env.ctx, env.db, actorOf(customer), pending.ID)
	assertAppError(t, err, apperrors.CodeForbidden, http.StatusForbidden)

	approved, err := env.svc.Moderation.ApproveDesigner(env.ctx, env.db, actorOf(admin), pending.ID)
	require.NoError(t, err)
	require.NotNil(t, approved.IsApproved)
	assert.True(t, *approved.IsApproved)
	assert.NotNil(t, approved.ApprovedAt)
	assert.Len(t, env.notificationsOf(t, pending.ID, models.NotificationDesignerApproved), 1)

	listed, err = env.svc.Users.ListDesigners(env.ctx, env.db, dto.DesignerListQuery{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{visible.ID, pending.ID}, designerIDs(listed.Items))

	// Повторное одобрение - no-op без второго уведомления
	_, err = env.svc.Moderation.ApproveDesigner(env.ctx, env.db, actorOf(admin), pending.ID)
	require.NoError(t, err)
	assert.Len(t, env.notificationsOf(t, pending.ID, models.NotificationDesignerApproved), 1)

	_, err = env.svc.Moderation.ApproveDesigner(env.ctx, env.db, actorOf(admin), customer.ID)
	assertAppError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
}

func TestModerationService_DeleteCustomerRecomputesDesigners(t *testing.T) {
	env := newTestEnv(t, testutil.Date(2024, 5, 1, 9, 0))
	admin := testutil.CreateAdmin(t, env.db)
	leaving := testutil.CreateCustomer(t, env.db)
	staying := testutil.CreateCustomer(t, env.db)
	designer := testutil.CreateDesigner(t, env.db, true)
	design := testutil.CreateDesign(t, env.db, designer.ID, models.DesignStatusApproved)

	_, err := env.svc.Bookings.Create(env.ctx, env.db, actorOf(leaving), bookingRequest(designer.ID, "2024-06-01", "10:00", 2))
	require.NoError(t, err)
	_, err = env.svc.Bookings.Create(env.ctx, env.db, actorOf(staying), bookingRequest(designer.ID, "2024-06-01", "14:00", 2))
	require.NoError(t, err)
	_, err = env.svc.Reviews.Create(env.ctx, env.db, actorOf(leaving), reviewRequest(designer.ID, 1))
	require.NoError(t, err)
	_, err = env.svc.Reviews.Create(env.ctx, env.db, actorOf(staying), reviewRequest(designer.ID, 5))
	require.NoError(t, err)
	_, err = env.svc.Catalog.React(env.ctx, env.db, actorOf(leaving), design.ID, models.ReactionLike)
	require.NoError(t, err)

	before := env.reload(t, designer.ID)
	assert.Equal(t, 2, before.TotalBookings)
	assert.Equal(t, 3.0, before.AverageRating)

	err = env.svc.Moderation.DeleteUser(env.ctx, env.db, actorOf(admin), admin.ID)
	assertAppError(t, err, apperrors.CodeForbidden, http.StatusForbidden)

	require.NoError(t, env.svc.Moderation.DeleteUser(env.ctx, env.db, actorOf(admin), leaving.ID))

	after := env.reload(t, designer.ID)
	assert.Equal(t, 1, after.TotalBookings)
	assert.Equal(t, 5.0, after.AverageRating)

	var stored models.Design
	require.NoError(t, env.db.First(&stored, "id = ?", design.ID).Error)
	assert.Equal(t, 0, stored.LikesCount)

	var users int64
	env.db.Model(&models.User{}).Where("id = ?", leaving.ID).Count(&users)
	assert.Zero(t, users)

	err = env.svc.Moderation.DeleteUser(env.ctx, env.db, actorOf(admin), leaving.ID)
	assertAppError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
}

func TestModerationService_DeleteDesignerRemovesDependents(t *testing.T) {
	env := newTestEnv(t, testutil.Date(2024, 5, 1, 9, 0))
	admin := testutil.CreateAdmin(t, env.db)
	customer := testutil.CreateCustomer(t, env.db)
	designer := testutil.CreateDesigner(t, env.db, true)
	design := testutil.CreateDesign(t, env.db, designer.ID, models.DesignStatusApproved)

	booking, err := env.svc.Bookings.Create(env.ctx, env.db, actorOf(customer), bookingRequest(designer.ID, "2024-06-01", "10:00", 2))
	require.NoError(t, err)
	_, err = env.svc.Reviews.Create(env.ctx, env.db, actorOf(customer), reviewRequest(designer.ID, 4))
	require.NoError(t, err)
	_, err = env.svc.Catalog.ToggleFavorite(env.ctx, env.db, actorOf(customer), design.ID)
	require.NoError(t, err)

	require.NoError(t, env.svc.Moderation.DeleteUser(env.ctx, env.db, actorOf(admin), designer.ID))

	counts := map[string]interface{}{
		"designs":   &models.Design{},
		"bookings":  &models.Booking{},
		"reviews":   &models.Review{},
		"favorites": &models.Favorite{},
	}
	for name, model := range counts {
		var n int64
		require.NoError(t, env.db.Model(model).Count(&n).Error)
		assert.Zero(t, n, name)
	}

	_, err = env.svc.Bookings.Get(env.ctx, env.db, actorOf(customer), booking.ID)
	assertAppError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
}

func TestModerationService_Dashboard(t *testing.T) {
	env := newTestEnv(t, testutil.Date(2024, 5, 1, 9, 0))
	testutil.CreateAdmin(t, env.db)
	customer := testutil.CreateCustomer(t, env.db)
	designer := testutil.CreateDesigner(t, env.db, true)
	testutil.CreateDesigner(t, env.db, false)
	testutil.CreateDesign(t, env.db, designer.ID, models.DesignStatusApproved)
	testutil.CreateDesign(t, env.db, designer.ID, models.DesignStatusPending)

	_, err := env.svc.Bookings.Create(env.ctx, env.db, actorOf(customer), bookingRequest(designer.ID, "2024-06-01", "10:00", 2))
	require.NoError(t, err)
	_, err = env.svc.Reviews.Create(env.ctx, env.db, actorOf(customer), reviewRequest(designer.ID, 5))
	require.NoError(t, err)

	dash, err := env.svc.Moderation.Dashboard(env.ctx, env.db)
	require.NoError(t, err)
	assert.Equal(t, int64(4), dash.Users.Total)
	assert.Equal(t, int64(1), dash.Users.Customers)
	assert.Equal(t, int64(2), dash.Users.Designers)
	assert.Equal(t, int64(1), dash.Users.PendingDesigners)
	assert.Equal(t, int64(2), dash.Designs.Total)
	assert.Equal(t, int64(1), dash.Designs.Pending)
	assert.Equal(t, int64(1), dash.Bookings.Pending)
	assert.Equal(t, int64(1), dash.Reviews.Total)
	require.Len(t, dash.TopDesigners, 1)
	assert.Equal(t, designer.ID, dash.TopDesigners[0].ID)
	assert.Len(t, dash.TopDesigns, 1)
}
