package services

import (
	"net/http"
	"testing"

	"mehndi_backend/internal/lock"
	"mehndi_backend/internal/models"
	"mehndi_backend/internal/repositories"
	"mehndi_backend/internal/services/dto"
	"mehndi_backend/internal/testutil"
	"mehndi_backend/internal/workflow"
	"mehndi_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reviewRequest(designerID string, rating int) *dto.CreateReviewRequest {
	return &dto.CreateReviewRequest{DesignerID: designerID, Rating: rating, Comment: "Beautiful work"}
}

func TestReviewService_AverageFollowsCreateAndDelete(t *testing.T) {
	env := newTestEnv(t, testutil.Date(2024, 5, 1, 9, 0))
	customer := testutil.CreateCustomer(t, env.db)
	designer := testutil.CreateDesigner(t, env.db, true)
	admin := testutil.CreateAdmin(t, env.db)

	_, err := env.svc.Reviews.Create(env.ctx, env.db, actorOf(customer), reviewRequest(designer.ID, 4))
	require.NoError(t, err)
	assert.Equal(t, 4.0, env.reload(t, designer.ID).AverageRating)

	low, err := env.svc.Reviews.Create(env.ctx, env.db, actorOf(customer), reviewRequest(designer.ID, 2))
	require.NoError(t, err)
	assert.Equal(t, 3.0, env.reload(t, designer.ID).AverageRating)
	assert.Len(t, env.notificationsOf(t, designer.ID, models.NotificationReviewReceived), 2)

	require.NoError(t, env.svc.Reviews.Delete(env.ctx, env.db, actorOf(admin), low.ID))
	assert.Equal(t, 4.0, env.reload(t, designer.ID).AverageRating)

	stats, err := env.svc.Reviews.RatingStats(env.ctx, env.db, designer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalReviews)
	assert.Equal(t, 4.0, stats.AverageRating)
}

func TestReviewService_RoundsAverage(t *testing.T) {
	env := newTestEnv(t, testutil.Date(2024, 5, 1, 9, 0))
	customer := testutil.CreateCustomer(t, env.db)
	designer := testutil.CreateDesigner(t, env.db, true)

	for _, rating := range []int{5, 4, 4} {
		_, err := env.svc.Reviews.Create(env.ctx, env.db, actorOf(customer), reviewRequest(designer.ID, rating))
		require.NoError(t, err)
	}
	assert.Equal(t, 4.33, env.reload(t, designer.ID).AverageRating)
}

func TestReviewService_ModerationKeepsRatingInvariant(t *testing.T) {
	env := newTestEnv(t, testutil.Date(2024, 5, 1, 9, 0))
	customer := testutil.CreateCustomer(t, env.db)
	designer := testutil.CreateDesigner(t, env.db, true)
	admin := testutil.CreateAdmin(t, env.db)

	_, err := env.svc.Reviews.Create(env.ctx, env.db, actorOf(customer), reviewRequest(designer.ID, 5))
	require.NoError(t, err)
	bad, err := env.svc.Reviews.Create(env.ctx, env.db, actorOf(customer), reviewRequest(designer.ID, 1))
	require.NoError(t, err)
	assert.Equal(t, 3.0, env.reload(t, designer.ID).AverageRating)

	// Жалоба дизайнера не меняет рейтинг
	reported, err := env.svc.Reviews.Report(env.ctx, env.db, actorOf(designer), bad.ID, "spam")
	require.NoError(t, err)
	assert.True(t, reported.IsFlagged)
	assert.True(t, reported.IsApproved)
	assert.Equal(t, 3.0, env.reload(t, designer.ID).AverageRating)

	rejected, err := env.svc.Moderation.ModerateReview(env.ctx, env.db, actorOf(admin), bad.ID, workflow.ReviewReject)
	require.NoError(t, err)
	assert.False(t, rejected.IsApproved)
	assert.True(t, rejected.IsFlagged)
	assert.Equal(t, "spam", rejected.ReportReason)
	assert.Equal(t, 5.0, env.reload(t, designer.ID).AverageRating)

	// Отклоненный отзыв скрыт из публичного списка, но виден админу
	public, err := env.svc.Reviews.List(env.ctx, env.db, Actor{}, dto.ReviewListQuery{Designer: designer.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), public.Total)
	approved := false
	hidden, err := env.svc.Reviews.List(env.ctx, env.db, actorOf(admin), dto.ReviewListQuery{Approved: &approved})
	require.NoError(t, err)
	assert.Equal(t, int64(1), hidden.Total)

	_, err = env.svc.Moderation.ModerateReview(env.ctx, env.db, actorOf(admin), bad.ID, workflow.ReviewReject)
	assertAppError(t, err, apperrors.CodeInvalidTransition, http.StatusConflict)

	_, err = env.svc.Moderation.ModerateReview(env.ctx, env.db, actorOf(admin), bad.ID, workflow.ReviewApprove)
	require.NoError(t, err)
	assert.Equal(t, 3.0, env.reload(t, designer.ID).AverageRating)

	_, err = env.svc.Moderation.ModerateReview(env.ctx, env.db, actorOf(customer), bad.ID, workflow.ReviewFlag)
	assertAppError(t, err, apperrors.CodeForbidden, http.StatusForbidden)
}

func TestReviewService_FlagAndRejectAreIndependent(t *testing.T) {
	env := newTestEnv(t, testutil.Date(2024, 5, 1, 9, 0))
	customer := testutil.CreateCustomer(t, env.db)
	designer := testutil.CreateDesigner(t, env.db, true)
	admin := testutil.CreateAdmin(t, env.db)

	_, err := env.svc.Reviews.Create(env.ctx, env.db, actorOf(customer), reviewRequest(designer.ID, 4))
	require.NoError(t, err)
	review, err := env.svc.Reviews.Create(env.ctx, env.db, actorOf(customer), reviewRequest(designer.ID, 2))
	require.NoError(t, err)

	// flag -> reject: пометка сохраняется
	flagged, err := env.svc.Moderation.ModerateReview(env.ctx, env.db, actorOf(admin), review.ID, workflow.ReviewFlag)
	require.NoError(t, err)
	assert.True(t, flagged.IsFlagged)
	assert.Equal(t, 3.0, env.reload(t, designer.ID).AverageRating)

	rejected, err := env.svc.Moderation.ModerateReview(env.ctx, env.db, actorOf(admin), review.ID, workflow.ReviewReject)
	require.NoError(t, err)
	assert.True(t, rejected.IsFlagged)
	assert.False(t, rejected.IsApproved)
	assert.Equal(t, 4.0, env.reload(t, designer.ID).AverageRating)

	_, err = env.svc.Moderation.ModerateReview(env.ctx, env.db, actorOf(admin), review.ID, workflow.ReviewFlag)
	assertAppError(t, err, apperrors.CodeInvalidTransition, http.StatusConflict)

	// unflag на отклоненном отзыве не возвращает его в рейтинг
	unflagged, err := env.svc.Moderation.ModerateReview(env.ctx, env.db, actorOf(admin), review.ID, workflow.ReviewUnflag)
	require.NoError(t, err)
	assert.False(t, unflagged.IsFlagged)
	assert.False(t, unflagged.IsApproved)
	assert.Equal(t, 4.0, env.reload(t, designer.ID).AverageRating)

	// reject -> flag: отклоненный отзыв можно пометить
	reflagged, err := env.svc.Moderation.ModerateReview(env.ctx, env.db, actorOf(admin), review.ID, workflow.ReviewFlag)
	require.NoError(t, err)
	assert.True(t, reflagged.IsFlagged)
	assert.False(t, reflagged.IsApproved)
	assert.Equal(t, 4.0, env.reload(t, designer.ID).AverageRating)

	approved, err := env.svc.Moderation.ModerateReview(env.ctx, env.db, actorOf(admin), review.ID, workflow.ReviewApprove)
	require.NoError(t, err)
	assert.False(t, approved.IsFlagged)
	assert.True(t, approved.IsApproved)
	assert.Equal(t, 3.0, env.reload(t, designer.ID).AverageRating)
}

func TestReviewService_RespondAndPermissions(t *testing.T) {
	env := newTestEnv(t, testutil.Date(2024, 5, 1, 9, 0))
	customer := testutil.CreateCustomer(t, env.db)
	other := testutil.CreateCustomer(t, env.db)
	designer := testutil.CreateDesigner(t, env.db, true)
	stranger := testutil.CreateDesigner(t, env.db, true)

	review, err := env.svc.Reviews.Create(env.ctx, env.db, actorOf(customer), reviewRequest(designer.ID, 4))
	require.NoError(t, err)

	_, err = env.svc.Reviews.Respond(env.ctx, env.db, actorOf(stranger), review.ID, "thanks")
	assertAppError(t, err, apperrors.CodeForbidden, http.StatusForbidden)

	responded, err := env.svc.Reviews.Respond(env.ctx, env.db, actorOf(designer), review.ID, "Thank you!")
	require.NoError(t, err)
	require.NotNil(t, responded.DesignerResponse)
	assert.Equal(t, "Thank you!", *responded.DesignerResponse)
	assert.NotNil(t, responded.ResponseDate)

	err = env.svc.Reviews.Delete(env.ctx, env.db, actorOf(other), review.ID)
	assertAppError(t, err, apperrors.CodeForbidden, http.StatusForbidden)

	_, err = env.svc.Reviews.Create(env.ctx, env.db, actorOf(designer), reviewRequest(stranger.ID, 5))
	assertAppError(t, err, apperrors.CodeForbidden, http.StatusForbidden)

	_, err = env.svc.Reviews.Create(env.ctx, env.db, actorOf(customer), reviewRequest(other.ID, 5))
	assertAppError(t, err, apperrors.CodeNotFound, http.StatusNotFound)

	_, err = env.svc.Reviews.Create(env.ctx, env.db, actorOf(customer), reviewRequest(designer.ID, 6))
	assertAppError(t, err, apperrors.CodeValidationFailed, http.StatusBadRequest)
}

func TestReviewService_RequireBooking(t *testing.T) {
	env := newTestEnv(t, testutil.Date(2024, 5, 1, 9, 0))
	customer := testutil.CreateCustomer(t, env.db)
	designer := testutil.CreateDesigner(t, env.db, true)

	userRepo := repositories.NewUserRepository()
	reviewRepo := repositories.NewReviewRepository()
	bookingRepo := repositories.NewBookingRepository()
	reviews := NewReviewService(reviewRepo, userRepo, bookingRepo,
		NewRatingAggregator(userRepo, reviewRepo, bookingRepo),
		env.svc.Notifications, lock.NewKeyedMutex(), true, env.clock.Now)

	_, err := reviews.Create(env.ctx, env.db, actorOf(customer), reviewRequest(designer.ID, 5))
	assertAppError(t, err, apperrors.CodeValidationFailed, http.StatusBadRequest)

	_, err = env.svc.Bookings.Create(env.ctx, env.db, actorOf(customer), bookingRequest(designer.ID, "2024-06-01", "10:00", 2))
	require.NoError(t, err)

	_, err = reviews.Create(env.ctx, env.db, actorOf(customer), reviewRequest(designer.ID, 5))
	require.NoError(t, err)
	assert.Equal(t, 5.0, env.reload(t, designer.ID).AverageRating)
}
