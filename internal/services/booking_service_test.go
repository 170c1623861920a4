package services

import (
	"net/http"
	"sync"
	"testing"

	"mehndi_backend/internal/models"
	"mehndi_backend/internal/services/dto"
	"mehndi_backend/internal/testutil"
	"mehndi_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookingRequest(designerID, date, at string, hours int) *dto.CreateBookingRequest {
	return &dto.CreateBookingRequest{
		DesignerID:    designerID,
		BookingDate:   date,
		BookingTime:   at,
		DurationHours: hours,
		EventType:     "wedding",
		Location:      "Banquet hall",
	}
}

func TestBookingService_Lifecycle(t *testing.T) {
	env := newTestEnv(t, testutil.Date(2024, 5, 1, 9, 0))
	customer := testutil.CreateCustomer(t, env.db)
	designer := testutil.CreateDesigner(t, env.db, true)
	admin := testutil.CreateAdmin(t, env.db)

	booking, err := env.svc.Bookings.Create(env.ctx, env.db, actorOf(customer), bookingRequest(designer.ID, "2024-06-01", "10:00", 2))
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.Equal(t, "2024-06-01", booking.BookingDate)
	assert.Equal(t, "10:00", booking.BookingTime)
	assert.Equal(t, testutil.Date(2024, 6, 1, 12, 0), booking.EndsAt)
	assert.Equal(t, 1, env.reload(t, designer.ID).TotalBookings)
	assert.Len(t, env.notificationsOf(t, designer.ID, models.NotificationBookingCreated), 1)

	// Клиент не может подтвердить
	_, err = env.svc.Bookings.UpdateStatus(env.ctx, env.db, actorOf(customer), booking.ID, &dto.UpdateBookingStatusRequest{Status: "confirmed"})
	assertAppError(t, err, apperrors.CodeForbidden, http.StatusForbidden)

	confirmed, err := env.svc.Bookings.UpdateStatus(env.ctx, env.db, actorOf(designer), booking.ID, &dto.UpdateBookingStatusRequest{Status: "confirmed"})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, confirmed.Status)
	assert.NotNil(t, confirmed.ConfirmedAt)
	assert.Len(t, env.notificationsOf(t, customer.ID, models.NotificationBookingConfirmed), 1)

	// Завершение до наступления даты запрещено
	_, err = env.svc.Bookings.UpdateStatus(env.ctx, env.db, actorOf(admin), booking.ID, &dto.UpdateBookingStatusRequest{Status: "completed"})
	assertAppError(t, err, apperrors.CodeValidationFailed, http.StatusBadRequest)

	env.clock.Set(testutil.Date(2024, 6, 2, 9, 0))
	completed, err := env.svc.Bookings.UpdateStatus(env.ctx, env.db, actorOf(admin), booking.ID, &dto.UpdateBookingStatusRequest{Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, completed.Status)
	assert.True(t, completed.IsPast)
	assert.Len(t, env.notificationsOf(t, designer.ID, models.NotificationBookingCompleted), 1)

	_, err = env.svc.Bookings.Cancel(env.ctx, env.db, actorOf(customer), booking.ID, "changed plans")
	appErr := assertAppError(t, err, apperrors.CodeInvalidTransition, http.StatusConflict)
	details, ok := appErr.Details.(apperrors.TransitionDetails)
	require.True(t, ok)
	assert.Equal(t, "completed", details.CurrentState)
	assert.Equal(t, "cancel", details.Event)

	assert.Equal(t, 1, env.reload(t, designer.ID).TotalBookings)
}

func TestBookingService_Overlap(t *testing.T) {
	env := newTestEnv(t, testutil.Date(2024, 5, 1, 9, 0))
	first := testutil.CreateCustomer(t, env.db)
	second := testutil.CreateCustomer(t, env.db)
	designer := testutil.CreateDesigner(t, env.db, true)

	existing, err := env.svc.Bookings.Create(env.ctx, env.db, actorOf(first), bookingRequest(designer.ID, "2024-06-01", "10:00", 2))
	require.NoError(t, err)

	_, err = env.svc.Bookings.Create(env.ctx, env.db, actorOf(second), bookingRequest(designer.ID, "2024-06-01", "11:00", 2))
	appErr := assertAppError(t, err, apperrors.CodeConflict, http.StatusConflict)
	assert.Equal(t, map[string]string{"conflicting_booking_id": existing.ID}, appErr.Details)

	backToBack, err := env.svc.Bookings.Create(env.ctx, env.db, actorOf(second), bookingRequest(designer.ID, "2024-06-01", "12:00", 1))
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, backToBack.Status)

	// Отмена освобождает интервал
	_, err = env.svc.Bookings.Cancel(env.ctx, env.db, actorOf(first), existing.ID, "changed plans")
	require.NoError(t, err)
	_, err = env.svc.Bookings.Create(env.ctx, env.db, actorOf(second), bookingRequest(designer.ID, "2024-06-01", "11:00", 1))
	require.NoError(t, err)

	assert.Equal(t, 2, env.reload(t, designer.ID).TotalBookings)
	assert.Len(t, env.notificationsOf(t, designer.ID, models.NotificationBookingCancelled), 1)
}

func TestBookingService_ConcurrentOverlapSingleWinner(t *testing.T) {
	env := newTestEnv(t, testutil.Date(2024, 5, 1, 9, 0))
	designer := testutil.CreateDesigner(t, env.db, true)

	const n = 8
	customers := make([]*models.User, n)
	for i := range customers {
		customers[i] = testutil.CreateCustomer(t, env.db)
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.svc.Bookings.Create(env.ctx, env.db, actorOf(customers[i]), bookingRequest(designer.ID, "2024-06-01", "10:00", 2))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assertAppError(t, err, apperrors.CodeConflict, http.StatusConflict)
	}
	assert.Equal(t, 1, succeeded)

	var count int64
	require.NoError(t, env.db.Model(&models.Booking{}).Where("designer_id = ?", designer.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestBookingService_CreateValidation(t *testing.T) {
	env := newTestEnv(t, testutil.Date(2024, 5, 1, 9, 0))
	customer := testutil.CreateCustomer(t, env.db)
	designer := testutil.CreateDesigner(t, env.db, true)
	pending := testutil.CreateDesigner(t, env.db, false)

	tests := []struct {
		name   string
		actor  Actor
		req    *dto.CreateBookingRequest
		code   apperrors.ErrorCode
		status int
	}{
		{"past date", actorOf(customer), bookingRequest(designer.ID, "2024-04-30", "10:00", 2), apperrors.CodeValidationFailed, http.StatusBadRequest},
		{"unapproved designer", actorOf(customer), bookingRequest(pending.ID, "2024-06-01", "10:00", 2), apperrors.CodeValidationFailed, http.StatusBadRequest},
		{"unknown designer", actorOf(customer), bookingRequest("missing", "2024-06-01", "10:00", 2), apperrors.CodeNotFound, http.StatusNotFound},
		{"customer is not a designer", actorOf(customer), bookingRequest(testutil.CreateCustomer(t, env.db).ID, "2024-06-01", "10:00", 2), apperrors.CodeNotFound, http.StatusNotFound},
		{"too long", actorOf(customer), bookingRequest(designer.ID, "2024-06-01", "10:00", 13), apperrors.CodeValidationFailed, http.StatusBadRequest},
		{"designer cannot book", actorOf(designer), bookingRequest(pending.ID, "2024-06-01", "10:00", 2), apperrors.CodeForbidden, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Bookings.Create(env.ctx, env.db, tt.actor, tt.req)
			assertAppError(t, err, tt.code, tt.status)
		})
	}
}

func TestBookingService_VisibilityAndCancelRules(t *testing.T) {
	env := newTestEnv(t, testutil.Date(2024, 5, 1, 9, 0))
	customer := testutil.CreateCustomer(t, env.db)
	stranger := testutil.CreateCustomer(t, env.db)
	designer := testutil.CreateDesigner(t, env.db, true)
	admin := testutil.CreateAdmin(t, env.db)

	booking, err := env.svc.Bookings.Create(env.ctx, env.db, actorOf(customer), bookingRequest(designer.ID, "2024-06-01", "10:00", 2))
	require.NoError(t, err)

	_, err = env.svc.Bookings.Get(env.ctx, env.db, actorOf(stranger), booking.ID)
	assertAppError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
	_, err = env.svc.Bookings.Get(env.ctx, env.db, actorOf(admin), booking.ID)
	require.NoError(t, err)

	_, err = env.svc.Bookings.Cancel(env.ctx, env.db, actorOf(stranger), booking.ID, "nope")
	assertAppError(t, err, apperrors.CodeForbidden, http.StatusForbidden)

	_, err = env.svc.Bookings.Cancel(env.ctx, env.db, actorOf(customer), booking.ID, "  ")
	assertAppError(t, err, apperrors.CodeValidationFailed, http.StatusBadRequest)

	_, err = env.svc.Bookings.UpdateStatus(env.ctx, env.db, actorOf(designer), booking.ID, &dto.UpdateBookingStatusRequest{Status: "pending"})
	assertAppError(t, err, apperrors.CodeInvalidTransition, http.StatusConflict)

	mine, err := env.svc.Bookings.List(env.ctx, env.db, actorOf(stranger), dto.BookingListQuery{})
	require.NoError(t, err)
	assert.Zero(t, mine.Total)

	received, err := env.svc.Bookings.List(env.ctx, env.db, actorOf(designer), dto.BookingListQuery{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, received.Items, 1)
	assert.Equal(t, booking.ID, received.Items[0].ID)

	cancelled, err := env.svc.Bookings.Cancel(env.ctx, env.db, actorOf(designer), booking.ID, "sick")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledBy)
	assert.Equal(t, designer.ID, *cancelled.CancelledBy)
	assert.Equal(t, "sick", cancelled.CancellationReason)
	assert.Equal(t, 0, env.reload(t, designer.ID).TotalBookings)
	assert.Len(t, env.notificationsOf(t, customer.ID, models.NotificationBookingCancelled), 1)

	var before models.Booking
	require.NoError(t, env.db.First(&before, "id = ?", booking.ID).Error)

	// Повторная отмена не перезаписывает причину и автора
	_, err = env.svc.Bookings.Cancel(env.ctx, env.db, actorOf(customer), booking.ID, "changed plans")
	assertAppError(t, err, apperrors.CodeInvalidTransition, http.StatusConflict)

	var after models.Booking
	require.NoError(t, env.db.First(&after, "id = ?", booking.ID).Error)
	assert.Equal(t, before, after)
	assert.Equal(t, "sick", after.CancellationReason)
	require.NotNil(t, after.CancelledByID)
	assert.Equal(t, designer.ID, *after.CancelledByID)
	assert.Len(t, env.notificationsOf(t, designer.ID, models.NotificationBookingCancelled), 0)
}

func TestBookingService_ProcessReminders(t *testing.T) {
	env := newTestEnv(t, testutil.Date(2024, 5, 31, 20, 0))
	customer := testutil.CreateCustomer(t, env.db)
	designer := testutil.CreateDesigner(t, env.db, true)

	soon, err := env.svc.Bookings.Create(env.ctx, env.db, actorOf(customer), bookingRequest(designer.ID, "2024-06-01", "10:00", 2))
	require.NoError(t, err)
	_, err = env.svc.Bookings.Create(env.ctx, env.db, actorOf(customer), bookingRequest(designer.ID, "2024-06-05", "10:00", 2))
	require.NoError(t, err)
	_, err = env.svc.Bookings.UpdateStatus(env.ctx, env.db, actorOf(designer), soon.ID, &dto.UpdateBookingStatusRequest{Status: "confirmed"})
	require.NoError(t, err)

	processed, err := env.svc.Bookings.ProcessReminders(env.ctx, env.db)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Len(t, env.notificationsOf(t, customer.ID, models.NotificationBookingReminder), 1)
	assert.Len(t, env.notificationsOf(t, designer.ID, models.NotificationBookingReminder), 1)

	processed, err = env.svc.Bookings.ProcessReminders(env.ctx, env.db)
	require.NoError(t, err)
	assert.Zero(t, processed)
}
