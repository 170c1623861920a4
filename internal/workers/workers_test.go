package workers

import (
	"context"
	"testing"
	"time"

	"mehndi_backend/internal/auth"
	"mehndi_backend/internal/config"
	"mehndi_backend/internal/email"
	"mehndi_backend/internal/models"
	"mehndi_backend/internal/services"
	"mehndi_backend/internal/services/dto"
	"mehndi_backend/internal/storage"
	"mehndi_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContainer(t *testing.T, clock *testutil.Clock, mailer email.Provider) *services.ServiceContainer {
	t.Helper()
	cfg := config.TestConfig()
	store, err := storage.NewLocalStorage(t.TempDir(), cfg.Storage.BaseURL)
	require.NoError(t, err)
	return services.NewServiceContainer(services.Dependencies{
		Config:  cfg,
		Storage: store,
		Email:   mailer,
		Tokens:  auth.NewTokenManager(cfg.JWT.Secret, time.Hour),
		Now:     clock.Now,
	})
}

func TestBookingWorker_RunOnce(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	clock := testutil.NewClock(testutil.Date(2024, 5, 31, 20, 0))
	svc := newContainer(t, clock, email.NewMockProvider())

	customer := testutil.CreateCustomer(t, db)
	designer := testutil.CreateDesigner(t, db, true)
	booking, err := svc.Bookings.Create(ctx, db, services.Actor{ID: customer.ID, Role: customer.Role}, &dto.CreateBookingRequest{
		DesignerID:    designer.ID,
		BookingDate:   "2024-06-01",
		BookingTime:   "10:00",
		DurationHours: 2,
		EventType:     "sangeet",
		Location:      "Home",
	})
	require.NoError(t, err)

	worker := NewBookingWorker(db, svc.Bookings, time.Minute)

	// Неподтвержденные не напоминаются
	assert.Zero(t, worker.RunOnce(ctx))

	_, err = svc.Bookings.UpdateStatus(ctx, db, services.Actor{ID: designer.ID, Role: designer.Role}, booking.ID,
		&dto.UpdateBookingStatusRequest{Status: "confirmed"})
	require.NoError(t, err)

	assert.Equal(t, 1, worker.RunOnce(ctx))
	assert.Zero(t, worker.RunOnce(ctx))

	var reminders int64
	db.Model(&models.Notification{}).Where("type = ?", models.NotificationBookingReminder).Count(&reminders)
	assert.Equal(t, int64(2), reminders)
}

func TestMaintenanceWorker_DeliverAndCleanup(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	start := testutil.Date(2024, 5, 1, 9, 0)
	clock := testutil.NewClock(start)
	mailer := email.NewMockProvider()
	svc := newContainer(t, clock, mailer)

	user := testutil.CreateCustomer(t, db)
	admin := testutil.CreateAdmin(t, db)
	designer := testutil.CreateDesigner(t, db, false)
	_, err := svc.Moderation.ApproveDesigner(ctx, db, services.Actor{ID: admin.ID, Role: admin.Role}, designer.ID)
	require.NoError(t, err)
	_, err = svc.Auth.Login(ctx, db, &dto.LoginRequest{Email: user.Email, Password: testutil.Password})
	require.NoError(t, err)

	worker := NewMaintenanceWorker(db, svc.Notifications, svc.Auth, time.Minute)

	assert.Equal(t, 1, worker.DeliverOnce(ctx))
	require.Len(t, mailer.Sent(), 1)
	assert.Equal(t, designer.Email, mailer.Sent()[0].To)
	assert.Zero(t, worker.DeliverOnce(ctx))

	assert.Zero(t, worker.CleanupOnce(ctx))
	clock.Set(start.Add(30 * 24 * time.Hour))
	assert.Equal(t, int64(1), worker.CleanupOnce(ctx))
}

func TestWorkers_StopOnCancel(t *testing.T) {
	db := testutil.NewDB(t)
	clock := testutil.NewClock(time.Now())
	svc := newContainer(t, clock, email.NewMockProvider())

	ctx, cancel := context.WithCancel(context.Background())
	NewBookingWorker(db, svc.Bookings, 10*time.Millisecond).Start(ctx)
	NewMaintenanceWorker(db, svc.Notifications, svc.Auth, 10*time.Millisecond).Start(ctx)

	time.Sleep(50 * time.Millisecond)
	cancel()
}
