package repositories

import (
	"testing"
	"time"

	"mehndi_backend/internal/models"
	"mehndi_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createBooking(t *testing.T, db *gorm.DB, customerID, designerID string, start time.Time, hours int, status models.BookingStatus) *models.Booking {
	t.Helper()
	b := &models.Booking{
		CustomerID:    customerID,
		DesignerID:    designerID,
		StartsAt:      start,
		EndsAt:        start.Add(time.Duration(hours) * time.Hour),
		DurationHours: hours,
		EventType:     "wedding",
		Location:      "Hall",
		Status:        status,
	}
	require.NoError(t, db.Create(b).Error)
	return b
}

func TestBookingRepository_FindOverlapping(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewBookingRepository()

	customer := testutil.CreateCustomer(t, db)
	designer := testutil.CreateDesigner(t, db, true)
	other := testutil.CreateDesigner(t, db, true)

	base := testutil.Date(2030, 6, 1, 10, 0)
	existing := createBooking(t, db, customer.ID, designer.ID, base, 2, models.BookingStatusPending)
	createBooking(t, db, customer.ID, designer.ID, base.Add(4*time.Hour), 1, models.BookingStatusCancelled)

	tests := []struct {
		name       string
		designerID string
		start      time.Time
		hours      int
		wantID     string
	}{
		{"inside", designer.ID, base.Add(time.Hour), 2, existing.ID},
		{"covering", designer.ID, base.Add(-time.Hour), 4, existing.ID},
		{"back to back after", designer.ID, base.Add(2 * time.Hour), 1, ""},
		{"back to back before", designer.ID, base.Add(-time.Hour), 1, ""},
		{"cancelled slot is free", designer.ID, base.Add(4 * time.Hour), 1, ""},
		{"other designer", other.ID, base, 2, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := repo.FindOverlapping(db, tt.designerID, tt.start, tt.start.Add(time.Duration(tt.hours)*time.Hour))
			require.NoError(t, err)
			if tt.wantID == "" {
				assert.Nil(t, found)
				return
			}
			require.NotNil(t, found)
			assert.Equal(t, tt.wantID, found.ID)
		})
	}
}

func TestBookingRepository_FindWithFilterVisibility(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewBookingRepository()

	c1 := testutil.CreateCustomer(t, db)
	c2 := testutil.CreateCustomer(t, db)
	d := testutil.CreateDesigner(t, db, true)
	base := testutil.Date(2030, 1, 1, 10, 0)

	createBooking(t, db, c1.ID, d.ID, base, 1, models.BookingStatusPending)
	createBooking(t, db, c2.ID, d.ID, base.Add(2*time.Hour), 1, models.BookingStatusConfirmed)

	mine, total, err := repo.FindWithFilter(db, BookingFilter{PartyID: c1.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, c1.ID, mine[0].CustomerID)

	received, total, err := repo.FindWithFilter(db, BookingFilter{PartyID: d.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, received, 2)

	confirmed := models.BookingStatusConfirmed
	_, total, err = repo.FindWithFilter(db, BookingFilter{PartyID: d.ID, Status: &confirmed})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestBookingRepository_Reminders(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewBookingRepository()

	c := testutil.CreateCustomer(t, db)
	d := testutil.CreateDesigner(t, db, true)
	now := testutil.Date(2030, 1, 1, 8, 0)

	soon := createBooking(t, db, c.ID, d.ID, now.Add(3*time.Hour), 1, models.BookingStatusConfirmed)
	createBooking(t, db, c.ID, d.ID, now.Add(5*time.Hour), 1, models.BookingStatusPending)
	createBooking(t, db, c.ID, d.ID, now.Add(48*time.Hour), 1, models.BookingStatusConfirmed)

	due, err := repo.FindDueForReminder(db, now, 24*time.Hour, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, soon.ID, due[0].ID)

	ok, err := repo.MarkReminderSent(db, soon.ID, now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkReminderSent(db, soon.ID, now)
	require.NoError(t, err)
	assert.False(t, ok)

	due, err = repo.FindDueForReminder(db, now, 24*time.Hour, 10)
	require.NoError(t, err)
	assert.Empty(t, due)
}
