package repositories

import (
	"errors"
	"time"

	"mehndi_backend/internal/models"

	"gorm.io/gorm"
)

var ErrBookingNotFound = errors.New("booking not found")

type BookingRepository interface {
	Create(db *gorm.DB, booking *models.Booking) error
	FindByID(db *gorm.DB, id string) (*models.Booking, error)
	LockByID(db *gorm.DB, id string) (*models.Booking, error)
	UpdateStatus(db *gorm.DB, booking *models.Booking) error

	// FindOverlapping - первое активное бронирование дизайнера, пересекающее [start, end)
	FindOverlapping(db *gorm.DB, designerID string, start, end time.Time) (*models.Booking, error)

	FindWithFilter(db *gorm.DB, filter BookingFilter) ([]models.Booking, int64, error)
	FindInRange(db *gorm.DB, from, to *time.Time) ([]models.Booking, error)
	CountNotCancelled(db *gorm.DB, designerID string) (int64, error)
	CountByStatus(db *gorm.DB, filter BookingFilter) (map[models.BookingStatus]int64, error)
	HasBookingWith(db *gorm.DB, customerID, designerID string) (bool, error)

	// Напоминания
	FindDueForReminder(db *gorm.DB, now time.Time, lead time.Duration, limit int) ([]models.Booking, error)
	MarkReminderSent(db *gorm.DB, bookingID string, at time.Time) (bool, error)

	// Каскадное удаление
	FindCounterpartDesigners(db *gorm.DB, customerID string) ([]string, error)
	DeleteByUser(db *gorm.DB, userID string) error
}

type BookingFilter struct {
	// Видимость: участник (клиент или дизайнер); пусто - все
	PartyID    string
	CustomerID string
	DesignerID string
	Status     *models.BookingStatus
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       Page
}

type bookingRepository struct{}

func NewBookingRepository() BookingRepository {
	return &bookingRepository{}
}

func (r *bookingRepository) Create(db *gorm.DB, booking *models.Booking) error {
	return db.Create(booking).Error
}

func (r *bookingRepository) FindByID(db *gorm.DB, id string) (*models.Booking, error) {
	var booking models.Booking
	err := db.Preload("Customer").Preload("Designer").First(&booking, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) LockByID(db *gorm.DB, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := forUpdate(db).First(&booking, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

// UpdateStatus сохраняет статус и связанные с переходом поля.
// Условие по старому статусу не нужно: строка уже заблокирована LockByID.
func (r *bookingRepository) UpdateStatus(db *gorm.DB, booking *models.Booking) error {
	result := db.Model(&models.Booking{}).Where("id = ?", booking.ID).Updates(map[string]interface{}{
		"status":              booking.Status,
		"cancelled_by_id":     booking.CancelledByID,
		"cancellation_reason": booking.CancellationReason,
		"confirmed_at":        booking.ConfirmedAt,
		"completed_at":        booking.CompletedAt,
		"cancelled_at":        booking.CancelledAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (r *bookingRepository) FindOverlapping(db *gorm.DB, designerID string, start, end time.Time) (*models.Booking, error) {
	var booking models.Booking
	err := forUpdate(db).
		Where("designer_id = ? AND status IN ?", designerID, models.ActiveBookingStatuses).
		Where("starts_at < ? AND ends_at > ?", end, start).
		Order("starts_at ASC").
		First(&booking).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func applyBookingFilter(query *gorm.DB, filter BookingFilter) *gorm.DB {
	if filter.PartyID != "" {
		query = query.Where("customer_id = ? OR designer_id = ?", filter.PartyID, filter.PartyID)
	}
	if filter.CustomerID != "" {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.DesignerID != "" {
		query = query.Where("designer_id = ?", filter.DesignerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.DateFrom != nil {
		query = query.Where("starts_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("starts_at < ?", *filter.DateTo)
	}
	return query
}

func (r *bookingRepository) FindWithFilter(db *gorm.DB, filter BookingFilter) ([]models.Booking, int64, error) {
	var bookings []models.Booking
	var total int64

	query := applyBookingFilter(db.Model(&models.Booking{}), filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Customer").Preload("Designer").
		Order("starts_at DESC").
		Scopes(paginate(filter.Page)).
		Find(&bookings).Error
	return bookings, total, err
}

func (r *bookingRepository) FindInRange(db *gorm.DB, from, to *time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	query := applyBookingFilter(db.Model(&models.Booking{}), BookingFilter{DateFrom: from, DateTo: to})
	err := query.Preload("Customer").Preload("Designer").
		Order("starts_at ASC").
		Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepository) CountNotCancelled(db *gorm.DB, designerID string) (int64, error) {
	var count int64
	err := db.Model(&models.Booking{}).
		Where("designer_id = ? AND status <> ?", designerID, models.BookingStatusCancelled).
		Count(&count).Error
	return count, err
}

func (r *bookingRepository) CountByStatus(db *gorm.DB, filter BookingFilter) (map[models.BookingStatus]int64, error) {
	type row struct {
		Status models.BookingStatus
		Count  int64
	}
	var rows []row
	filter.Status = nil
	err := applyBookingFilter(db.Model(&models.Booking{}), filter).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[models.BookingStatus]int64, len(rows))
	for _, rw := range rows {
		out[rw.Status] = rw.Count
	}
	return out, nil
}

func (r *bookingRepository) HasBookingWith(db *gorm.DB, customerID, designerID string) (bool, error) {
	var count int64
	err := db.Model(&models.Booking{}).
		Where("customer_id = ? AND designer_id = ? AND status <> ?", customerID, designerID, models.BookingStatusCancelled).
		Count(&count).Error
	return count > 0, err
}

func (r *bookingRepository) FindDueForReminder(db *gorm.DB, now time.Time, lead time.Duration, limit int) ([]models.Booking, error) {
	var bookings []models.Booking
	err := db.Where("status = ? AND reminder_sent_at IS NULL", models.BookingStatusConfirmed).
		Where("starts_at > ? AND starts_at <= ?", now, now.Add(lead)).
		Order("starts_at ASC").
		Limit(limit).
		Find(&bookings).Error
	return bookings, err
}

// MarkReminderSent - false, если напоминание уже отметил другой обработчик
func (r *bookingRepository) MarkReminderSent(db *gorm.DB, bookingID string, at time.Time) (bool, error) {
	result := db.Model(&models.Booking{}).
		Where("id = ? AND reminder_sent_at IS NULL", bookingID).
		UpdateColumn("reminder_sent_at", at)
	return result.RowsAffected > 0, result.Error
}

func (r *bookingRepository) FindCounterpartDesigners(db *gorm.DB, customerID string) ([]string, error) {
	var ids []string
	err := db.Model(&models.Booking{}).
		Where("customer_id = ?", customerID).
		Distinct().
		Pluck("designer_id", &ids).Error
	return ids, err
}

func (r *bookingRepository) DeleteByUser(db *gorm.DB, userID string) error {
	return db.Where("customer_id = ? OR designer_id = ?", userID, userID).Delete(&models.Booking{}).Error
}
