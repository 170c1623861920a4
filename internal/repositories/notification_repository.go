package repositories

import (
	"errors"
	"time"

	"mehndi_backend/internal/models"

	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationRepository interface {
	Create(db *gorm.DB, notification *models.Notification) error
	CreateBulk(db *gorm.DB, notifications []*models.Notification) error
	FindByIDForUser(db *gorm.DB, id, userID string) (*models.Notification, error)
	FindUserNotifications(db *gorm.DB, userID string, criteria NotificationCriteria) ([]models.Notification, int64, error)
	CountUnread(db *gorm.DB, userID string) (int64, error)

	// MarkAsRead идемпотентна: повторный вызов не меняет read_at
	MarkAsRead(db *gorm.DB, notification *models.Notification, at time.Time) error
	MarkAllAsRead(db *gorm.DB, userID string, at time.Time) (int64, error)

	// Email-доставка
	FindUnemailed(db *gorm.DB, now time.Time, maxAttempts, limit int) ([]models.Notification, error)
	MarkEmailed(db *gorm.DB, ids []string, at time.Time) error
	MarkEmailFailed(db *gorm.DB, id string, attempts int, retryAt time.Time) error

	DeleteByUser(db *gorm.DB, userID string) error
}

// NotificationCriteria - фильтр ленты уведомлений
type NotificationCriteria struct {
	UnreadOnly bool
	Type       models.NotificationType
	Page       Page
}

type notificationRepository struct{}

func NewNotificationRepository() NotificationRepository {
	return &notificationRepository{}
}

func (r *notificationRepository) Create(db *gorm.DB, notification *models.Notification) error {
	return db.Create(notification).Error
}

func (r *notificationRepository) CreateBulk(db *gorm.DB, notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return db.CreateInBatches(notifications, 100).Error
}

func (r *notificationRepository) FindByIDForUser(db *gorm.DB, id, userID string) (*models.Notification, error) {
	var notification models.Notification
	err := db.Where("id = ? AND user_id = ?", id, userID).First(&notification).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) FindUserNotifications(db *gorm.DB, userID string, criteria NotificationCriteria) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	query := db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if criteria.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if criteria.Type != "" {
		query = query.Where("type = ?", criteria.Type)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Scopes(paginate(criteria.Page)).
		Find(&notifications).Error
	return notifications, total, err
}

func (r *notificationRepository) CountUnread(db *gorm.DB, userID string) (int64, error) {
	var count int64
	err := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) MarkAsRead(db *gorm.DB, notification *models.Notification, at time.Time) error {
	if notification.IsRead {
		return nil
	}
	err := db.Model(&models.Notification{}).
		Where("id = ? AND is_read = ?", notification.ID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at}).Error
	if err != nil {
		return err
	}
	notification.IsRead = true
	notification.ReadAt = &at
	return nil
}

func (r *notificationRepository) MarkAllAsRead(db *gorm.DB, userID string, at time.Time) (int64, error) {
	result := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	return result.RowsAffected, result.Error
}

// FindUnemailed пропускает исчерпавшие попытки и те, чей повтор еще не наступил
func (r *notificationRepository) FindUnemailed(db *gorm.DB, now time.Time, maxAttempts, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := db.Where("is_emailed = ? AND email_attempts < ?", false, maxAttempts).
		Where("next_email_at IS NULL OR next_email_at <= ?", now).
		Order("created_at ASC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) MarkEmailed(db *gorm.DB, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return db.Model(&models.Notification{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{"is_emailed": true, "emailed_at": at}).Error
}

func (r *notificationRepository) MarkEmailFailed(db *gorm.DB, id string, attempts int, retryAt time.Time) error {
	return db.Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"email_attempts": attempts, "next_email_at": retryAt}).Error
}

func (r *notificationRepository) DeleteByUser(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&models.Notification{}).Error
}
