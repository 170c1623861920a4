package services

import (
	"context"
	"encoding/json"
	"time"

	"mehndi_backend/internal/email"
	"mehndi_backend/internal/logger"
	"mehndi_backend/internal/metrics"
	"mehndi_backend/internal/models"
	"mehndi_backend/internal/repositories"
	"mehndi_backend/internal/services/dto"
	"mehndi_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// =======================
// 1. ИНТЕРФЕЙС
// =======================

// NotificationService - почтовый ящик пользователя.
// Notify вызывается после фиксации транзакции и никогда не возвращает ошибку.
type NotificationService interface {
	Notify(ctx context.Context, db *gorm.DB, notifications ...*models.Notification)

	List(ctx context.Context, db *gorm.DB, userID string, query dto.NotificationListQuery) (*dto.PageResult[*dto.NotificationResponse], error)
	UnreadCount(ctx context.Context, db *gorm.DB, userID string) (int64, error)
	MarkRead(ctx context.Context, db *gorm.DB, userID, notificationID string) (*dto.NotificationResponse, error)
	MarkAllRead(ctx context.Context, db *gorm.DB, userID string) (int64, error)

	// DeliverEmails отправляет письма по еще не отправленным уведомлениям, возвращает число отправленных
	DeliverEmails(ctx context.Context, db *gorm.DB, batchSize int) (int, error)
}

// =======================
// 2. РЕАЛИЗАЦИЯ
// =======================

// Повторы письма: задержка удваивается от emailRetryBase, после emailMaxAttempts попыток письмо не отправляется
const (
	emailMaxAttempts = 5
	emailRetryBase   = time.Minute
)

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	userRepo         repositories.UserRepository
	provider         email.Provider
	templates        email.TemplateRenderer
	now              func() time.Time
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	userRepo repositories.UserRepository,
	provider email.Provider,
	templates email.TemplateRenderer,
	now func() time.Time,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		provider:         provider,
		templates:        templates,
		now:              now,
	}
}

func (s *notificationService) Notify(ctx context.Context, db *gorm.DB, notifications ...*models.Notification) {
	var batch []*models.Notification
	for _, n := range notifications {
		if n != nil && n.UserID != "" {
			batch = append(batch, n)
		}
	}
	if len(batch) == 0 {
		return
	}

	if err := s.notificationRepo.CreateBulk(db.WithContext(ctx), batch); err != nil {
		metrics.NotificationFailures.Add(float64(len(batch)))
		logger.CtxWithError(ctx, "Failed to enqueue notifications", err, "count", len(batch))
		return
	}
	for _, n := range batch {
		metrics.NotificationsEnqueued.WithLabelValues(string(n.Type)).Inc()
	}
}

func (s *notificationService) List(ctx context.Context, db *gorm.DB, userID string, query dto.NotificationListQuery) (*dto.PageResult[*dto.NotificationResponse], error) {
	page := repositories.Page{Page: query.Page, PageSize: query.PageSize}.Normalize()
	notifications, total, err := s.notificationRepo.FindUserNotifications(db, userID, repositories.NotificationCriteria{
		UnreadOnly: query.UnreadOnly,
		Page:       page,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]*dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		items = append(items, dto.NewNotificationResponse(&notifications[i]))
	}
	return &dto.PageResult[*dto.NotificationResponse]{Items: items, Total: total, Page: page.Page, PageSize: page.PageSize}, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	count, err := s.notificationRepo.CountUnread(db, userID)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return count, nil
}

// MarkRead идемпотентна; чужое уведомление неотличимо от несуществующего
func (s *notificationService) MarkRead(ctx context.Context, db *gorm.DB, userID, notificationID string) (*dto.NotificationResponse, error) {
	notification, err := s.notificationRepo.FindByIDForUser(db, notificationID, userID)
	if err != nil {
		return nil, handleNotificationError(err)
	}
	if err := s.notificationRepo.MarkAsRead(db, notification, s.now().UTC()); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewNotificationResponse(notification), nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	updated, err := s.notificationRepo.MarkAllAsRead(db, userID, s.now().UTC())
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return updated, nil
}

func (s *notificationService) DeliverEmails(ctx context.Context, db *gorm.DB, batchSize int) (int, error) {
	now := s.now().UTC()
	notifications, err := s.notificationRepo.FindUnemailed(db, now, emailMaxAttempts, batchSize)
	if err != nil {
		return 0, err
	}

	recipients := make(map[string]*models.User)
	var delivered []string
	for i := range notifications {
		n := &notifications[i]

		user, ok := recipients[n.UserID]
		if !ok {
			user, err = s.userRepo.FindByID(db, n.UserID)
			if err != nil {
				logger.CtxWithError(ctx, "Notification recipient not found", err, "notification_id", n.ID)
				s.deferEmail(ctx, db, n, now)
				continue
			}
			recipients[n.UserID] = user
		}

		if err := s.send(ctx, user, n); err != nil {
			logger.CtxWithError(ctx, "Failed to email notification", err, "notification_id", n.ID, "to", user.Email)
			s.deferEmail(ctx, db, n, now)
			continue
		}
		delivered = append(delivered, n.ID)
	}

	if err := s.notificationRepo.MarkEmailed(db, delivered, now); err != nil {
		return 0, err
	}
	return len(delivered), nil
}

// deferEmail откладывает повтор, чтобы сбойные письма не занимали голову очереди
func (s *notificationService) deferEmail(ctx context.Context, db *gorm.DB, n *models.Notification, now time.Time) {
	attempts := n.EmailAttempts + 1
	retryAt := now.Add(emailRetryBase << (attempts - 1))
	if err := s.notificationRepo.MarkEmailFailed(db, n.ID, attempts, retryAt); err != nil {
		logger.CtxWithError(ctx, "Failed to record email attempt", err, "notification_id", n.ID)
		return
	}
	if attempts >= emailMaxAttempts {
		logger.CtxWarn(ctx, "Giving up on notification email", "notification_id", n.ID, "attempts", attempts)
	}
}

func (s *notificationService) send(ctx context.Context, user *models.User, n *models.Notification) error {
	data := email.TemplateData{
		"Name":    dto.NewUserSummary(user).FullName,
		"Title":   n.Title,
		"Message": n.Message,
		"AppName": "Mehndi Marketplace",
	}
	if n.BookingID != nil {
		data["BookingID"] = *n.BookingID
	}
	html, err := s.templates.Render(email.NotificationTemplate, data)
	if err != nil {
		return err
	}
	return s.provider.Send(ctx, &email.Email{
		To:       user.Email,
		Subject:  n.Title,
		Body:     n.Message,
		HTMLBody: html,
	})
}

// =======================
// Конструкторы уведомлений
// =======================

func newNotification(userID string, kind models.NotificationType, title, message string, data map[string]string) *models.Notification {
	n := &models.Notification{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
	}
	if len(data) > 0 {
		if raw, err := json.Marshal(data); err == nil {
			n.Data = datatypes.JSON(raw)
		}
	}
	return n
}

func newBookingNotification(userID string, kind models.NotificationType, title, message string, booking *models.Booking) *models.Notification {
	n := newNotification(userID, kind, title, message, map[string]string{
		"designer_id": booking.DesignerID,
		"customer_id": booking.CustomerID,
	})
	bookingID := booking.ID
	n.BookingID = &bookingID
	return n
}
