package services

import (
	"context"
	"fmt"
	"time"

	"mehndi_backend/internal/lock"
	"mehndi_backend/internal/logger"
	"mehndi_backend/internal/metrics"
	"mehndi_backend/internal/models"
	"mehndi_backend/internal/repositories"
	"mehndi_backend/internal/services/dto"
	"mehndi_backend/internal/workflow"
	"mehndi_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// =======================
// 1. ИНТЕРФЕЙС
// =======================
type BookingService interface {
	Create(ctx context.Context, db *gorm.DB, actor Actor, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)
	Get(ctx context.Context, db *gorm.DB, actor Actor, bookingID string) (*dto.BookingResponse, error)
	List(ctx context.Context, db *gorm.DB, actor Actor, query dto.BookingListQuery) (*dto.PageResult[*dto.BookingResponse], error)

	// UpdateStatus - общий вход: целевой статус переводится в событие автомата
	UpdateStatus(ctx context.Context, db *gorm.DB, actor Actor, bookingID string, req *dto.UpdateBookingStatusRequest) (*dto.BookingResponse, error)
	Cancel(ctx context.Context, db *gorm.DB, actor Actor, bookingID, reason string) (*dto.BookingResponse, error)

	// ProcessReminders создает напоминания о подтвержденных бронированиях, возвращает число обработанных
	ProcessReminders(ctx context.Context, db *gorm.DB) (int, error)
}

// =======================
// 2. РЕАЛИЗАЦИЯ
// =======================
type bookingService struct {
	bookingRepo   repositories.BookingRepository
	userRepo      repositories.UserRepository
	ratings       *RatingAggregator
	notifications NotificationService
	locks         *lock.KeyedMutex
	reminderLead  time.Duration
	now           func() time.Time
}

func NewBookingService(
	bookingRepo repositories.BookingRepository,
	userRepo repositories.UserRepository,
	ratings *RatingAggregator,
	notifications NotificationService,
	locks *lock.KeyedMutex,
	reminderLead time.Duration,
	now func() time.Time,
) BookingService {
	return &bookingService{
		bookingRepo:   bookingRepo,
		userRepo:      userRepo,
		ratings:       ratings,
		notifications: notifications,
		locks:         locks,
		reminderLead:  reminderLead,
		now:           now,
	}
}

// designerLockKey - все записи, меняющие расписание или рейтинг дизайнера, идут под этим ключом
func designerLockKey(designerID string) string {
	return "designer:" + designerID
}

// Create: проверка пересечения и вставка выполняются атомарно для дизайнера.
// Внутрипроцессный мьютекс по дизайнеру плюс SELECT ... FOR UPDATE его строки
// сериализуют конкурентные запросы; бронирования других дизайнеров не ждут.
func (s *bookingService) Create(ctx context.Context, db *gorm.DB, actor Actor, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	if !actor.IsCustomer() {
		return nil, apperrors.ErrInsufficientPermissions
	}
	if req.DesignerID == actor.ID {
		return nil, apperrors.ErrSelfBooking
	}
	if req.DurationHours < 1 || req.DurationHours > 12 {
		return nil, apperrors.FieldError("duration_hours", "Duration must be between 1 and 12 hours")
	}
	startsAt, err := req.StartsAt()
	if err != nil {
		return nil, apperrors.FieldError("booking_date", "Invalid booking date or time")
	}
	now := s.now().UTC()
	if startsAt.Before(now) {
		return nil, apperrors.ErrBookingInPast
	}
	interval := workflow.NewInterval(startsAt, req.DurationHours)

	unlock := s.locks.Lock(designerLockKey(req.DesignerID))
	defer unlock()

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	designer, err := s.userRepo.LockByID(tx, req.DesignerID)
	if err != nil {
		if isNotFoundErr(err) {
			return nil, apperrors.ErrDesignerNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	if !designer.IsDesigner() {
		return nil, apperrors.ErrDesignerNotFound
	}
	if !designer.IsApproved {
		return nil, apperrors.ErrDesignerNotApproved
	}

	conflict, err := s.bookingRepo.FindOverlapping(tx, designer.ID, interval.Start, interval.End)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if conflict != nil {
		metrics.BookingConflicts.Inc()
		logger.CtxInfo(ctx, "Booking rejected: overlapping interval",
			"designer_id", designer.ID, "conflicting_booking_id", conflict.ID)
		return nil, apperrors.ErrBookingConflict(conflict.ID)
	}

	booking := &models.Booking{
		CustomerID:     actor.ID,
		DesignerID:     designer.ID,
		StartsAt:       interval.Start,
		EndsAt:         interval.End,
		DurationHours:  req.DurationHours,
		EventType:      req.EventType,
		Location:       req.Location,
		Notes:          req.Notes,
		EstimatedPrice: req.EstimatedPrice,
		Status:         models.BookingStatusPending,
	}
	if err := s.bookingRepo.Create(tx, booking); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := s.ratings.Recompute(ctx, tx, designer.ID); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	metrics.BookingsCreated.Inc()
	metrics.Transition("booking", "create")
	logger.CtxInfo(ctx, "Booking created", "booking_id", booking.ID, "designer_id", designer.ID)

	s.notifications.Notify(ctx, db, newBookingNotification(
		designer.ID,
		models.NotificationBookingCreated,
		"New booking request",
		fmt.Sprintf("You have a new %s booking request for %s.", booking.EventType, formatSlot(booking.StartsAt)),
		booking,
	))

	return s.load(db, booking.ID)
}

func (s *bookingService) Get(ctx context.Context, db *gorm.DB, actor Actor, bookingID string) (*dto.BookingResponse, error) {
	booking, err := s.bookingRepo.FindByID(db, bookingID)
	if err != nil {
		return nil, handleBookingError(err)
	}
	// Чужое бронирование для вызывающего не существует
	if !booking.IsParty(actor.ID) && !actor.IsAdmin() {
		return nil, apperrors.ErrBookingNotFound
	}
	return dto.NewBookingResponse(booking, s.now().UTC()), nil
}

func (s *bookingService) List(ctx context.Context, db *gorm.DB, actor Actor, query dto.BookingListQuery) (*dto.PageResult[*dto.BookingResponse], error) {
	page := repositories.Page{Page: query.Page, PageSize: query.PageSize}.Normalize()
	filter := repositories.BookingFilter{
		CustomerID: query.Customer,
		DesignerID: query.Designer,
		Page:       page,
	}

	// Видимость: клиент - свои, дизайнер - полученные, админ - все
	switch actor.Role {
	case models.UserRoleCustomer:
		filter.CustomerID = actor.ID
	case models.UserRoleDesigner:
		filter.DesignerID = actor.ID
	case models.UserRoleAdmin:
	default:
		filter.PartyID = actor.ID
	}

	if query.Status != "" {
		status := models.BookingStatus(query.Status)
		filter.Status = &status
	}
	from, to, err := parseDateRange(query.DateFrom, query.DateTo)
	if err != nil {
		return nil, err
	}
	filter.DateFrom, filter.DateTo = from, to

	bookings, total, err := s.bookingRepo.FindWithFilter(db, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	now := s.now().UTC()
	items := make([]*dto.BookingResponse, 0, len(bookings))
	for i := range bookings {
		items = append(items, dto.NewBookingResponse(&bookings[i], now))
	}
	return &dto.PageResult[*dto.BookingResponse]{Items: items, Total: total, Page: page.Page, PageSize: page.PageSize}, nil
}

func (s *bookingService) UpdateStatus(ctx context.Context, db *gorm.DB, actor Actor, bookingID string, req *dto.UpdateBookingStatusRequest) (*dto.BookingResponse, error) {
	target := models.BookingStatus(req.Status)
	event, ok := workflow.BookingEventFor(target)
	if !ok {
		// pending и неизвестные статусы клиентом не назначаются
		booking, err := s.bookingRepo.FindByID(db, bookingID)
		if err != nil {
			return nil, handleBookingError(err)
		}
		return nil, apperrors.ErrInvalidTransition(nil, "booking", string(booking.Status), string(target))
	}
	return s.transition(ctx, db, actor, bookingID, event, req.Reason)
}

func (s *bookingService) Cancel(ctx context.Context, db *gorm.DB, actor Actor, bookingID, reason string) (*dto.BookingResponse, error) {
	return s.transition(ctx, db, actor, bookingID, workflow.BookingCancel, reason)
}

// transition применяет событие автомата к бронированию под блокировкой дизайнера
func (s *bookingService) transition(ctx context.Context, db *gorm.DB, actor Actor, bookingID string, event workflow.BookingEvent, reason string) (*dto.BookingResponse, error) {
	current, err := s.bookingRepo.FindByID(db, bookingID)
	if err != nil {
		return nil, handleBookingError(err)
	}

	unlock := s.locks.Lock(designerLockKey(current.DesignerID))
	defer unlock()

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	booking, err := s.bookingRepo.LockByID(tx, bookingID)
	if err != nil {
		return nil, handleBookingError(err)
	}

	role, ok := bookingActor(actor, booking)
	if !ok {
		return nil, apperrors.ErrBookingNotParty
	}

	now := s.now().UTC()
	next, err := workflow.NextBookingStatus(booking.Status, workflow.BookingCommand{
		Event:    event,
		Actor:    role,
		Reason:   reason,
		StartsAt: booking.StartsAt,
		Now:      now,
	})
	if err != nil {
		return nil, handleWorkflowError(err)
	}

	booking.Status = next
	switch next {
	case models.BookingStatusConfirmed:
		booking.ConfirmedAt = &now
	case models.BookingStatusCompleted:
		booking.CompletedAt = &now
	case models.BookingStatusCancelled:
		cancelledBy := actor.ID
		booking.CancelledByID = &cancelledBy
		booking.CancellationReason = reason
		booking.CancelledAt = &now
	}

	if err := s.bookingRepo.UpdateStatus(tx, booking); err != nil {
		return nil, handleBookingError(err)
	}
	if err := s.ratings.Recompute(ctx, tx, booking.DesignerID); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	metrics.Transition("booking", string(event))
	logger.CtxInfo(ctx, "Booking status changed",
		"booking_id", booking.ID, "event", event, "status", next, "actor", role)

	s.notifications.Notify(ctx, db, s.transitionNotifications(actor, booking)...)

	return s.load(db, booking.ID)
}

// transitionNotifications - кого уведомить о новом состоянии
func (s *bookingService) transitionNotifications(actor Actor, b *models.Booking) []*models.Notification {
	slot := formatSlot(b.StartsAt)
	switch b.Status {
	case models.BookingStatusConfirmed:
		return []*models.Notification{newBookingNotification(b.CustomerID, models.NotificationBookingConfirmed,
			"Booking confirmed", fmt.Sprintf("Your booking for %s has been confirmed.", slot), b)}
	case models.BookingStatusCompleted:
		out := []*models.Notification{newBookingNotification(b.CustomerID, models.NotificationBookingCompleted,
			"Booking completed", fmt.Sprintf("Your booking for %s is completed. Leave a review!", slot), b)}
		if actor.ID != b.DesignerID {
			out = append(out, newBookingNotification(b.DesignerID, models.NotificationBookingCompleted,
				"Booking completed", fmt.Sprintf("The booking for %s was marked as completed.", slot), b))
		}
		return out
	case models.BookingStatusCancelled:
		return []*models.Notification{newBookingNotification(b.Counterpart(actor.ID), models.NotificationBookingCancelled,
			"Booking cancelled", fmt.Sprintf("The booking for %s was cancelled: %s", slot, b.CancellationReason), b)}
	}
	return nil
}

func (s *bookingService) ProcessReminders(ctx context.Context, db *gorm.DB) (int, error) {
	now := s.now().UTC()
	due, err := s.bookingRepo.FindDueForReminder(db, now, s.reminderLead, 100)
	if err != nil {
		return 0, err
	}

	processed := 0
	for i := range due {
		b := &due[i]
		marked, err := s.bookingRepo.MarkReminderSent(db, b.ID, now)
		if err != nil {
			logger.CtxWithError(ctx, "Failed to mark booking reminder", err, "booking_id", b.ID)
			continue
		}
		if !marked {
			continue
		}

		msg := fmt.Sprintf("Reminder: %s booking at %s, %s.", b.EventType, formatSlot(b.StartsAt), b.Location)
		s.notifications.Notify(ctx, db,
			newBookingNotification(b.CustomerID, models.NotificationBookingReminder, "Upcoming booking", msg, b),
			newBookingNotification(b.DesignerID, models.NotificationBookingReminder, "Upcoming booking", msg, b),
		)
		processed++
	}
	return processed, nil
}

func (s *bookingService) load(db *gorm.DB, bookingID string) (*dto.BookingResponse, error) {
	booking, err := s.bookingRepo.FindByID(db, bookingID)
	if err != nil {
		return nil, handleBookingError(err)
	}
	return dto.NewBookingResponse(booking, s.now().UTC()), nil
}

func formatSlot(t time.Time) string {
	return t.UTC().Format(dto.DateLayout + " " + dto.TimeLayout)
}

// parseDateRange: date_to включает весь указанный день
func parseDateRange(fromRaw, toRaw string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if fromRaw != "" {
		t, err := time.ParseInLocation(dto.DateLayout, fromRaw, time.UTC)
		if err != nil {
			return nil, nil, apperrors.FieldError("date_from", "Invalid date")
		}
		from = &t
	}
	if toRaw != "" {
		t, err := time.ParseInLocation(dto.DateLayout, toRaw, time.UTC)
		if err != nil {
			return nil, nil, apperrors.FieldError("date_to", "Invalid date")
		}
		t = t.Add(24 * time.Hour)
		to = &t
	}
	return from, to, nil
}
