package services

import (
	"time"

	"mehndi_backend/internal/auth"
	"mehndi_backend/internal/cache"
	"mehndi_backend/internal/config"
	"mehndi_backend/internal/email"
	"mehndi_backend/internal/lock"
	"mehndi_backend/internal/repositories"
	"mehndi_backend/internal/storage"
)

// Dependencies - внешние зависимости, из которых собираются сервисы
type Dependencies struct {
	Config  *config.Config
	Storage storage.Storage
	Views   cache.ViewTracker
	Email   email.Provider
	Tokens  *auth.TokenManager
	Now     func() time.Time
}

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	Auth          AuthService
	Users         UserService
	Catalog       CatalogService
	Moderation    ModerationService
	Bookings      BookingService
	Reviews       ReviewService
	Notifications NotificationService
	Export        ExportService
	Ratings       *RatingAggregator
}

// NewServiceContainer создает репозитории и сервисы с общим KeyedMutex,
// чтобы все записи одного дизайнера сериализовались в одном процессе.
func NewServiceContainer(deps Dependencies) *ServiceContainer {
	cfg := deps.Config
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	userRepo := repositories.NewUserRepository()
	refreshRepo := repositories.NewRefreshTokenRepository()
	categoryRepo := repositories.NewCategoryRepository()
	designRepo := repositories.NewDesignRepository()
	bookingRepo := repositories.NewBookingRepository()
	reviewRepo := repositories.NewReviewRepository()
	notificationRepo := repositories.NewNotificationRepository()

	views := deps.Views
	if views == nil {
		views = cache.NewDBViewTracker(designRepo, cfg.ViewSession())
	}

	locks := lock.NewKeyedMutex()
	ratings := NewRatingAggregator(userRepo, reviewRepo, bookingRepo)
	notifications := NewNotificationService(notificationRepo, userRepo, deps.Email, email.NewTemplateManager(), now)

	return &ServiceContainer{
		Auth: NewAuthService(userRepo, refreshRepo, deps.Tokens,
			time.Duration(cfg.JWT.RefreshTTLHours)*time.Hour, now),
		Users: NewUserService(userRepo, designRepo, bookingRepo),
		Catalog: NewCatalogService(designRepo, categoryRepo, userRepo, deps.Storage, views, locks, UploadPolicy{
			MaxSize:      cfg.Upload.MaxSize,
			AllowedTypes: cfg.Upload.AllowedTypes,
		}),
		Moderation: NewModerationService(userRepo, designRepo, bookingRepo, reviewRepo,
			notificationRepo, refreshRepo, ratings, notifications, locks, now),
		Bookings: NewBookingService(bookingRepo, userRepo, ratings, notifications, locks,
			time.Duration(cfg.Booking.ReminderLeadHours)*time.Hour, now),
		Reviews: NewReviewService(reviewRepo, userRepo, bookingRepo, ratings, notifications, locks,
			cfg.Booking.ReviewRequiresBooking, now),
		Notifications: notifications,
		Export:        NewExportService(bookingRepo),
		Ratings:       ratings,
	}
}
