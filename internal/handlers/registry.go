package handlers

import (
	"mehndi_backend/internal/auth"
	"mehndi_backend/internal/services"
	"mehndi_backend/internal/validator"
)

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	Base                *BaseHandler
	AuthHandler         *AuthHandler
	UserHandler         *UserHandler
	AdminUserHandler    *AdminUserHandler
	DesignHandler       *DesignHandler
	BookingHandler      *BookingHandler
	ReviewHandler       *ReviewHandler
	NotificationHandler *NotificationHandler
}

// NewAppHandlers собирает хэндлеры поверх контейнера сервисов
func NewAppHandlers(svc *services.ServiceContainer, v *validator.Validator, tokens *auth.TokenManager) *AppHandlers {
	base := NewBaseHandler(v, tokens)

	return &AppHandlers{
		Base:                base,
		AuthHandler:         NewAuthHandler(base, svc.Auth),
		UserHandler:         NewUserHandler(base, svc.Users, svc.Reviews),
		AdminUserHandler:    NewAdminUserHandler(base, svc.Users, svc.Moderation),
		DesignHandler:       NewDesignHandler(base, svc.Catalog, svc.Moderation),
		BookingHandler:      NewBookingHandler(base, svc.Bookings, svc.Export),
		ReviewHandler:       NewReviewHandler(base, svc.Reviews, svc.Moderation),
		NotificationHandler: NewNotificationHandler(base, svc.Notifications),
	}
}
