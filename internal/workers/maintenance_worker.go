package workers

import (
	"context"
	"time"

	"mehndi_backend/internal/logger"
	"mehndi_backend/internal/services"

	"gorm.io/gorm"
)

// Размер пачки писем за один тик
const emailBatchSize = 50

// MaintenanceWorker доставляет письма по уведомлениям и чистит просроченные refresh-токены
type MaintenanceWorker struct {
	db            *gorm.DB
	notifications services.NotificationService
	auth          services.AuthService
	interval      time.Duration
}

func NewMaintenanceWorker(db *gorm.DB, notifications services.NotificationService, auth services.AuthService, interval time.Duration) *MaintenanceWorker {
	return &MaintenanceWorker{
		db:            db,
		notifications: notifications,
		auth:          auth,
		interval:      interval,
	}
}

// Start запускает фоновые задачи обслуживания
func (w *MaintenanceWorker) Start(ctx context.Context) {
	// Письма - на каждом тике
	go w.deliverEmails(ctx)

	// Токены - раз в сутки
	go w.cleanupTokens(ctx)
}

func (w *MaintenanceWorker) deliverEmails(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Email delivery worker stopped")
			return
		case <-ticker.C:
			w.DeliverOnce(ctx)
		}
	}
}

func (w *MaintenanceWorker) cleanupTokens(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Token cleanup worker stopped")
			return
		case <-ticker.C:
			w.CleanupOnce(ctx)
		}
	}
}

// DeliverOnce отправляет одну пачку писем; неотправленные остаются на следующий тик
func (w *MaintenanceWorker) DeliverOnce(ctx context.Context) int {
	sent, err := w.notifications.DeliverEmails(ctx, w.db.WithContext(ctx), emailBatchSize)
	if err != nil {
		logger.WorkerLog("email", "deliver", err)
		return 0
	}
	if sent > 0 {
		logger.WorkerLog("email", "deliver", nil, "sent", sent)
	}
	return sent
}

// CleanupOnce удаляет просроченные refresh-токены
func (w *MaintenanceWorker) CleanupOnce(ctx context.Context) int64 {
	removed, err := w.auth.CleanupExpired(ctx, w.db.WithContext(ctx))
	if err != nil {
		logger.WorkerLog("auth", "cleanup_tokens", err)
		return 0
	}
	if removed > 0 {
		logger.WorkerLog("auth", "cleanup_tokens", nil, "removed", removed)
	}
	return removed
}
