package workers

import (
	"context"
	"time"

	"mehndi_backend/internal/logger"
	"mehndi_backend/internal/services"

	"gorm.io/gorm"
)

// BookingWorker создает напоминания о подтвержденных бронированиях
type BookingWorker struct {
	db       *gorm.DB
	bookings services.BookingService
	interval time.Duration
}

func NewBookingWorker(db *gorm.DB, bookings services.BookingService, interval time.Duration) *BookingWorker {
	return &BookingWorker{db: db, bookings: bookings, interval: interval}
}

// Start запускает фоновые задачи для бронирований
func (w *BookingWorker) Start(ctx context.Context) {
	go w.sendReminders(ctx)
}

func (w *BookingWorker) sendReminders(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Booking worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce - один проход по бронированиям, для которых подошло время напоминания
func (w *BookingWorker) RunOnce(ctx context.Context) int {
	processed, err := w.bookings.ProcessReminders(ctx, w.db.WithContext(ctx))
	if err != nil {
		logger.WorkerLog("booking", "reminders", err)
		return 0
	}
	if processed > 0 {
		logger.WorkerLog("booking", "reminders", nil, "processed", processed)
	}
	return processed
}
