package services

import (
	"context"
	"math"

	"mehndi_backend/internal/logger"
	"mehndi_backend/internal/metrics"
	"mehndi_backend/internal/repositories"

	"gorm.io/gorm"
)

// RatingAggregator пересчитывает производные поля дизайнера:
// average_rating (среднее по одобренным отзывам) и total_bookings (все, кроме отмененных).
// Вызывается внутри транзакции триггерной записи, под блокировкой дизайнера.
type RatingAggregator struct {
	userRepo    repositories.UserRepository
	reviewRepo  repositories.ReviewRepository
	bookingRepo repositories.BookingRepository
}

func NewRatingAggregator(
	userRepo repositories.UserRepository,
	reviewRepo repositories.ReviewRepository,
	bookingRepo repositories.BookingRepository,
) *RatingAggregator {
	return &RatingAggregator{
		userRepo:    userRepo,
		reviewRepo:  reviewRepo,
		bookingRepo: bookingRepo,
	}
}

// Recompute. Ошибка фатальна для вызывающей транзакции.
func (a *RatingAggregator) Recompute(ctx context.Context, tx *gorm.DB, designerID string) error {
	avg, err := a.reviewRepo.AverageApproved(tx, designerID)
	if err != nil {
		return err
	}
	total, err := a.bookingRepo.CountNotCancelled(tx, designerID)
	if err != nil {
		return err
	}

	avg = roundRating(avg)
	if err := a.userRepo.UpdateAggregates(tx, designerID, total, avg); err != nil {
		return err
	}

	metrics.RatingRecomputes.Inc()
	logger.CtxDebug(ctx, "Designer aggregates recomputed",
		"designer_id", designerID, "average_rating", avg, "total_bookings", total)
	return nil
}

// roundRating - два знака после запятой, как хранит рейтинг витрина
func roundRating(v float64) float64 {
	return math.Round(v*100) / 100
}
