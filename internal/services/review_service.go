package services

import (
	"context"
	"fmt"
	"strings"
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
type ReviewService interface {
	Create(ctx context.Context, db *gorm.DB, actor Actor, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error)
	Respond(ctx context.Context, db *gorm.DB, actor Actor, reviewID, response string) (*dto.ReviewResponse, error)
	Report(ctx context.Context, db *gorm.DB, actor Actor, reviewID, reason string) (*dto.ReviewResponse, error)
	Delete(ctx context.Context, db *gorm.DB, actor Actor, reviewID string) error

	// List: публичный список содержит только одобренные отзывы, админ фильтрует как угодно
	List(ctx context.Context, db *gorm.DB, actor Actor, query dto.ReviewListQuery) (*dto.PageResult[*dto.ReviewResponse], error)
	RatingStats(ctx context.Context, db *gorm.DB, designerID string) (*dto.RatingResponse, error)
}

// =======================
// 2. РЕАЛИЗАЦИЯ
// =======================
type reviewService struct {
	reviewRepo     repositories.ReviewRepository
	userRepo       repositories.UserRepository
	bookingRepo    repositories.BookingRepository
	ratings        *RatingAggregator
	notifications  NotificationService
	locks          *lock.KeyedMutex
	requireBooking bool
	now            func() time.Time
}

func NewReviewService(
	reviewRepo repositories.ReviewRepository,
	userRepo repositories.UserRepository,
	bookingRepo repositories.BookingRepository,
	ratings *RatingAggregator,
	notifications NotificationService,
	locks *lock.KeyedMutex,
	requireBooking bool,
	now func() time.Time,
) ReviewService {
	return &reviewService{
		reviewRepo:     reviewRepo,
		userRepo:       userRepo,
		bookingRepo:    bookingRepo,
		ratings:        ratings,
		notifications:  notifications,
		locks:          locks,
		requireBooking: requireBooking,
		now:            now,
	}
}

// ---------------- Review Operations ----------------

func (s *reviewService) Create(ctx context.Context, db *gorm.DB, actor Actor, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	if !actor.IsCustomer() {
		return nil, apperrors.ErrInsufficientPermissions
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperrors.FieldError("rating", "Rating must be between 1 and 5")
	}
	comment := strings.TrimSpace(req.Comment)
	if comment == "" {
		return nil, apperrors.FieldError("comment", "Comment is required")
	}

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

	if s.requireBooking {
		booked, err := s.bookingRepo.HasBookingWith(tx, actor.ID, designer.ID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		if !booked {
			return nil, apperrors.ErrReviewNotAllowed
		}
	}

	review := &models.Review{
		CustomerID: actor.ID,
		DesignerID: designer.ID,
		Rating:     req.Rating,
		Comment:    comment,
	}
	workflow.ReviewVisible.Apply(review)

	if err := s.reviewRepo.Create(tx, review); err != nil {
		return nil, apperrors.InternalError(err)
	}
	// Агрегат пересчитывается до ответа: ошибка пересчета отменяет создание
	if err := s.ratings.Recompute(ctx, tx, designer.ID); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	metrics.Transition("review", "create")
	logger.CtxInfo(ctx, "Review created", "review_id", review.ID, "designer_id", designer.ID, "rating", review.Rating)

	s.notifications.Notify(ctx, db, newNotification(
		designer.ID,
		models.NotificationReviewReceived,
		"New review",
		fmt.Sprintf("You received a new %d-star review.", review.Rating),
		map[string]string{"review_id": review.ID},
	))

	return s.load(db, review.ID)
}

// Respond не трогает рейтинг
func (s *reviewService) Respond(ctx context.Context, db *gorm.DB, actor Actor, reviewID, response string) (*dto.ReviewResponse, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return nil, apperrors.FieldError("response", "Response is required")
	}

	review, err := s.reviewRepo.FindByID(db, reviewID)
	if err != nil {
		return nil, handleReviewError(err)
	}
	if review.DesignerID != actor.ID {
		return nil, apperrors.NewForbiddenError("Only the reviewed designer can respond")
	}

	now := s.now().UTC()
	review.DesignerResponse = &response
	review.ResponseDate = &now
	if err := s.reviewRepo.UpdateResponse(db, review); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "Review response saved", "review_id", review.ID)
	return dto.NewReviewResponse(review), nil
}

// Report ставит отзыв в очередь модерации; в рейтинге он продолжает учитываться
func (s *reviewService) Report(ctx context.Context, db *gorm.DB, actor Actor, reviewID, reason string) (*dto.ReviewResponse, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.FieldError("reason", "Reason is required")
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	review, err := s.reviewRepo.LockByID(tx, reviewID)
	if err != nil {
		return nil, handleReviewError(err)
	}
	if review.DesignerID != actor.ID {
		return nil, apperrors.NewForbiddenError("Only the reviewed designer can report a review")
	}

	next, err := workflow.NextReviewState(workflow.ReviewStateOf(review), workflow.ReviewReport, workflow.ActorDesigner)
	if err != nil {
		return nil, handleWorkflowError(err)
	}
	next.Apply(review)
	review.ReportReason = reason

	if err := s.reviewRepo.UpdateModeration(tx, review); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	metrics.Transition("review", string(workflow.ReviewReport))
	return s.load(db, review.ID)
}

// Delete доступен автору и админу, рейтинг пересчитывается в той же транзакции
func (s *reviewService) Delete(ctx context.Context, db *gorm.DB, actor Actor, reviewID string) error {
	review, err := s.reviewRepo.FindByID(db, reviewID)
	if err != nil {
		return handleReviewError(err)
	}
	if review.CustomerID != actor.ID && !actor.IsAdmin() {
		return apperrors.NewForbiddenError("Only the author or an admin can delete a review")
	}

	unlock := s.locks.Lock(designerLockKey(review.DesignerID))
	defer unlock()

	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if _, err := s.userRepo.LockByID(tx, review.DesignerID); err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.reviewRepo.Delete(tx, review.ID); err != nil {
		return handleReviewError(err)
	}
	if err := s.ratings.Recompute(ctx, tx, review.DesignerID); err != nil {
		return apperrors.InternalError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return apperrors.InternalError(err)
	}

	metrics.Transition("review", "delete")
	logger.CtxInfo(ctx, "Review deleted", "review_id", review.ID, "designer_id", review.DesignerID)
	return nil
}

func (s *reviewService) List(ctx context.Context, db *gorm.DB, actor Actor, query dto.ReviewListQuery) (*dto.PageResult[*dto.ReviewResponse], error) {
	page := repositories.Page{Page: query.Page, PageSize: query.PageSize}.Normalize()
	filter := repositories.ReviewFilter{
		DesignerID: query.Designer,
		Page:       page,
	}
	if actor.IsAdmin() {
		filter.IsFlagged = query.Flagged
		filter.IsApproved = query.Approved
	} else {
		approved := true
		filter.IsApproved = &approved
	}

	reviews, total, err := s.reviewRepo.FindWithFilter(db, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]*dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		items = append(items, dto.NewReviewResponse(&reviews[i]))
	}
	return &dto.PageResult[*dto.ReviewResponse]{Items: items, Total: total, Page: page.Page, PageSize: page.PageSize}, nil
}

func (s *reviewService) RatingStats(ctx context.Context, db *gorm.DB, designerID string) (*dto.RatingResponse, error) {
	designer, err := s.userRepo.FindByID(db, designerID)
	if err != nil || !designer.IsDesigner() {
		if err != nil && !isNotFoundErr(err) {
			return nil, apperrors.InternalError(err)
		}
		return nil, apperrors.ErrDesignerNotFound
	}

	stats, err := s.reviewRepo.GetRatingStats(db, designerID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.RatingResponse{
		DesignerID:    designerID,
		AverageRating: roundRating(stats.AverageRating),
		TotalReviews:  stats.TotalReviews,
		Distribution:  stats.Distribution,
	}, nil
}

func (s *reviewService) load(db *gorm.DB, reviewID string) (*dto.ReviewResponse, error) {
	review, err := s.reviewRepo.FindByID(db, reviewID)
	if err != nil {
		return nil, handleReviewError(err)
	}
	return dto.NewReviewResponse(review), nil
}
