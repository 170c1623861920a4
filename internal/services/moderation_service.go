package services

import (
	"context"
	"errors"
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

// Размер топов на панели администратора
const dashboardTopLimit = 5

// =======================
// 1. ИНТЕРФЕЙС
// =======================

// ModerationService - административные переходы: одобрение дизайнеров,
// модерация дизайнов и отзывов, удаление пользователей, сводка.
type ModerationService interface {
	// Designers
	ApproveDesigner(ctx context.Context, db *gorm.DB, actor Actor, userID string) (*dto.UserResponse, error)
	PendingDesigners(ctx context.Context, db *gorm.DB, query dto.PageQuery) (*dto.PageResult[*dto.UserResponse], error)
	DeleteUser(ctx context.Context, db *gorm.DB, actor Actor, userID string) error

	// Designs
	ApproveDesign(ctx context.Context, db *gorm.DB, actor Actor, designID string) (*dto.DesignResponse, error)
	RejectDesign(ctx context.Context, db *gorm.DB, actor Actor, designID, reason string) (*dto.DesignResponse, error)

	// Reviews: flag, unflag, approve, reject
	ModerateReview(ctx context.Context, db *gorm.DB, actor Actor, reviewID string, event workflow.ReviewEvent) (*dto.ReviewResponse, error)

	Dashboard(ctx context.Context, db *gorm.DB) (*dto.AdminDashboard, error)
}

// =======================
// 2. РЕАЛИЗАЦИЯ
// =======================
type moderationService struct {
	userRepo         repositories.UserRepository
	designRepo       repositories.DesignRepository
	bookingRepo      repositories.BookingRepository
	reviewRepo       repositories.ReviewRepository
	notificationRepo repositories.NotificationRepository
	refreshRepo      repositories.RefreshTokenRepository
	ratings          *RatingAggregator
	notifications    NotificationService
	locks            *lock.KeyedMutex
	now              func() time.Time
}

func NewModerationService(
	userRepo repositories.UserRepository,
	designRepo repositories.DesignRepository,
	bookingRepo repositories.BookingRepository,
	reviewRepo repositories.ReviewRepository,
	notificationRepo repositories.NotificationRepository,
	refreshRepo repositories.RefreshTokenRepository,
	ratings *RatingAggregator,
	notifications NotificationService,
	locks *lock.KeyedMutex,
	now func() time.Time,
) ModerationService {
	return &moderationService{
		userRepo:         userRepo,
		designRepo:       designRepo,
		bookingRepo:      bookingRepo,
		reviewRepo:       reviewRepo,
		notificationRepo: notificationRepo,
		refreshRepo:      refreshRepo,
		ratings:          ratings,
		notifications:    notifications,
		locks:            locks,
		now:              now,
	}
}

// ---------------- Designers ----------------

// ApproveDesigner идемпотентен; не-дизайнер неотличим от несуществующего пользователя
func (s *moderationService) ApproveDesigner(ctx context.Context, db *gorm.DB, actor Actor, userID string) (*dto.UserResponse, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	user, err := s.userRepo.LockByID(tx, userID)
	if err != nil {
		return nil, handleUserError(err)
	}

	changed, err := workflow.ApproveDesigner(user, roleActor(actor.Role))
	if err != nil {
		var te *workflow.TransitionError
		if errors.As(err, &te) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, handleWorkflowError(err)
	}
	if !changed {
		return dto.NewUserResponse(user, true), nil
	}

	now := s.now().UTC()
	user.IsApproved = true
	user.ApprovedAt = &now
	if err := s.userRepo.SetApproved(tx, user); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	metrics.Transition("user", "approve")
	logger.CtxInfo(ctx, "Designer approved", "designer_id", user.ID, "admin_id", actor.ID)

	s.notifications.Notify(ctx, db, newNotification(
		user.ID,
		models.NotificationDesignerApproved,
		"Your account is approved",
		"Your designer account has been approved. You can now publish designs and accept bookings.",
		nil,
	))
	return dto.NewUserResponse(user, true), nil
}

func (s *moderationService) PendingDesigners(ctx context.Context, db *gorm.DB, query dto.PageQuery) (*dto.PageResult[*dto.UserResponse], error) {
	role := models.UserRoleDesigner
	approved := false
	page := repositories.Page{Page: query.Page, PageSize: query.PageSize}.Normalize()
	users, total, err := s.userRepo.FindWithFilter(db, repositories.UserFilter{
		Role:       &role,
		IsApproved: &approved,
		OrderBy:    "created_at",
		Page:       page,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	items := make([]*dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserResponse(&users[i], true))
	}
	return &dto.PageResult[*dto.UserResponse]{Items: items, Total: total, Page: page.Page, PageSize: page.PageSize}, nil
}

// DeleteUser - жесткое удаление одной транзакцией: дизайны пользователя,
// его реакции, избранное и просмотры, бронирования и отзывы с обеих сторон,
// уведомления и refresh-токены. Агрегаты затронутых дизайнеров пересчитываются
// в той же транзакции под их блокировками.
func (s *moderationService) DeleteUser(ctx context.Context, db *gorm.DB, actor Actor, userID string) error {
	if !actor.IsAdmin() {
		return apperrors.ErrInsufficientPermissions
	}
	if actor.ID == userID {
		return apperrors.ErrCannotModifySelf
	}

	target, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return handleUserError(err)
	}

	affected, err := s.affectedDesigners(db, target)
	if err != nil {
		return apperrors.InternalError(err)
	}
	keys := make([]string, 0, len(affected)+1)
	for _, id := range affected {
		keys = append(keys, designerLockKey(id))
	}
	keys = append(keys, designerLockKey(target.ID))

	unlock := s.locks.LockMany(keys)
	defer unlock()

	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if _, err := s.userRepo.LockByID(tx, target.ID); err != nil {
		return handleUserError(err)
	}

	steps := []func(*gorm.DB, string) error{
		s.designRepo.DeleteByDesigner,
		s.designRepo.DeleteUserActivity,
		s.bookingRepo.DeleteByUser,
		s.reviewRepo.DeleteByUser,
		s.notificationRepo.DeleteByUser,
		s.refreshRepo.DeleteByUserID,
		s.userRepo.Delete,
	}
	for _, step := range steps {
		if err := step(tx, target.ID); err != nil {
			return handleUserError(err)
		}
	}

	for _, designerID := range affected {
		if _, err := s.userRepo.LockByID(tx, designerID); err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				continue
			}
			return apperrors.InternalError(err)
		}
		if err := s.ratings.Recompute(ctx, tx, designerID); err != nil {
			return apperrors.InternalError(err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return apperrors.InternalError(err)
	}

	metrics.Transition("user", "delete")
	logger.CtxInfo(ctx, "User deleted", "user_id", target.ID, "role", target.Role,
		"admin_id", actor.ID, "recomputed_designers", len(affected))
	return nil
}

// affectedDesigners - дизайнеры, чьи агрегаты зависят от записей удаляемого покупателя
func (s *moderationService) affectedDesigners(db *gorm.DB, target *models.User) ([]string, error) {
	if target.IsDesigner() {
		return nil, nil
	}
	booked, err := s.bookingRepo.FindCounterpartDesigners(db, target.ID)
	if err != nil {
		return nil, err
	}
	reviewed, err := s.reviewRepo.FindReviewedDesigners(db, target.ID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []string
	for _, id := range append(booked, reviewed...) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out, nil
}

// ---------------- Designs ----------------

func (s *moderationService) ApproveDesign(ctx context.Context, db *gorm.DB, actor Actor, designID string) (*dto.DesignResponse, error) {
	return s.moderateDesign(ctx, db, actor, designID, workflow.DesignApprove, "")
}

func (s *moderationService) RejectDesign(ctx context.Context, db *gorm.DB, actor Actor, designID, reason string) (*dto.DesignResponse, error) {
	return s.moderateDesign(ctx, db, actor, designID, workflow.DesignReject, reason)
}

func (s *moderationService) moderateDesign(ctx context.Context, db *gorm.DB, actor Actor, designID string, event workflow.DesignEvent, reason string) (*dto.DesignResponse, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	design, err := s.designRepo.LockByID(tx, designID)
	if err != nil {
		return nil, handleDesignError(err)
	}

	next, err := workflow.NextDesignStatus(design.Status, event, roleActor(actor.Role), reason)
	if err != nil {
		return nil, handleWorkflowError(err)
	}

	now := s.now().UTC()
	design.Status = next
	design.ReviewedAt = &now
	if next == models.DesignStatusRejected {
		design.RejectionReason = reason
	}
	if err := s.designRepo.UpdateModeration(tx, design); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	metrics.Transition("design", string(event))
	logger.CtxInfo(ctx, "Design moderated", "design_id", design.ID, "status", next, "admin_id", actor.ID)

	var n *models.Notification
	data := map[string]string{"design_id": design.ID}
	if next == models.DesignStatusApproved {
		n = newNotification(design.DesignerID, models.NotificationDesignApproved,
			"Design approved", fmt.Sprintf("Your design %q is now visible in the gallery.", design.Title), data)
	} else {
		n = newNotification(design.DesignerID, models.NotificationDesignRejected,
			"Design rejected", fmt.Sprintf("Your design %q was rejected: %s", design.Title, reason), data)
	}
	s.notifications.Notify(ctx, db, n)

	updated, err := s.designRepo.FindByID(db, design.ID)
	if err != nil {
		return nil, handleDesignError(err)
	}
	return dto.NewDesignResponse(updated), nil
}

// ---------------- Reviews ----------------

// ModerateReview применяет событие автомата модерации; пересчет рейтинга -
// только если переход меняет участие отзыва в среднем.
func (s *moderationService) ModerateReview(ctx context.Context, db *gorm.DB, actor Actor, reviewID string, event workflow.ReviewEvent) (*dto.ReviewResponse, error) {
	review, err := s.reviewRepo.FindByID(db, reviewID)
	if err != nil {
		return nil, handleReviewError(err)
	}

	unlock := s.locks.Lock(designerLockKey(review.DesignerID))
	defer unlock()

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	locked, err := s.reviewRepo.LockByID(tx, reviewID)
	if err != nil {
		return nil, handleReviewError(err)
	}

	current := workflow.ReviewStateOf(locked)
	next, err := workflow.NextReviewState(current, event, roleActor(actor.Role))
	if err != nil {
		return nil, handleWorkflowError(err)
	}
	next.Apply(locked)
	if !next.Flagged() {
		locked.ReportReason = ""
	}

	if err := s.reviewRepo.UpdateModeration(tx, locked); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if workflow.AffectsRating(current, next) {
		if _, err := s.userRepo.LockByID(tx, locked.DesignerID); err != nil {
			return nil, apperrors.InternalError(err)
		}
		if err := s.ratings.Recompute(ctx, tx, locked.DesignerID); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	metrics.Transition("review", string(event))
	logger.CtxInfo(ctx, "Review moderated", "review_id", locked.ID, "from", current, "to", next)

	locked.Customer = review.Customer
	return dto.NewReviewResponse(locked), nil
}

// ---------------- Dashboard ----------------

func (s *moderationService) Dashboard(ctx context.Context, db *gorm.DB) (*dto.AdminDashboard, error) {
	users, err := s.userRepo.CountByRole(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	designs, err := s.designRepo.CountByStatus(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	bookings, err := s.bookingRepo.CountByStatus(db, repositories.BookingFilter{})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	reviews, err := s.reviewRepo.CountStats(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	topDesigners, err := s.userRepo.TopDesigners(db, dashboardTopLimit)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	topDesigns, err := s.designRepo.FindTrending(db, dashboardTopLimit)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := &dto.AdminDashboard{
		Users: dto.UserTotals{
			Total:             users.Total,
			Customers:         users.Customers,
			Designers:         users.Designers,
			ApprovedDesigners: users.ApprovedDesigners,
			PendingDesigners:  users.PendingDesigners,
		},
		Designs: dto.DesignTotals{
			Pending:  designs[models.DesignStatusPending],
			Approved: designs[models.DesignStatusApproved],
			Rejected: designs[models.DesignStatusRejected],
		},
		Bookings: dto.BookingTotals{
			Pending:   bookings[models.BookingStatusPending],
			Confirmed: bookings[models.BookingStatusConfirmed],
			Completed: bookings[models.BookingStatusCompleted],
			Cancelled: bookings[models.BookingStatusCancelled],
		},
		Reviews: dto.ReviewTotals{
			Total:    reviews.Total,
			Flagged:  reviews.Flagged,
			Rejected: reviews.Rejected,
		},
		TopDesigners: make([]*dto.UserResponse, 0, len(topDesigners)),
		TopDesigns:   make([]*dto.DesignResponse, 0, len(topDesigns)),
	}
	for _, c := range designs {
		out.Designs.Total += c
	}
	for _, c := range bookings {
		out.Bookings.Total += c
	}
	for i := range topDesigners {
		out.TopDesigners = append(out.TopDesigners, dto.NewUserResponse(&topDesigners[i], false))
	}
	for i := range topDesigns {
		out.TopDesigns = append(out.TopDesigns, dto.NewDesignResponse(&topDesigns[i]))
	}
	return out, nil
}
