package services

import (
	"errors"

	"mehndi_backend/internal/repositories"
	"mehndi_backend/internal/workflow"
	"mehndi_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// handleWorkflowError переводит отказ конечного автомата в AppError
func handleWorkflowError(err error) error {
	var transitionErr *workflow.TransitionError
	if errors.As(err, &transitionErr) {
		return apperrors.ErrInvalidTransition(err, transitionErr.Entity, transitionErr.State, transitionErr.Event)
	}
	var actorErr *workflow.ActorError
	if errors.As(err, &actorErr) {
		return apperrors.ErrInsufficientPermissions.WithError(err)
	}
	var preErr *workflow.PreconditionError
	if errors.As(err, &preErr) {
		return apperrors.FieldError(preErr.Field, preErr.Reason).WithError(err)
	}
	return apperrors.InternalError(err)
}

func handleUserError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrUserNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.ErrUserNotFound.WithError(err)
	case errors.Is(err, repositories.ErrEmailTaken):
		return apperrors.ErrEmailAlreadyExists
	case errors.Is(err, repositories.ErrUsernameTaken), errors.Is(err, repositories.ErrUserAlreadyExists):
		return apperrors.ErrUsernameAlreadyExists
	}
	return passThrough(err)
}

func handleDesignError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrDesignNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.ErrDesignNotFound.WithError(err)
	case errors.Is(err, repositories.ErrCategoryNotFound):
		return apperrors.ErrUnknownCategory
	}
	return passThrough(err)
}

func handleCategoryError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrCategoryNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.ErrCategoryNotFound.WithError(err)
	case errors.Is(err, repositories.ErrCategoryExists):
		return apperrors.ErrCategoryExists
	}
	return passThrough(err)
}

func handleBookingError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrBookingNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.ErrBookingNotFound.WithError(err)
	}
	return passThrough(err)
}

func handleReviewError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrReviewNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.ErrReviewNotFound.WithError(err)
	}
	return passThrough(err)
}

func handleNotificationError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotificationNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.ErrNotificationNotFound.WithError(err)
	}
	return passThrough(err)
}

// passThrough оставляет AppError как есть, остальное - 500
func passThrough(err error) error {
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	return apperrors.InternalError(err)
}

func isNotFoundErr(err error) bool {
	return errors.Is(err, repositories.ErrUserNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
