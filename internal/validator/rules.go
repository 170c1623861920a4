package validator

import (
	"log"
	"time"

	"mehndi_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует кастомные правила валидации
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// Без правила приложение не должно запускаться
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// 'is-user-role': роль при регистрации (admin не регистрируется)
	mustRegister("is-user-role", validateRegistrationRole)

	// 'is-reaction': like | dislike
	mustRegister("is-reaction", validateReaction)

	// 'is-booking-status' и 'is-design-status': закрытые перечисления
	mustRegister("is-booking-status", validateBookingStatus)
	mustRegister("is-design-status", validateDesignStatus)

	// 'hhmm': время бронирования
	mustRegister("hhmm", validateHHMM)
}

func validateRegistrationRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // пустые значения проверяет 'required'
	}
	switch models.UserRole(value) {
	case models.UserRoleCustomer, models.UserRoleDesigner:
		return true
	default:
		return false
	}
}

func validateReaction(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.ReactionType(value).IsValid()
}

func validateBookingStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.BookingStatus(value).IsValid()
}

func validateDesignStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.DesignStatus(value).IsValid()
}

func validateHHMM(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := time.Parse("15:04", value)
	return err == nil
}
