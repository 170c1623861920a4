package apperrors

import (
	"net/http"
)

/*
Фабрики и предопределенные переменные для ошибок бизнес-логики.
Таксономия: ValidationError, InvalidTransitionError, ConflictError,
NotFoundError, AuthorizationError.
*/

// =========================================================================
// Фабричные ФУНКЦИИ
// =========================================================================

// NotFound - "не найдено" с указанием домена
func NotFound(domain, message string) *AppError {
	return New(CodeNotFound, domain, message, http.StatusNotFound)
}

// TransitionDetails - тело details для INVALID_TRANSITION
type TransitionDetails struct {
	Entity       string `json:"entity"`
	CurrentState string `json:"current_state"`
	Event        string `json:"event"`
}

// ErrInvalidTransition - команда корректна, но недопустима в текущем состоянии сущности (409)
func ErrInvalidTransition(err error, entity, current, event string) *AppError {
	return Wrap(err, CodeInvalidTransition, entity, "Transition is not allowed in the current state", http.StatusConflict).
		WithDetails(TransitionDetails{Entity: entity, CurrentState: current, Event: event})
}

// ErrBookingConflict - интервал бронирования пересекается с существующим
func ErrBookingConflict(conflictingID string) *AppError {
	return New(CodeConflict, "booking", "Requested time overlaps an existing booking", http.StatusConflict).
		WithDetails(map[string]string{"conflicting_booking_id": conflictingID})
}

// =========================================================================
// Предопределенные ПЕРЕМЕННЫЕ
// =========================================================================

// --- Auth ---

// ErrEmailAlreadyExists - email уже используется
var ErrEmailAlreadyExists = New(CodeValidationFailed, "auth", "Email already in use", http.StatusBadRequest).
	WithDetails(map[string]string{"email": "Email already in use"})

// ErrUsernameAlreadyExists - username уже занят
var ErrUsernameAlreadyExists = New(CodeValidationFailed, "auth", "Username already taken", http.StatusBadRequest).
	WithDetails(map[string]string{"username": "Username already taken"})

// ErrInvalidCredentials - неверный логин или пароль
var ErrInvalidCredentials = New(CodeInvalidCredentials, "auth", "Invalid credentials", http.StatusUnauthorized)

// ErrInvalidToken - неверный или просроченный токен
var ErrInvalidToken = New(CodeInvalidToken, "auth", "Invalid or expired token", http.StatusUnauthorized)

// ErrInsufficientPermissions - роль не позволяет выполнить действие
var ErrInsufficientPermissions = New(CodeForbidden, "auth", "Insufficient permissions", http.StatusForbidden)

// ErrCannotModifySelf - админ пытается удалить сам себя
var ErrCannotModifySelf = New(CodeForbidden, "business_logic", "Operation on self is not allowed", http.StatusForbidden)

// --- Users ---

// ErrUserNotFound - пользователь не найден или роль не подходит
var ErrUserNotFound = New(CodeNotFound, "user", "User not found", http.StatusNotFound)

// ErrDesignerNotFound - дизайнер не найден или не одобрен
var ErrDesignerNotFound = New(CodeNotFound, "user", "Designer not found", http.StatusNotFound)

// ErrDesignerNotApproved - операция доступна только одобренным дизайнерам
var ErrDesignerNotApproved = New(CodeValidationFailed, "user", "Designer account is not approved", http.StatusBadRequest)

// --- Catalog ---

// ErrDesignNotFound - дизайн не найден (или не виден вызывающему)
var ErrDesignNotFound = New(CodeNotFound, "design", "Design not found", http.StatusNotFound)

// ErrCategoryNotFound - категория не найдена
var ErrCategoryNotFound = New(CodeNotFound, "category", "Category not found", http.StatusNotFound)

// ErrUnknownCategory - ссылка на несуществующую категорию при создании дизайна
var ErrUnknownCategory = New(CodeValidationFailed, "design", "Unknown category", http.StatusBadRequest).
	WithDetails(map[string]string{"category_id": "Unknown category"})

// ErrCategoryExists - категория с таким именем или slug уже есть
var ErrCategoryExists = New(CodeAlreadyExists, "category", "Category already exists", http.StatusConflict)

// --- Bookings ---

// ErrBookingNotFound - бронирование не найдено
var ErrBookingNotFound = New(CodeNotFound, "booking", "Booking not found", http.StatusNotFound)

// ErrSelfBooking - дизайнер не может бронировать сам себя
var ErrSelfBooking = New(CodeValidationFailed, "booking", "Cannot book yourself", http.StatusBadRequest).
	WithDetails(map[string]string{"designer_id": "Cannot book yourself"})

// ErrBookingInPast - дата и время уже прошли
var ErrBookingInPast = New(CodeValidationFailed, "booking", "Booking date and time must not be in the past", http.StatusBadRequest).
	WithDetails(map[string]string{"booking_date": "Must not be in the past"})

// ErrBookingNotParty - действие доступно только участникам бронирования
var ErrBookingNotParty = New(CodeForbidden, "booking", "Only the booking parties may perform this action", http.StatusForbidden)

// --- Reviews ---

// ErrReviewNotFound - отзыв не найден
var ErrReviewNotFound = New(CodeNotFound, "review", "Review not found", http.StatusNotFound)

// ErrReviewNotAllowed - у покупателя нет бронирований у дизайнера
var ErrReviewNotAllowed = New(CodeValidationFailed, "review", "You can review only designers you have booked", http.StatusBadRequest)

// --- Notifications ---

// ErrNotificationNotFound - уведомление не найдено у текущего пользователя
var ErrNotificationNotFound = New(CodeNotFound, "notification", "Notification not found", http.StatusNotFound)

// --- Uploads ---

// ErrFileTooLarge - файл превышает максимальный размер
var ErrFileTooLarge = New(CodeLimitExceeded, "validation", "File size exceeds the allowed limit", http.StatusRequestEntityTooLarge)

// ErrInvalidFileType - MIME-тип файла не разрешен
var ErrInvalidFileType = New(CodeValidationFailed, "validation", "The provided file type is not allowed", http.StatusUnsupportedMediaType)
