package dto

import (
	"time"

	"mehndi_backend/internal/models"
)

// Форматы даты и времени бронирования (UTC)
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// ======================
// Request DTOs
// ======================

type CreateBookingRequest struct {
	DesignerID     string   `json:"designer_id" validate:"required,max=36"`
	BookingDate    string   `json:"booking_date" validate:"required,datetime=2006-01-02"`
	BookingTime    string   `json:"booking_time" validate:"required,hhmm"`
	DurationHours  int      `json:"duration_hours" validate:"required,gte=1,lte=12"`
	EventType      string   `json:"event_type" validate:"required,max=100"`
	Location       string   `json:"location" validate:"required,max=300"`
	Notes          string   `json:"notes" validate:"omitempty,max=2000"`
	EstimatedPrice *float64 `json:"estimated_price" validate:"omitempty,gte=0"`
}

// StartsAt собирает момент начала из даты и времени
func (r *CreateBookingRequest) StartsAt() (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, r.BookingDate+" "+r.BookingTime, time.UTC)
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required,is-booking-status"`
	Reason string `json:"reason" validate:"omitempty,max=2000"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

type BookingListQuery struct {
	Status   string `form:"status" validate:"omitempty,is-booking-status"`
	Designer string `form:"designer" validate:"omitempty,max=36"`
	Customer string `form:"customer" validate:"omitempty,max=36"`
	DateFrom string `form:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo   string `form:"date_to" validate:"omitempty,datetime=2006-01-02"`
	PageQuery
}

type BookingExportQuery struct {
	DateFrom string `form:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo   string `form:"date_to" validate:"omitempty,datetime=2006-01-02"`
}

// ======================
// Response DTOs
// ======================

type BookingResponse struct {
	ID                 string               `json:"id"`
	Customer           *UserSummary         `json:"customer"`
	Designer           *UserSummary         `json:"designer"`
	BookingDate        string               `json:"booking_date"`
	BookingTime        string               `json:"booking_time"`
	StartsAt           time.Time            `json:"starts_at"`
	EndsAt             time.Time            `json:"ends_at"`
	DurationHours      int                  `json:"duration_hours"`
	EventType          string               `json:"event_type"`
	Location           string               `json:"location"`
	Notes              string               `json:"notes"`
	EstimatedPrice     *float64             `json:"estimated_price"`
	Status             models.BookingStatus `json:"status"`
	CancelledBy        *string              `json:"cancelled_by,omitempty"`
	CancellationReason string               `json:"cancellation_reason,omitempty"`
	ConfirmedAt        *time.Time           `json:"confirmed_at,omitempty"`
	CompletedAt        *time.Time           `json:"completed_at,omitempty"`
	CancelledAt        *time.Time           `json:"cancelled_at,omitempty"`
	IsPast             bool                 `json:"is_past"`
	CreatedAt          time.Time            `json:"created_at"`
}

func NewBookingResponse(b *models.Booking, now time.Time) *BookingResponse {
	start := b.StartsAt.UTC()
	return &BookingResponse{
		ID:                 b.ID,
		Customer:           NewUserSummary(b.Customer),
		Designer:           NewUserSummary(b.Designer),
		BookingDate:        start.Format(DateLayout),
		BookingTime:        start.Format(TimeLayout),
		StartsAt:           start,
		EndsAt:             b.EndsAt.UTC(),
		DurationHours:      b.DurationHours,
		EventType:          b.EventType,
		Location:           b.Location,
		Notes:              b.Notes,
		EstimatedPrice:     b.EstimatedPrice,
		Status:             b.Status,
		CancelledBy:        b.CancelledByID,
		CancellationReason: b.CancellationReason,
		ConfirmedAt:        b.ConfirmedAt,
		CompletedAt:        b.CompletedAt,
		CancelledAt:        b.CancelledAt,
		IsPast:             b.IsPast(now),
		CreatedAt:          b.CreatedAt,
	}
}
