package dto

import (
	"time"

	"mehndi_backend/internal/models"
)

// ======================
// Request DTOs
// ======================

type CreateReviewRequest struct {
	DesignerID string `json:"designer_id" validate:"required,max=36"`
	Rating     int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment    string `json:"comment" validate:"required,max=5000"`
}

type RespondReviewRequest struct {
	Response string `json:"response" validate:"required,max=5000"`
}

type ReportReviewRequest struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

type ReviewListQuery struct {
	Designer string `form:"designer" validate:"omitempty,max=36"`
	Flagged  *bool  `form:"flagged"`
	Approved *bool  `form:"approved"`
	PageQuery
}

// ======================
// Response DTOs
// ======================

type ReviewResponse struct {
	ID               string       `json:"id"`
	Customer         *UserSummary `json:"customer"`
	DesignerID       string       `json:"designer_id"`
	Rating           int          `json:"rating"`
	Comment          string       `json:"comment"`
	DesignerResponse *string      `json:"designer_response"`
	ResponseDate     *time.Time   `json:"response_date"`
	IsFlagged        bool         `json:"is_flagged"`
	IsApproved       bool         `json:"is_approved"`
	ReportReason     string       `json:"report_reason,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}

type RatingResponse struct {
	DesignerID    string        `json:"designer_id"`
	AverageRating float64       `json:"average_rating"`
	TotalReviews  int64         `json:"total_reviews"`
	Distribution  map[int]int64 `json:"distribution"`
}

func NewReviewResponse(r *models.Review) *ReviewResponse {
	return &ReviewResponse{
		ID:               r.ID,
		Customer:         NewUserSummary(r.Customer),
		DesignerID:       r.DesignerID,
		Rating:           r.Rating,
		Comment:          r.Comment,
		DesignerResponse: r.DesignerResponse,
		ResponseDate:     r.ResponseDate,
		IsFlagged:        r.IsFlagged,
		IsApproved:       r.IsApproved,
		ReportReason:     r.ReportReason,
		CreatedAt:        r.CreatedAt,
	}
}
