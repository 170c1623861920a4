package dto

import (
	"time"

	"mehndi_backend/internal/models"
)

// ======================
// Request DTOs
// ======================

type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=150"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	Role      string `json:"role" validate:"required,is-user-role"`
	FirstName string `json:"first_name" validate:"omitempty,max=150"`
	LastName  string `json:"last_name" validate:"omitempty,max=150"`
	Phone     string `json:"phone" validate:"omitempty,max=20"`
	Location  string `json:"location" validate:"omitempty,max=200"`
	Bio       string `json:"bio" validate:"omitempty,max=2000"`

	YearsOfExperience int    `json:"years_of_experience" validate:"omitempty,min=0,max=80"`
	Specialization    string `json:"specialization" validate:"omitempty,max=200"`
	PortfolioURL      string `json:"portfolio_url" validate:"omitempty,url"`
}

// UpdateProfileRequest - роль, одобрение и агрегаты не редактируются
type UpdateProfileRequest struct {
	FirstName      *string `json:"first_name" validate:"omitempty,max=150"`
	LastName       *string `json:"last_name" validate:"omitempty,max=150"`
	Phone          *string `json:"phone" validate:"omitempty,max=20"`
	Bio            *string `json:"bio" validate:"omitempty,max=2000"`
	Location       *string `json:"location" validate:"omitempty,max=200"`
	ProfilePicture *string `json:"profile_picture" validate:"omitempty,max=500"`

	YearsOfExperience *int    `json:"years_of_experience" validate:"omitempty,min=0,max=80"`
	Specialization    *string `json:"specialization" validate:"omitempty,max=200"`
	PortfolioURL      *string `json:"portfolio_url" validate:"omitempty,url"`
}

// DesignerListQuery - публичный список дизайнеров
type DesignerListQuery struct {
	Search   string `form:"search" validate:"omitempty,max=100"`
	Location string `form:"location" validate:"omitempty,max=100"`
	Ordering string `form:"ordering" validate:"omitempty,oneof=-average_rating average_rating -total_bookings -created_at"`
	PageQuery
}

// UserListQuery - список пользователей для админа
type UserListQuery struct {
	Role     string `form:"role" validate:"omitempty,oneof=customer designer admin"`
	Approved *bool  `form:"approved"`
	Search   string `form:"search" validate:"omitempty,max=100"`
	Ordering string `form:"ordering" validate:"omitempty,oneof=-average_rating average_rating -total_bookings -created_at created_at username"`
	PageQuery
}

// ======================
// Response DTOs
// ======================

// UserSummary - краткая карточка участника (в бронированиях, отзывах, дизайнах)
type UserSummary struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	FullName       string `json:"full_name"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

type UserResponse struct {
	ID             string          `json:"id"`
	Username       string          `json:"username"`
	Email          string          `json:"email,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	Role           models.UserRole `json:"role"`
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	Bio            string          `json:"bio"`
	Location       string          `json:"location"`
	ProfilePicture string          `json:"profile_picture"`
	CreatedAt      time.Time       `json:"created_at"`

	// Только для дизайнеров
	IsApproved           *bool      `json:"is_approved,omitempty"`
	ApprovedAt           *time.Time `json:"approved_at,omitempty"`
	YearsOfExperience    int        `json:"years_of_experience,omitempty"`
	Specialization       string     `json:"specialization,omitempty"`
	PortfolioURL         string     `json:"portfolio_url,omitempty"`
	TotalBookings        int        `json:"total_bookings"`
	AverageRating        float64    `json:"average_rating"`
	ApprovedDesignsCount *int64     `json:"approved_designs_count,omitempty"`
}

// DashboardStats - сводка для личного кабинета
type DashboardStats struct {
	Role              models.UserRole `json:"role"`
	TotalBookings     int64           `json:"total_bookings"`
	PendingBookings   *int64          `json:"pending_bookings,omitempty"`
	CompletedBookings *int64          `json:"completed_bookings,omitempty"`
	TotalDesigns      *int64          `json:"total_designs,omitempty"`
	AverageRating     *float64        `json:"average_rating,omitempty"`
	FavoritesCount    *int64          `json:"favorites_count,omitempty"`
}

// NewUserSummary строит краткую карточку; nil для nil
func NewUserSummary(u *models.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:             u.ID,
		Username:       u.Username,
		FullName:       fullName(u),
		ProfilePicture: u.ProfilePicture,
	}
}

// NewUserResponse - публичный профиль; private добавляет контакты
func NewUserResponse(u *models.User, private bool) *UserResponse {
	resp := &UserResponse{
		ID:             u.ID,
		Username:       u.Username,
		Role:           u.Role,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Bio:            u.Bio,
		Location:       u.Location,
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      u.CreatedAt,
	}
	if private {
		resp.Email = u.Email
		resp.Phone = u.Phone
	}
	if u.IsDesigner() {
		approved := u.IsApproved
		resp.IsApproved = &approved
		resp.ApprovedAt = u.ApprovedAt
		resp.YearsOfExperience = u.YearsOfExperience
		resp.Specialization = u.Specialization
		resp.PortfolioURL = u.PortfolioURL
		resp.TotalBookings = u.TotalBookings
		resp.AverageRating = u.AverageRating
	}
	return resp
}

func fullName(u *models.User) string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Username
}
