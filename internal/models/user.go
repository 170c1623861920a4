package models

import "time"

type User struct {
	BaseModel
	Username       string   `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email          string   `gorm:"uniqueIndex;size:254;not null" json:"email"`
	PasswordHash   string   `gorm:"not null" json:"-"`
	Role           UserRole `gorm:"type:varchar(20);not null;index" json:"role"`
	FirstName      string   `gorm:"size:150" json:"first_name"`
	LastName       string   `gorm:"size:150" json:"last_name"`
	Phone          string   `gorm:"size:20" json:"phone"`
	Bio            string   `gorm:"type:text" json:"bio"`
	Location       string   `gorm:"size:200" json:"location"`
	ProfilePicture string   `json:"profile_picture"`

	// Только для дизайнеров
	IsApproved        bool       `gorm:"not null;index" json:"is_approved"`
	ApprovedAt        *time.Time `json:"approved_at,omitempty"`
	YearsOfExperience int        `json:"years_of_experience"`
	Specialization    string     `gorm:"size:200" json:"specialization"`
	PortfolioURL      string     `json:"portfolio_url"`

	// Производные значения, пересчитываются агрегатором
	TotalBookings int     `gorm:"not null;default:0" json:"total_bookings"`
	AverageRating float64 `gorm:"not null;default:0" json:"average_rating"`
}

func (u *User) IsDesigner() bool { return u.Role == UserRoleDesigner }
func (u *User) IsCustomer() bool { return u.Role == UserRoleCustomer }
func (u *User) IsAdmin() bool    { return u.Role == UserRoleAdmin }

// IsBookable - одобренный дизайнер, виден в публичных списках
func (u *User) IsBookable() bool {
	return u.IsDesigner() && u.IsApproved
}

type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"size:36;not null;index"`
	Token     string    `gorm:"not null;uniqueIndex;size:64"`
	ExpiresAt time.Time `gorm:"not null;index"`
}
