package repositories

import (
	"errors"
	"strings"

	"mehndi_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("email already in use")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrUserAlreadyExists = errors.New("user already exists")
)

type UserRepository interface {
	Create(db *gorm.DB, user *models.User) error
	FindByID(db *gorm.DB, id string) (*models.User, error)
	FindByLogin(db *gorm.DB, login string) (*models.User, error)
	ExistsByEmail(db *gorm.DB, email string) (bool, error)
	Update(db *gorm.DB, user *models.User) error
	Delete(db *gorm.DB, id string) error

	// LockByID читает пользователя с блокировкой строки до конца транзакции
	LockByID(db *gorm.DB, id string) (*models.User, error)
	SetApproved(db *gorm.DB, user *models.User) error
	UpdateAggregates(db *gorm.DB, designerID string, totalBookings int64, averageRating float64) error
	UpdateAverageRating(db *gorm.DB, designerID string, averageRating float64) error
	UpdateTotalBookings(db *gorm.DB, designerID string, totalBookings int64) error

	FindWithFilter(db *gorm.DB, filter UserFilter) ([]models.User, int64, error)
	TopDesigners(db *gorm.DB, limit int) ([]models.User, error)
	CountByRole(db *gorm.DB) (*UserCounts, error)
}

type UserFilter struct {
	Role       *models.UserRole
	IsApproved *bool
	Search     string
	Location   string
	OrderBy    string
	Page       Page
}

type UserCounts struct {
	Total             int64 `json:"total"`
	Customers         int64 `json:"customers"`
	Designers         int64 `json:"designers"`
	ApprovedDesigners int64 `json:"approved_designers"`
	PendingDesigners  int64 `json:"pending_designers"`
	Admins            int64 `json:"admins"`
}

// Допустимые сортировки списка дизайнеров
var userOrderings = map[string]string{
	"-average_rating": "average_rating DESC, total_bookings DESC, created_at DESC",
	"average_rating":  "average_rating ASC, created_at DESC",
	"-total_bookings": "total_bookings DESC, average_rating DESC",
	"-created_at":     "created_at DESC",
	"created_at":      "created_at ASC",
	"username":        "username ASC",
}

type userRepository struct{}

func NewUserRepository() UserRepository {
	return &userRepository{}
}

func (r *userRepository) Create(db *gorm.DB, user *models.User) error {
	var count int64
	if err := db.Model(&models.User{}).Where("LOWER(email) = ?", strings.ToLower(user.Email)).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrEmailTaken
	}
	if err := db.Model(&models.User{}).Where("LOWER(username) = ?", strings.ToLower(user.Username)).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrUsernameTaken
	}

	if err := db.Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (r *userRepository) FindByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByLogin ищет по email или username без учета регистра
func (r *userRepository) FindByLogin(db *gorm.DB, login string) (*models.User, error) {
	var user models.User
	login = strings.ToLower(strings.TrimSpace(login))
	err := db.Where("LOWER(email) = ? OR LOWER(username) = ?", login, login).First(&user).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ExistsByEmail(db *gorm.DB, email string) (bool, error) {
	var count int64
	err := db.Model(&models.User{}).Where("LOWER(email) = ?", strings.ToLower(email)).Count(&count).Error
	return count > 0, err
}

// Update сохраняет только профильные поля; роль, одобрение и агрегаты здесь не меняются
func (r *userRepository) Update(db *gorm.DB, user *models.User) error {
	result := db.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"first_name":          user.FirstName,
		"last_name":           user.LastName,
		"phone":               user.Phone,
		"bio":                 user.Bio,
		"location":            user.Location,
		"profile_picture":     user.ProfilePicture,
		"years_of_experience": user.YearsOfExperience,
		"specialization":      user.Specialization,
		"portfolio_url":       user.PortfolioURL,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.User{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) LockByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := forUpdate(db).First(&user, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) SetApproved(db *gorm.DB, user *models.User) error {
	return db.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"is_approved": user.IsApproved,
		"approved_at": user.ApprovedAt,
	}).Error
}

func (r *userRepository) UpdateAggregates(db *gorm.DB, designerID string, totalBookings int64, averageRating float64) error {
	return db.Model(&models.User{}).Where("id = ?", designerID).Updates(map[string]interface{}{
		"total_bookings": totalBookings,
		"average_rating": averageRating,
	}).Error
}

func (r *userRepository) UpdateAverageRating(db *gorm.DB, designerID string, averageRating float64) error {
	return db.Model(&models.User{}).Where("id = ?", designerID).
		UpdateColumn("average_rating", averageRating).Error
}

func (r *userRepository) UpdateTotalBookings(db *gorm.DB, designerID string, totalBookings int64) error {
	return db.Model(&models.User{}).Where("id = ?", designerID).
		UpdateColumn("total_bookings", totalBookings).Error
}

func (r *userRepository) FindWithFilter(db *gorm.DB, filter UserFilter) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	query := db.Model(&models.User{})

	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if filter.IsApproved != nil {
		query = query.Where("is_approved = ?", *filter.IsApproved)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(
			"LOWER(username) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(specialization) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	if filter.Location != "" {
		query = query.Where("LOWER(location) LIKE ?", likePattern(filter.Location))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := userOrderings[filter.OrderBy]
	if !ok {
		order = userOrderings["-average_rating"]
	}

	err := query.Order(order).Scopes(paginate(filter.Page)).Find(&users).Error
	return users, total, err
}

func (r *userRepository) TopDesigners(db *gorm.DB, limit int) ([]models.User, error) {
	var users []models.User
	err := db.Where("role = ? AND is_approved = ?", models.UserRoleDesigner, true).
		Order("average_rating DESC, total_bookings DESC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (r *userRepository) CountByRole(db *gorm.DB) (*UserCounts, error) {
	type row struct {
		Role       models.UserRole
		IsApproved bool
		Count      int64
	}
	var rows []row
	err := db.Model(&models.User{}).
		Select("role, is_approved, COUNT(*) AS count").
		Group("role, is_approved").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := &UserCounts{}
	for _, rw := range rows {
		counts.Total += rw.Count
		switch rw.Role {
		case models.UserRoleCustomer:
			counts.Customers += rw.Count
		case models.UserRoleAdmin:
			counts.Admins += rw.Count
		case models.UserRoleDesigner:
			counts.Designers += rw.Count
			if rw.IsApproved {
				counts.ApprovedDesigners += rw.Count
			} else {
				counts.PendingDesigners += rw.Count
			}
		}
	}
	return counts, nil
}
