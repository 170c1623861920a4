package testutil

import (
	"sync"
	"testing"
	"time"

	"mehndi_backend/internal/auth"
	"mehndi_backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Password - пароль всех пользователей из фикстур
const Password = "password123"

var (
	hashOnce sync.Once
	hash     string
)

func passwordHash(t *testing.T) string {
	hashOnce.Do(func() {
		h, err := auth.HashPassword(Password)
		require.NoError(t, err)
		hash = h
	})
	return hash
}

func newUser(t *testing.T, db *gorm.DB, role models.UserRole, approved bool) *models.User {
	t.Helper()
	short := uuid.NewString()[:8]
	user := &models.User{
		Username:     string(role) + "_" + short,
		Email:        string(role) + "_" + short + "@example.com",
		PasswordHash: passwordHash(t),
		Role:         role,
		FirstName:    "Test",
		LastName:     string(role),
		IsApproved:   approved,
	}
	if approved && role == models.UserRoleDesigner {
		now := time.Now().UTC()
		user.ApprovedAt = &now
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateCustomer(t *testing.T, db *gorm.DB) *models.User {
	return newUser(t, db, models.UserRoleCustomer, true)
}

// CreateDesigner создает дизайнера; approved управляет одобрением
func CreateDesigner(t *testing.T, db *gorm.DB, approved bool) *models.User {
	return newUser(t, db, models.UserRoleDesigner, approved)
}

func CreateAdmin(t *testing.T, db *gorm.DB) *models.User {
	return newUser(t, db, models.UserRoleAdmin, true)
}

func CreateCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name, Slug: name}
	require.NoError(t, db.Create(category).Error)
	return category
}

// CreateDesign создает дизайн в заданном статусе в обход модерации
func CreateDesign(t *testing.T, db *gorm.DB, designerID string, status models.DesignStatus) *models.Design {
	t.Helper()
	design := &models.Design{
		DesignerID: designerID,
		Title:      "Design " + uuid.NewString()[:6],
		ImageURL:   "/media/designs/test.png",
		Status:     status,
	}
	require.NoError(t, db.Create(design).Error)
	return design
}

// CreateReview создает одобренный отзыв напрямую в БД
func CreateReview(t *testing.T, db *gorm.DB, customerID, designerID string, rating int) *models.Review {
	t.Helper()
	review := &models.Review{
		CustomerID: customerID,
		DesignerID: designerID,
		Rating:     rating,
		Comment:    "comment",
		IsApproved: true,
	}
	require.NoError(t, db.Create(review).Error)
	return review
}

// Date - момент в UTC, удобный для сценариев с фиксированными датами
func Date(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

// Clock - управляемые часы для сценариев, где время должно идти
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

func NewClock(t time.Time) *Clock {
	return &Clock{t: t}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Set переводит часы на момент t
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}
