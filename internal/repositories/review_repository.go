package repositories

import (
	"errors"

	"mehndi_backend/internal/models"

	"gorm.io/gorm"
)

var ErrReviewNotFound = errors.New("review not found")

type ReviewRepository interface {
	Create(db *gorm.DB, review *models.Review) error
	FindByID(db *gorm.DB, id string) (*models.Review, error)
	LockByID(db *gorm.DB, id string) (*models.Review, error)
	UpdateResponse(db *gorm.DB, review *models.Review) error
	UpdateModeration(db *gorm.DB, review *models.Review) error
	Delete(db *gorm.DB, id string) error

	FindWithFilter(db *gorm.DB, filter ReviewFilter) ([]models.Review, int64, error)

	// AverageApproved - среднее по одобренным отзывам дизайнера, 0 если их нет
	AverageApproved(db *gorm.DB, designerID string) (float64, error)
	GetRatingStats(db *gorm.DB, designerID string) (*RatingStats, error)
	CountStats(db *gorm.DB) (*ReviewCounts, error)

	// Каскадное удаление
	FindReviewedDesigners(db *gorm.DB, customerID string) ([]string, error)
	DeleteByUser(db *gorm.DB, userID string) error
}

type ReviewFilter struct {
	DesignerID string
	CustomerID string
	IsFlagged  *bool
	IsApproved *bool
	Page       Page
}

// RatingStats - сводка рейтинга дизайнера
type RatingStats struct {
	AverageRating float64       `json:"average_rating"`
	TotalReviews  int64         `json:"total_reviews"`
	Distribution  map[int]int64 `json:"distribution"` // 1..5
}

type ReviewCounts struct {
	Total    int64 `json:"total"`
	Flagged  int64 `json:"flagged"`
	Rejected int64 `json:"rejected"`
}

type reviewRepository struct{}

func NewReviewRepository() ReviewRepository {
	return &reviewRepository{}
}

func (r *reviewRepository) Create(db *gorm.DB, review *models.Review) error {
	return db.Create(review).Error
}

func (r *reviewRepository) FindByID(db *gorm.DB, id string) (*models.Review, error) {
	var review models.Review
	if err := db.Preload("Customer").First(&review, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) LockByID(db *gorm.DB, id string) (*models.Review, error) {
	var review models.Review
	if err := forUpdate(db).First(&review, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) UpdateResponse(db *gorm.DB, review *models.Review) error {
	return db.Model(&models.Review{}).Where("id = ?", review.ID).Updates(map[string]interface{}{
		"designer_response": review.DesignerResponse,
		"response_date":     review.ResponseDate,
	}).Error
}

// UpdateModeration пишет оба флага: false должен сохраниться явно
func (r *reviewRepository) UpdateModeration(db *gorm.DB, review *models.Review) error {
	return db.Model(&models.Review{}).Where("id = ?", review.ID).Updates(map[string]interface{}{
		"is_flagged":    review.IsFlagged,
		"is_approved":   review.IsApproved,
		"report_reason": review.ReportReason,
	}).Error
}

func (r *reviewRepository) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.Review{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *reviewRepository) FindWithFilter(db *gorm.DB, filter ReviewFilter) ([]models.Review, int64, error) {
	var reviews []models.Review
	var total int64

	query := db.Model(&models.Review{})
	if filter.DesignerID != "" {
		query = query.Where("designer_id = ?", filter.DesignerID)
	}
	if filter.CustomerID != "" {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.IsFlagged != nil {
		query = query.Where("is_flagged = ?", *filter.IsFlagged)
	}
	if filter.IsApproved != nil {
		query = query.Where("is_approved = ?", *filter.IsApproved)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Customer").
		Order("created_at DESC").
		Scopes(paginate(filter.Page)).
		Find(&reviews).Error
	return reviews, total, err
}

func (r *reviewRepository) AverageApproved(db *gorm.DB, designerID string) (float64, error) {
	var avg float64
	err := db.Model(&models.Review{}).
		Where("designer_id = ? AND is_approved = ?", designerID, true).
		Select("COALESCE(AVG(rating), 0)").
		Scan(&avg).Error
	return avg, err
}

func (r *reviewRepository) GetRatingStats(db *gorm.DB, designerID string) (*RatingStats, error) {
	type row struct {
		Rating int
		Count  int64
	}
	var rows []row
	err := db.Model(&models.Review{}).
		Where("designer_id = ? AND is_approved = ?", designerID, true).
		Select("rating, COUNT(*) AS count").
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &RatingStats{Distribution: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	var sum int64
	for _, rw := range rows {
		stats.Distribution[rw.Rating] = rw.Count
		stats.TotalReviews += rw.Count
		sum += int64(rw.Rating) * rw.Count
	}
	if stats.TotalReviews > 0 {
		stats.AverageRating = float64(sum) / float64(stats.TotalReviews)
	}
	return stats, nil
}

func (r *reviewRepository) CountStats(db *gorm.DB) (*ReviewCounts, error) {
	counts := &ReviewCounts{}
	if err := db.Model(&models.Review{}).Count(&counts.Total).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Review{}).Where("is_flagged = ?", true).Count(&counts.Flagged).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Review{}).Where("is_approved = ?", false).Count(&counts.Rejected).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *reviewRepository) FindReviewedDesigners(db *gorm.DB, customerID string) ([]string, error) {
	var ids []string
	err := db.Model(&models.Review{}).
		Where("customer_id = ?", customerID).
		Distinct().
		Pluck("designer_id", &ids).Error
	return ids, err
}

func (r *reviewRepository) DeleteByUser(db *gorm.DB, userID string) error {
	return db.Where("customer_id = ? OR designer_id = ?", userID, userID).Delete(&models.Review{}).Error
}
