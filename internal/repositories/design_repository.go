package repositories

import (
	"errors"
	"time"

	"mehndi_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrDesignNotFound   = errors.New("design not found")
	ErrReactionNotFound = errors.New("reaction not found")
	ErrFavoriteNotFound = errors.New("favorite not found")
)

type DesignRepository interface {
	Create(db *gorm.DB, design *models.Design) error
	FindByID(db *gorm.DB, id string) (*models.Design, error)
	LockByID(db *gorm.DB, id string) (*models.Design, error)
	UpdateContent(db *gorm.DB, design *models.Design) error
	UpdateModeration(db *gorm.DB, design *models.Design) error
	Delete(db *gorm.DB, id string) error
	DeleteByDesigner(db *gorm.DB, designerID string) error
	FindIDsByDesigner(db *gorm.DB, designerID string) ([]string, error)

	FindWithCriteria(db *gorm.DB, criteria DesignCriteria) ([]models.Design, int64, error)
	FindTrending(db *gorm.DB, limit int) ([]models.Design, error)
	CountByStatus(db *gorm.DB) (map[models.DesignStatus]int64, error)
	CountByDesigner(db *gorm.DB, designerID string, status *models.DesignStatus) (int64, error)

	// Счетчики
	IncrementCounter(db *gorm.DB, designID string, column string, delta int) error

	// Реакции
	FindReaction(db *gorm.DB, userID, designID string) (*models.DesignReaction, error)
	CreateReaction(db *gorm.DB, reaction *models.DesignReaction) error
	UpdateReaction(db *gorm.DB, reaction *models.DesignReaction) error
	DeleteReaction(db *gorm.DB, reaction *models.DesignReaction) error

	// Избранное
	FindFavorite(db *gorm.DB, userID, designID string) (*models.Favorite, error)
	CreateFavorite(db *gorm.DB, favorite *models.Favorite) error
	DeleteFavorite(db *gorm.DB, favorite *models.Favorite) error
	FindFavorites(db *gorm.DB, userID string, page Page) ([]models.Favorite, int64, error)
	CountFavorites(db *gorm.DB, userID string) (int64, error)

	// Просмотры (fallback без redis)
	TouchView(db *gorm.DB, userID, designID string, now time.Time, session time.Duration) (bool, error)

	// Очистка по пользователю для каскадного удаления
	DeleteUserActivity(db *gorm.DB, userID string) error
}

const (
	CounterViews    = "views_count"
	CounterLikes    = "likes_count"
	CounterDislikes = "dislikes_count"
)

type DesignCriteria struct {
	Search     string
	CategoryID string
	DesignerID string
	Statuses   []models.DesignStatus
	OrderBy    string
	Page       Page
}

var designOrderings = map[string]string{
	"-created_at":  "created_at DESC",
	"created_at":   "created_at ASC",
	"-likes_count": "likes_count DESC, created_at DESC",
	"-views_count": "views_count DESC, created_at DESC",
	"title":        "title ASC",
}

type designRepository struct{}

func NewDesignRepository() DesignRepository {
	return &designRepository{}
}

func (r *designRepository) Create(db *gorm.DB, design *models.Design) error {
	return db.Create(design).Error
}

func (r *designRepository) FindByID(db *gorm.DB, id string) (*models.Design, error) {
	var design models.Design
	err := db.Preload("Designer").Preload("Category").First(&design, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrDesignNotFound
		}
		return nil, err
	}
	return &design, nil
}

func (r *designRepository) LockByID(db *gorm.DB, id string) (*models.Design, error) {
	var design models.Design
	if err := forUpdate(db).First(&design, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrDesignNotFound
		}
		return nil, err
	}
	return &design, nil
}

// UpdateContent сохраняет редактируемые владельцем поля; статус не трогается
func (r *designRepository) UpdateContent(db *gorm.DB, design *models.Design) error {
	result := db.Model(&models.Design{}).Where("id = ?", design.ID).Updates(map[string]interface{}{
		"title":       design.Title,
		"description": design.Description,
		"category_id": design.CategoryID,
		"tags":        design.Tags,
		"price_range": design.PriceRange,
		"image_url":   design.ImageURL,
		"image_key":   design.ImageKey,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDesignNotFound
	}
	return nil
}

func (r *designRepository) UpdateModeration(db *gorm.DB, design *models.Design) error {
	return db.Model(&models.Design{}).Where("id = ?", design.ID).Updates(map[string]interface{}{
		"status":           design.Status,
		"rejection_reason": design.RejectionReason,
		"reviewed_at":      design.ReviewedAt,
	}).Error
}

// Delete удаляет дизайн вместе с реакциями, избранным и просмотрами
func (r *designRepository) Delete(db *gorm.DB, id string) error {
	if err := deleteDesignDependents(db, []string{id}); err != nil {
		return err
	}
	result := db.Where("id = ?", id).Delete(&models.Design{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDesignNotFound
	}
	return nil
}

func (r *designRepository) DeleteByDesigner(db *gorm.DB, designerID string) error {
	ids, err := r.FindIDsByDesigner(db, designerID)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if err := deleteDesignDependents(db, ids); err != nil {
		return err
	}
	return db.Where("designer_id = ?", designerID).Delete(&models.Design{}).Error
}

func deleteDesignDependents(db *gorm.DB, ids []string) error {
	if err := db.Where("design_id IN ?", ids).Delete(&models.DesignReaction{}).Error; err != nil {
		return err
	}
	if err := db.Where("design_id IN ?", ids).Delete(&models.Favorite{}).Error; err != nil {
		return err
	}
	return db.Where("design_id IN ?", ids).Delete(&models.DesignView{}).Error
}

func (r *designRepository) FindIDsByDesigner(db *gorm.DB, designerID string) ([]string, error) {
	var ids []string
	err := db.Model(&models.Design{}).Where("designer_id = ?", designerID).Pluck("id", &ids).Error
	return ids, err
}

func (r *designRepository) FindWithCriteria(db *gorm.DB, criteria DesignCriteria) ([]models.Design, int64, error) {
	var designs []models.Design
	var total int64

	query := db.Model(&models.Design{})

	if len(criteria.Statuses) > 0 {
		query = query.Where("status IN ?", criteria.Statuses)
	}
	if criteria.CategoryID != "" {
		query = query.Where("category_id = ?", criteria.CategoryID)
	}
	if criteria.DesignerID != "" {
		query = query.Where("designer_id = ?", criteria.DesignerID)
	}
	if criteria.Search != "" {
		pattern := likePattern(criteria.Search)
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(tags) LIKE ?",
			pattern, pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := designOrderings[criteria.OrderBy]
	if !ok {
		order = designOrderings["-created_at"]
	}

	err := query.Preload("Designer").Preload("Category").
		Order(order).
		Scopes(paginate(criteria.Page)).
		Find(&designs).Error
	return designs, total, err
}

func (r *designRepository) FindTrending(db *gorm.DB, limit int) ([]models.Design, error) {
	var designs []models.Design
	err := db.Preload("Designer").Preload("Category").
		Where("status = ?", models.DesignStatusApproved).
		Order("likes_count DESC, views_count DESC, created_at DESC").
		Limit(limit).
		Find(&designs).Error
	return designs, err
}

func (r *designRepository) CountByStatus(db *gorm.DB) (map[models.DesignStatus]int64, error) {
	type row struct {
		Status models.DesignStatus
		Count  int64
	}
	var rows []row
	if err := db.Model(&models.Design{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[models.DesignStatus]int64, len(rows))
	for _, rw := range rows {
		out[rw.Status] = rw.Count
	}
	return out, nil
}

func (r *designRepository) CountByDesigner(db *gorm.DB, designerID string, status *models.DesignStatus) (int64, error) {
	var count int64
	query := db.Model(&models.Design{}).Where("designer_id = ?", designerID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	err := query.Count(&count).Error
	return count, err
}

// IncrementCounter - атомарный column = column + delta на стороне БД
func (r *designRepository) IncrementCounter(db *gorm.DB, designID string, column string, delta int) error {
	switch column {
	case CounterViews, CounterLikes, CounterDislikes:
	default:
		return errors.New("unknown design counter: " + column)
	}
	result := db.Model(&models.Design{}).Where("id = ?", designID).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDesignNotFound
	}
	return nil
}

// ========== Реакции ==========

func (r *designRepository) FindReaction(db *gorm.DB, userID, designID string) (*models.DesignReaction, error) {
	var reaction models.DesignReaction
	err := forUpdate(db).Where("user_id = ? AND design_id = ?", userID, designID).First(&reaction).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrReactionNotFound
		}
		return nil, err
	}
	return &reaction, nil
}

func (r *designRepository) CreateReaction(db *gorm.DB, reaction *models.DesignReaction) error {
	return db.Create(reaction).Error
}

func (r *designRepository) UpdateReaction(db *gorm.DB, reaction *models.DesignReaction) error {
	return db.Model(&models.DesignReaction{}).Where("id = ?", reaction.ID).
		Update("reaction_type", reaction.ReactionType).Error
}

func (r *designRepository) DeleteReaction(db *gorm.DB, reaction *models.DesignReaction) error {
	return db.Where("id = ?", reaction.ID).Delete(&models.DesignReaction{}).Error
}

// ========== Избранное ==========

func (r *designRepository) FindFavorite(db *gorm.DB, userID, designID string) (*models.Favorite, error) {
	var favorite models.Favorite
	err := forUpdate(db).Where("user_id = ? AND design_id = ?", userID, designID).First(&favorite).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrFavoriteNotFound
		}
		return nil, err
	}
	return &favorite, nil
}

func (r *designRepository) CreateFavorite(db *gorm.DB, favorite *models.Favorite) error {
	return db.Create(favorite).Error
}

func (r *designRepository) DeleteFavorite(db *gorm.DB, favorite *models.Favorite) error {
	return db.Where("id = ?", favorite.ID).Delete(&models.Favorite{}).Error
}

func (r *designRepository) FindFavorites(db *gorm.DB, userID string, page Page) ([]models.Favorite, int64, error) {
	var favorites []models.Favorite
	var total int64

	query := db.Model(&models.Favorite{}).
		Joins("JOIN designs ON designs.id = favorites.design_id").
		Where("favorites.user_id = ? AND designs.status = ?", userID, models.DesignStatusApproved)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Design").Preload("Design.Designer").Preload("Design.Category").
		Order("favorites.created_at DESC").
		Scopes(paginate(page)).
		Find(&favorites).Error
	return favorites, total, err
}

func (r *designRepository) CountFavorites(db *gorm.DB, userID string) (int64, error) {
	var count int64
	err := db.Model(&models.Favorite{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// ========== Просмотры ==========

// TouchView засчитывает просмотр, если с прошлого прошло не меньше session.
// Решение принимает условный UPDATE, поэтому из параллельных запросов засчитывается один.
func (r *designRepository) TouchView(db *gorm.DB, userID, designID string, now time.Time, session time.Duration) (bool, error) {
	var view models.DesignView
	err := db.Where("user_id = ? AND design_id = ?", userID, designID).First(&view).Error
	switch {
	case isNotFound(err):
		view = models.DesignView{UserID: userID, DesignID: designID, LastViewedAt: now}
		result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&view)
		if result.Error != nil {
			return false, result.Error
		}
		return result.RowsAffected > 0, nil
	case err != nil:
		return false, err
	}

	if now.Sub(view.LastViewedAt) < session {
		return false, nil
	}
	return r.claimView(db, view.ID, now, now.Add(-session))
}

// claimView сдвигает last_viewed_at, только если он не новее cutoff
func (r *designRepository) claimView(db *gorm.DB, viewID string, now, cutoff time.Time) (bool, error) {
	result := db.Model(&models.DesignView{}).
		Where("id = ? AND last_viewed_at <= ?", viewID, cutoff).
		Update("last_viewed_at", now)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// DeleteUserActivity удаляет реакции пользователя (с откатом счетчиков), избранное и просмотры
func (r *designRepository) DeleteUserActivity(db *gorm.DB, userID string) error {
	var reactions []models.DesignReaction
	if err := db.Where("user_id = ?", userID).Find(&reactions).Error; err != nil {
		return err
	}
	for _, reaction := range reactions {
		column := CounterLikes
		if reaction.ReactionType == models.ReactionDislike {
			column = CounterDislikes
		}
		if err := db.Model(&models.Design{}).Where("id = ?", reaction.DesignID).
			UpdateColumn(column, gorm.Expr(column+" - 1")).Error; err != nil {
			return err
		}
	}
	if err := db.Where("user_id = ?", userID).Delete(&models.DesignReaction{}).Error; err != nil {
		return err
	}
	if err := db.Where("user_id = ?", userID).Delete(&models.Favorite{}).Error; err != nil {
		return err
	}
	return db.Where("user_id = ?", userID).Delete(&models.DesignView{}).Error
}
