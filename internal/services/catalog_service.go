package services

import (
	"context"
	"errors"
	"strings"

	"mehndi_backend/internal/cache"
	"mehndi_backend/internal/lock"
	"mehndi_backend/internal/logger"
	"mehndi_backend/internal/metrics"
	"mehndi_backend/internal/models"
	"mehndi_backend/internal/repositories"
	"mehndi_backend/internal/services/dto"
	"mehndi_backend/internal/storage"
	"mehndi_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// TrendingLimit - размер витрины популярных дизайнов
const TrendingLimit = 12

// UploadPolicy - ограничения на загружаемые изображения
type UploadPolicy struct {
	MaxSize      int64
	AllowedTypes []string
}

func (p UploadPolicy) check(img *dto.ImageUpload) error {
	if p.MaxSize > 0 && img.Size > p.MaxSize {
		return apperrors.ErrFileTooLarge
	}
	contentType := strings.ToLower(strings.TrimSpace(strings.Split(img.ContentType, ";")[0]))
	for _, t := range p.AllowedTypes {
		if strings.EqualFold(t, contentType) {
			return nil
		}
	}
	return apperrors.ErrInvalidFileType
}

// =======================
// 1. ИНТЕРФЕЙС
// =======================
type CatalogService interface {
	// Categories
	ListCategories(ctx context.Context, db *gorm.DB) ([]*dto.CategoryResponse, error)
	CreateCategory(ctx context.Context, db *gorm.DB, actor Actor, req *dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	DeleteCategory(ctx context.Context, db *gorm.DB, actor Actor, categoryID string) error

	// Designs
	Submit(ctx context.Context, db *gorm.DB, actor Actor, req *dto.CreateDesignRequest, image *dto.ImageUpload) (*dto.DesignResponse, error)
	Update(ctx context.Context, db *gorm.DB, actor Actor, designID string, req *dto.UpdateDesignRequest, image *dto.ImageUpload) (*dto.DesignResponse, error)
	Delete(ctx context.Context, db *gorm.DB, actor Actor, designID string) error
	Get(ctx context.Context, db *gorm.DB, actor Actor, designID string) (*dto.DesignResponse, error)
	List(ctx context.Context, db *gorm.DB, actor Actor, query dto.DesignListQuery) (*dto.PageResult[*dto.DesignResponse], error)
	Trending(ctx context.Context, db *gorm.DB) ([]*dto.DesignResponse, error)

	// Viewer interactions
	React(ctx context.Context, db *gorm.DB, actor Actor, designID string, kind models.ReactionType) (*dto.ReactionResponse, error)
	ToggleFavorite(ctx context.Context, db *gorm.DB, actor Actor, designID string) (*dto.FavoriteResponse, error)
	Favorites(ctx context.Context, db *gorm.DB, actor Actor, query dto.PageQuery) (*dto.PageResult[*dto.DesignResponse], error)
}

// =======================
// 2. РЕАЛИЗАЦИЯ
// =======================
type catalogService struct {
	designRepo   repositories.DesignRepository
	categoryRepo repositories.CategoryRepository
	userRepo     repositories.UserRepository
	storage      storage.Storage
	views        cache.ViewTracker
	locks        *lock.KeyedMutex
	upload       UploadPolicy
}

func NewCatalogService(
	designRepo repositories.DesignRepository,
	categoryRepo repositories.CategoryRepository,
	userRepo repositories.UserRepository,
	storage storage.Storage,
	views cache.ViewTracker,
	locks *lock.KeyedMutex,
	upload UploadPolicy,
) CatalogService {
	return &catalogService{
		designRepo:   designRepo,
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
		storage:      storage,
		views:        views,
		locks:        locks,
		upload:       upload,
	}
}

// ---------------- Categories ----------------

func (s *catalogService) ListCategories(ctx context.Context, db *gorm.DB) ([]*dto.CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAll(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	out := make([]*dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, dto.NewCategoryResponse(&categories[i]))
	}
	return out, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, db *gorm.DB, actor Actor, req *dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.ErrInsufficientPermissions
	}
	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Name)
	}
	category := &models.Category{
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		Description: req.Description,
		Icon:        req.Icon,
	}
	if err := s.categoryRepo.Create(db, category); err != nil {
		return nil, handleCategoryError(err)
	}
	logger.CtxInfo(ctx, "Category created", "category_id", category.ID, "slug", category.Slug)
	return dto.NewCategoryResponse(category), nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, db *gorm.DB, actor Actor, categoryID string) error {
	if !actor.IsAdmin() {
		return apperrors.ErrInsufficientPermissions
	}

	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if err := s.categoryRepo.Delete(tx, categoryID); err != nil {
		return handleCategoryError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// ---------------- Designs ----------------

// Submit: новый дизайн всегда pending; автор - только одобренный дизайнер
func (s *catalogService) Submit(ctx context.Context, db *gorm.DB, actor Actor, req *dto.CreateDesignRequest, image *dto.ImageUpload) (*dto.DesignResponse, error) {
	if !actor.IsDesigner() {
		return nil, apperrors.ErrInsufficientPermissions
	}
	designer, err := s.userRepo.FindByID(db, actor.ID)
	if err != nil {
		return nil, handleUserError(err)
	}
	if !designer.IsApproved {
		return nil, apperrors.ErrDesignerNotApproved
	}

	categoryID, err := s.resolveCategory(db, req.CategoryID)
	if err != nil {
		return nil, err
	}

	if image == nil || image.Content == nil {
		return nil, apperrors.FieldError("image", "Image is required")
	}
	if err := s.upload.check(image); err != nil {
		return nil, err
	}

	key := storage.DesignImageKey(designer.ID, image.Filename)
	if err := s.storage.Save(ctx, key, image.Content, image.ContentType); err != nil {
		return nil, apperrors.InternalError(err)
	}

	design := &models.Design{
		DesignerID:  designer.ID,
		CategoryID:  categoryID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		ImageURL:    s.storage.URL(key),
		ImageKey:    key,
		Tags:        models.NormalizeTags(req.Tags),
		PriceRange:  req.PriceRange,
		Status:      models.DesignStatusPending,
	}
	if err := s.designRepo.Create(db, design); err != nil {
		s.removeImage(ctx, key)
		return nil, apperrors.InternalError(err)
	}

	metrics.Transition("design", "submit")
	logger.CtxInfo(ctx, "Design submitted", "design_id", design.ID, "designer_id", designer.ID)

	return s.load(db, design.ID)
}

// Update меняет только содержимое; статус клиентом не назначается.
// Изображение заменяется только пока дизайн на модерации.
func (s *catalogService) Update(ctx context.Context, db *gorm.DB, actor Actor, designID string, req *dto.UpdateDesignRequest, image *dto.ImageUpload) (*dto.DesignResponse, error) {
	design, err := s.designRepo.FindByID(db, designID)
	if err != nil {
		return nil, handleDesignError(err)
	}
	if design.DesignerID != actor.ID {
		return nil, apperrors.NewForbiddenError("Only the owner can edit this design")
	}

	if req.Title != nil {
		design.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		design.Description = *req.Description
	}
	if req.Tags != nil {
		design.Tags = models.NormalizeTags(*req.Tags)
	}
	if req.PriceRange != nil {
		design.PriceRange = *req.PriceRange
	}
	if req.CategoryID != nil {
		categoryID, err := s.resolveCategory(db, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		design.CategoryID = categoryID
	}

	var oldKey string
	if image != nil && image.Content != nil {
		if design.Status != models.DesignStatusPending {
			return nil, apperrors.FieldError("image", "Image can only be replaced while the design is pending")
		}
		if err := s.upload.check(image); err != nil {
			return nil, err
		}
		key := storage.DesignImageKey(design.DesignerID, image.Filename)
		if err := s.storage.Save(ctx, key, image.Content, image.ContentType); err != nil {
			return nil, apperrors.InternalError(err)
		}
		oldKey = design.ImageKey
		design.ImageKey = key
		design.ImageURL = s.storage.URL(key)
	}

	if err := s.designRepo.UpdateContent(db, design); err != nil {
		return nil, handleDesignError(err)
	}
	if oldKey != "" {
		s.removeImage(ctx, oldKey)
	}

	return s.load(db, design.ID)
}

// Delete: владелец или админ; реакции, избранное и просмотры удаляются вместе с дизайном
func (s *catalogService) Delete(ctx context.Context, db *gorm.DB, actor Actor, designID string) error {
	design, err := s.designRepo.FindByID(db, designID)
	if err != nil {
		return handleDesignError(err)
	}
	if design.DesignerID != actor.ID && !actor.IsAdmin() {
		return apperrors.NewForbiddenError("Only the owner or an admin can delete this design")
	}

	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if err := s.designRepo.Delete(tx, design.ID); err != nil {
		return handleDesignError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return apperrors.InternalError(err)
	}

	s.removeImage(ctx, design.ImageKey)
	logger.CtxInfo(ctx, "Design deleted", "design_id", design.ID, "by", actor.ID)
	return nil
}

// Get засчитывает просмотр аутентифицированного зрителя не чаще раза за сессию
func (s *catalogService) Get(ctx context.Context, db *gorm.DB, actor Actor, designID string) (*dto.DesignResponse, error) {
	design, err := s.designRepo.FindByID(db, designID)
	if err != nil {
		return nil, handleDesignError(err)
	}
	if !s.visible(actor, design) {
		return nil, apperrors.ErrDesignNotFound
	}

	if !actor.Anonymous() && design.Status == models.DesignStatusApproved && design.DesignerID != actor.ID {
		s.recordView(ctx, db, actor.ID, design)
	}

	resp := dto.NewDesignResponse(design)
	if !actor.Anonymous() {
		if err := s.attachViewerState(db, actor.ID, resp); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}
	return resp, nil
}

func (s *catalogService) recordView(ctx context.Context, db *gorm.DB, viewerID string, design *models.Design) {
	counted, err := s.views.MarkViewed(ctx, db, viewerID, design.ID)
	if err != nil {
		// Просмотр - не критичная запись, ответ не ломаем
		logger.CtxWithError(ctx, "Failed to record design view", err, "design_id", design.ID)
		return
	}
	if !counted {
		return
	}
	if err := s.designRepo.IncrementCounter(db, design.ID, repositories.CounterViews, 1); err != nil {
		logger.CtxWithError(ctx, "Failed to increment views", err, "design_id", design.ID)
		return
	}
	design.ViewsCount++
}

func (s *catalogService) attachViewerState(db *gorm.DB, viewerID string, resp *dto.DesignResponse) error {
	reaction, err := s.designRepo.FindReaction(db, viewerID, resp.ID)
	switch {
	case err == nil:
		kind := reaction.ReactionType
		resp.MyReaction = &kind
	case !errors.Is(err, repositories.ErrReactionNotFound):
		return err
	}

	favorited := true
	if _, err := s.designRepo.FindFavorite(db, viewerID, resp.ID); err != nil {
		if !errors.Is(err, repositories.ErrFavoriteNotFound) {
			return err
		}
		favorited = false
	}
	resp.IsFavorited = &favorited
	return nil
}

// List: посторонним - только approved при любых фильтрах;
// дизайнер, фильтрующий по себе, видит свои дизайны в любом статусе; админ - любой статус.
func (s *catalogService) List(ctx context.Context, db *gorm.DB, actor Actor, query dto.DesignListQuery) (*dto.PageResult[*dto.DesignResponse], error) {
	page := repositories.Page{Page: query.Page, PageSize: query.PageSize}.Normalize()
	criteria := repositories.DesignCriteria{
		Search:     strings.TrimSpace(query.Search),
		CategoryID: query.Category,
		DesignerID: query.Designer,
		OrderBy:    query.Ordering,
		Page:       page,
	}
	criteria.Statuses = listStatuses(actor, query)

	designs, total, err := s.designRepo.FindWithCriteria(db, criteria)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]*dto.DesignResponse, 0, len(designs))
	for i := range designs {
		items = append(items, dto.NewDesignResponse(&designs[i]))
	}
	return &dto.PageResult[*dto.DesignResponse]{Items: items, Total: total, Page: page.Page, PageSize: page.PageSize}, nil
}

func listStatuses(actor Actor, query dto.DesignListQuery) []models.DesignStatus {
	privileged := actor.IsAdmin() || (actor.IsDesigner() && query.Designer != "" && query.Designer == actor.ID)
	if !privileged {
		return []models.DesignStatus{models.DesignStatusApproved}
	}
	if query.Status != "" {
		return []models.DesignStatus{models.DesignStatus(query.Status)}
	}
	return nil
}

func (s *catalogService) Trending(ctx context.Context, db *gorm.DB) ([]*dto.DesignResponse, error) {
	designs, err := s.designRepo.FindTrending(db, TrendingLimit)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	out := make([]*dto.DesignResponse, 0, len(designs))
	for i := range designs {
		out = append(out, dto.NewDesignResponse(&designs[i]))
	}
	return out, nil
}

// ---------------- Reactions & favorites ----------------

// React - переключатель: та же реакция снимается, противоположная заменяется,
// оба счетчика меняются в одной транзакции под ключом (зритель, дизайн).
func (s *catalogService) React(ctx context.Context, db *gorm.DB, actor Actor, designID string, kind models.ReactionType) (*dto.ReactionResponse, error) {
	if !kind.IsValid() {
		return nil, apperrors.FieldError("reaction_type", "Must be like or dislike")
	}

	unlock := s.locks.Lock("reaction:" + actor.ID + ":" + designID)
	defer unlock()

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	design, err := s.designRepo.LockByID(tx, designID)
	if err != nil {
		return nil, handleDesignError(err)
	}
	if design.Status != models.DesignStatusApproved {
		return nil, apperrors.ErrDesignNotFound
	}

	var current *models.ReactionType
	existing, err := s.designRepo.FindReaction(tx, actor.ID, designID)
	switch {
	case errors.Is(err, repositories.ErrReactionNotFound):
		if err := s.designRepo.CreateReaction(tx, &models.DesignReaction{UserID: actor.ID, DesignID: designID, ReactionType: kind}); err != nil {
			return nil, apperrors.InternalError(err)
		}
		if err := s.bump(tx, design, kind, 1); err != nil {
			return nil, apperrors.InternalError(err)
		}
		current = &kind

	case err != nil:
		return nil, apperrors.InternalError(err)

	case existing.ReactionType == kind:
		if err := s.designRepo.DeleteReaction(tx, existing); err != nil {
			return nil, apperrors.InternalError(err)
		}
		if err := s.bump(tx, design, kind, -1); err != nil {
			return nil, apperrors.InternalError(err)
		}

	default:
		previous := existing.ReactionType
		existing.ReactionType = kind
		if err := s.designRepo.UpdateReaction(tx, existing); err != nil {
			return nil, apperrors.InternalError(err)
		}
		if err := s.bump(tx, design, previous, -1); err != nil {
			return nil, apperrors.InternalError(err)
		}
		if err := s.bump(tx, design, kind, 1); err != nil {
			return nil, apperrors.InternalError(err)
		}
		current = &kind
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.ReactionResponse{
		DesignID:      design.ID,
		Reaction:      current,
		LikesCount:    design.LikesCount,
		DislikesCount: design.DislikesCount,
		NetLikes:      design.NetLikes(),
	}, nil
}

// bump меняет счетчик в БД и в загруженной копии
func (s *catalogService) bump(tx *gorm.DB, design *models.Design, kind models.ReactionType, delta int) error {
	column := repositories.CounterLikes
	if kind == models.ReactionDislike {
		column = repositories.CounterDislikes
	}
	if err := s.designRepo.IncrementCounter(tx, design.ID, column, delta); err != nil {
		return err
	}
	if kind == models.ReactionDislike {
		design.DislikesCount += delta
	} else {
		design.LikesCount += delta
	}
	return nil
}

func (s *catalogService) ToggleFavorite(ctx context.Context, db *gorm.DB, actor Actor, designID string) (*dto.FavoriteResponse, error) {
	unlock := s.locks.Lock("favorite:" + actor.ID + ":" + designID)
	defer unlock()

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	design, err := s.designRepo.LockByID(tx, designID)
	if err != nil {
		return nil, handleDesignError(err)
	}
	if design.Status != models.DesignStatusApproved {
		return nil, apperrors.ErrDesignNotFound
	}

	favorited := false
	existing, err := s.designRepo.FindFavorite(tx, actor.ID, designID)
	switch {
	case errors.Is(err, repositories.ErrFavoriteNotFound):
		if err := s.designRepo.CreateFavorite(tx, &models.Favorite{UserID: actor.ID, DesignID: designID}); err != nil {
			return nil, apperrors.InternalError(err)
		}
		favorited = true
	case err != nil:
		return nil, apperrors.InternalError(err)
	default:
		if err := s.designRepo.DeleteFavorite(tx, existing); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.FavoriteResponse{DesignID: designID, IsFavorited: favorited}, nil
}

func (s *catalogService) Favorites(ctx context.Context, db *gorm.DB, actor Actor, query dto.PageQuery) (*dto.PageResult[*dto.DesignResponse], error) {
	page := repositories.Page{Page: query.Page, PageSize: query.PageSize}.Normalize()
	favorites, total, err := s.designRepo.FindFavorites(db, actor.ID, page)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]*dto.DesignResponse, 0, len(favorites))
	for i := range favorites {
		if favorites[i].Design == nil {
			continue
		}
		resp := dto.NewDesignResponse(favorites[i].Design)
		favorited := true
		resp.IsFavorited = &favorited
		items = append(items, resp)
	}
	return &dto.PageResult[*dto.DesignResponse]{Items: items, Total: total, Page: page.Page, PageSize: page.PageSize}, nil
}

// ---------------- helpers ----------------

func (s *catalogService) visible(actor Actor, design *models.Design) bool {
	return design.Status == models.DesignStatusApproved || actor.IsAdmin() || design.DesignerID == actor.ID
}

func (s *catalogService) resolveCategory(db *gorm.DB, categoryID string) (*string, error) {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return nil, nil
	}
	if _, err := s.categoryRepo.FindByID(db, categoryID); err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, apperrors.ErrUnknownCategory
		}
		return nil, apperrors.InternalError(err)
	}
	return &categoryID, nil
}

func (s *catalogService) removeImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		logger.CtxWithError(ctx, "Failed to delete design image", err, "key", key)
	}
}

func (s *catalogService) load(db *gorm.DB, designID string) (*dto.DesignResponse, error) {
	design, err := s.designRepo.FindByID(db, designID)
	if err != nil {
		return nil, handleDesignError(err)
	}
	return dto.NewDesignResponse(design), nil
}

// slugify: нижний регистр, пробелы и прочие разделители - дефис
func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r > 127:
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
