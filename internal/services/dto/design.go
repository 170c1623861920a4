package dto

import (
	"io"
	"time"

	"mehndi_backend/internal/models"
)

// ======================
// Request DTOs
// ======================

// CreateDesignRequest - поля multipart формы, изображение передается отдельно
type CreateDesignRequest struct {
	Title       string `form:"title" validate:"required,max=200"`
	Description string `form:"description" validate:"omitempty,max=5000"`
	CategoryID  string `form:"category_id" validate:"omitempty,max=36"`
	Tags        string `form:"tags" validate:"omitempty,max=500"`
	PriceRange  string `form:"price_range" validate:"omitempty,max=100"`
}

type UpdateDesignRequest struct {
	Title       *string `json:"title" form:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" form:"description" validate:"omitempty,max=5000"`
	CategoryID  *string `json:"category_id" form:"category_id" validate:"omitempty,max=36"`
	Tags        *string `json:"tags" form:"tags" validate:"omitempty,max=500"`
	PriceRange  *string `json:"price_range" form:"price_range" validate:"omitempty,max=100"`
}

// ImageUpload - загруженный файл изображения
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

type DesignListQuery struct {
	Search   string `form:"search" validate:"omitempty,max=100"`
	Category string `form:"category" validate:"omitempty,max=36"`
	Designer string `form:"designer" validate:"omitempty,max=36"`
	Status   string `form:"status" validate:"omitempty,is-design-status"`
	Ordering string `form:"ordering" validate:"omitempty,oneof=-created_at created_at -likes_count -views_count title"`
	PageQuery
}

type ReactRequest struct {
	ReactionType string `json:"reaction_type" validate:"required,is-reaction"`
}

type RejectDesignRequest struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Slug        string `json:"slug" validate:"omitempty,max=100"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Icon        string `json:"icon" validate:"omitempty,max=50"`
}

// ======================
// Response DTOs
// ======================

type CategoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

type DesignResponse struct {
	ID              string              `json:"id"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	ImageURL        string              `json:"image_url"`
	Category        *CategoryResponse   `json:"category"`
	Designer        *UserSummary        `json:"designer"`
	Tags            []string            `json:"tags"`
	PriceRange      string              `json:"price_range"`
	Status          models.DesignStatus `json:"status"`
	RejectionReason string              `json:"rejection_reason,omitempty"`
	ViewsCount      int                 `json:"views_count"`
	LikesCount      int                 `json:"likes_count"`
	DislikesCount   int                 `json:"dislikes_count"`
	NetLikes        int                 `json:"net_likes"`
	CreatedAt       time.Time           `json:"created_at"`

	// Только для аутентифицированного зрителя
	MyReaction  *models.ReactionType `json:"my_reaction,omitempty"`
	IsFavorited *bool                `json:"is_favorited,omitempty"`
}

type ReactionResponse struct {
	DesignID      string               `json:"design_id"`
	Reaction      *models.ReactionType `json:"reaction"`
	LikesCount    int                  `json:"likes_count"`
	DislikesCount int                  `json:"dislikes_count"`
	NetLikes      int                  `json:"net_likes"`
}

type FavoriteResponse struct {
	DesignID    string `json:"design_id"`
	IsFavorited bool   `json:"is_favorited"`
}

func NewCategoryResponse(c *models.Category) *CategoryResponse {
	if c == nil {
		return nil
	}
	return &CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Icon:        c.Icon,
	}
}

func NewDesignResponse(d *models.Design) *DesignResponse {
	return &DesignResponse{
		ID:              d.ID,
		Title:           d.Title,
		Description:     d.Description,
		ImageURL:        d.ImageURL,
		Category:        NewCategoryResponse(d.Category),
		Designer:        NewUserSummary(d.Designer),
		Tags:            d.TagList(),
		PriceRange:      d.PriceRange,
		Status:          d.Status,
		RejectionReason: d.RejectionReason,
		ViewsCount:      d.ViewsCount,
		LikesCount:      d.LikesCount,
		DislikesCount:   d.DislikesCount,
		NetLikes:        d.NetLikes(),
		CreatedAt:       d.CreatedAt,
	}
}
