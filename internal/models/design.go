package models

import (
	"strings"
	"time"
)

type Design struct {
	BaseModel
	DesignerID  string    `gorm:"size:36;not null;index" json:"designer_id"`
	Designer    *User     `gorm:"foreignKey:DesignerID" json:"designer,omitempty"`
	CategoryID  *string   `gorm:"size:36;index" json:"category_id"`
	Category    *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	ImageURL    string    `json:"image_url"`
	ImageKey    string    `json:"-"`
	Tags        string    `gorm:"size:500" json:"tags"` // через запятую
	PriceRange  string    `gorm:"size:100" json:"price_range"`

	Status          DesignStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	RejectionReason string       `gorm:"type:text" json:"rejection_reason,omitempty"`
	ReviewedAt      *time.Time   `json:"reviewed_at,omitempty"`

	ViewsCount    int `gorm:"not null;default:0" json:"views_count"`
	LikesCount    int `gorm:"not null;default:0" json:"likes_count"`
	DislikesCount int `gorm:"not null;default:0" json:"dislikes_count"`
}

// NetLikes = likes - dislikes
func (d *Design) NetLikes() int {
	return d.LikesCount - d.DislikesCount
}

// TagList разбирает теги
func (d *Design) TagList() []string {
	if d.Tags == "" {
		return []string{}
	}
	return strings.Split(d.Tags, ",")
}

// NormalizeTags убирает пробелы, пустые значения и дубликаты
func NormalizeTags(raw string) string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return strings.Join(out, ",")
}

// DesignReaction - реакция зрителя на дизайн, одна на пару (user, design)
type DesignReaction struct {
	BaseModel
	UserID       string       `gorm:"size:36;not null;uniqueIndex:idx_reaction_user_design" json:"user_id"`
	DesignID     string       `gorm:"size:36;not null;uniqueIndex:idx_reaction_user_design;index" json:"design_id"`
	ReactionType ReactionType `gorm:"type:varchar(10);not null" json:"reaction_type"`
}

type Favorite struct {
	BaseModel
	UserID   string  `gorm:"size:36;not null;uniqueIndex:idx_favorite_user_design" json:"user_id"`
	DesignID string  `gorm:"size:36;not null;uniqueIndex:idx_favorite_user_design;index" json:"design_id"`
	Design   *Design `gorm:"foreignKey:DesignID" json:"design,omitempty"`
}

// DesignView - последний засчитанный просмотр пары (user, design)
type DesignView struct {
	BaseModel
	UserID       string    `gorm:"size:36;not null;uniqueIndex:idx_view_user_design"`
	DesignID     string    `gorm:"size:36;not null;uniqueIndex:idx_view_user_design;index"`
	LastViewedAt time.Time `gorm:"not null"`
}
