package cache

import (
	"context"
	"time"

	"mehndi_backend/internal/repositories"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ViewTracker решает, засчитывать ли просмотр пары (зритель, дизайн) в текущей сессии
type ViewTracker interface {
	MarkViewed(ctx context.Context, db *gorm.DB, viewerID, designID string) (bool, error)
}

// RedisViewTracker - SETNX с TTL, равным длине сессии
type RedisViewTracker struct {
	client  *redis.Client
	session time.Duration
}

func NewRedisViewTracker(client *redis.Client, session time.Duration) *RedisViewTracker {
	return &RedisViewTracker{client: client, session: session}
}

func (t *RedisViewTracker) MarkViewed(ctx context.Context, _ *gorm.DB, viewerID, designID string) (bool, error) {
	return t.client.SetNX(ctx, viewKey(viewerID, designID), 1, t.session).Result()
}

func viewKey(viewerID, designID string) string {
	return "design_view:" + designID + ":" + viewerID
}

// DBViewTracker хранит последний засчитанный просмотр в таблице design_views
type DBViewTracker struct {
	repo    repositories.DesignRepository
	session time.Duration
	now     func() time.Time
}

func NewDBViewTracker(repo repositories.DesignRepository, session time.Duration) *DBViewTracker {
	return &DBViewTracker{repo: repo, session: session, now: time.Now}
}

func (t *DBViewTracker) MarkViewed(_ context.Context, db *gorm.DB, viewerID, designID string) (bool, error) {
	return t.repo.TouchView(db, viewerID, designID, t.now().UTC(), t.session)
}
