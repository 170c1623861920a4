package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"mehndi_backend/internal/config"

	"github.com/google/uuid"
)

// Storage хранит изображения дизайнов
type Storage interface {
	// Save сохраняет объект под ключом key
	Save(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Delete удаляет объект; отсутствие объекта ошибкой не считается
	Delete(ctx context.Context, key string) error

	// URL возвращает публичный адрес объекта
	URL(key string) string
}

// NewStorage выбирает реализацию по storage.type
func NewStorage(cfg *config.Config) (Storage, error) {
	switch cfg.Storage.Type {
	case "local":
		return NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
	case "cloudflare_r2":
		return NewCloudflareR2Storage(R2Config{
			Bucket:    cfg.Storage.Bucket,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Endpoint:  cfg.Storage.Endpoint,
			BaseURL:   cfg.Storage.BaseURL,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}
}

// DesignImageKey строит ключ вида designs/<designer>/<uuid>.<ext>
func DesignImageKey(designerID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join("designs", designerID, uuid.NewString()+ext)
}
