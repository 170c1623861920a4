// Package testutil - общая обвязка для тестов: sqlite в памяти и фикстуры.
package testutil

import (
	"testing"

	"mehndi_backend/database"
	"mehndi_backend/internal/config"
	"mehndi_backend/internal/logger"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB открывает чистую sqlite-базу в памяти с примененными миграциями.
// Соединение одно: запросы внутри транзакции должны идти через tx.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger.Init("test")

	cfg := config.TestConfig()
	db, err := database.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
