package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"mehndi_backend/internal/auth"
	"mehndi_backend/internal/config"
	"mehndi_backend/internal/email"
	"mehndi_backend/internal/models"
	"mehndi_backend/internal/storage"
	"mehndi_backend/internal/testutil"
	"mehndi_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testEnv - контейнер сервисов поверх sqlite в памяти
type testEnv struct {
	db     *gorm.DB
	ctx    context.Context
	cfg    *config.Config
	clock  *testutil.Clock
	mailer *email.MockProvider
	svc    *ServiceContainer
}

func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)

	cfg := config.TestConfig()
	store, err := storage.NewLocalStorage(t.TempDir(), cfg.Storage.BaseURL)
	require.NoError(t, err)

	clock := testutil.NewClock(now)
	mailer := email.NewMockProvider()

	svc := NewServiceContainer(Dependencies{
		Config:  cfg,
		Storage: store,
		Email:   mailer,
		Tokens:  auth.NewTokenManager(cfg.JWT.Secret, time.Hour),
		Now:     clock.Now,
	})

	return &testEnv{
		db:     db,
		ctx:    context.Background(),
		cfg:    cfg,
		clock:  clock,
		mailer: mailer,
		svc:    svc,
	}
}

func actorOf(u *models.User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

// reload перечитывает пользователя, чтобы проверить агрегаты
func (e *testEnv) reload(t *testing.T, id string) *models.User {
	t.Helper()
	var u models.User
	require.NoError(t, e.db.First(&u, "id = ?", id).Error)
	return &u
}

func (e *testEnv) notificationsOf(t *testing.T, userID string, kind models.NotificationType) []models.Notification {
	t.Helper()
	var out []models.Notification
	require.NoError(t, e.db.Where("user_id = ? AND type = ?", userID, kind).Find(&out).Error)
	return out
}

// assertAppError проверяет код ошибки приложения и HTTP статус
func assertAppError(t *testing.T, err error, code apperrors.ErrorCode, status int) *apperrors.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	assert.Equal(t, status, appErr.HTTPCode)
	return appErr
}
