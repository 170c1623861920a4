package services

import (
	"net/http"
	"testing"
	"time"

	"mehndi_backend/internal/models"
	"mehndi_backend/internal/services/dto"
	"mehndi_backend/internal/testutil"
	"mehndi_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerRequest(username, role string) *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Username: username,
		Email:    username + "@Example.com",
		Password: "secret-pass",
		Role:     role,
	}
}

func TestAuthService_Register(t *testing.T) {
	env := newTestEnv(t, testutil.Date(2024, 5, 1, 9, 0))

	customer, err := env.svc.Auth.Register(env.ctx, env.db, registerRequest("asha", "customer"))
	require.NoError(t, err)
	assert.Equal(t, "Bearer", customer.TokenType)
	assert.NotEmpty(t, customer.AccessToken)
	assert.NotEmpty(t, customer.RefreshToken)
	assert.Equal(t, "asha@example.com", customer.User.Email)
	assert.Nil(t, customer.User.IsApproved)

	designer, err := env.svc.Auth.Register(env.ctx, env.db, registerRequest("meera", "designer"))
	require.NoError(t, err)
	require.NotNil(t, designer.User.IsApproved)
	assert.False(t, *designer.User.IsApproved)
	assert.False(t, env.reload(t, designer.User.ID).IsApproved)

	_, err = env.svc.Auth.Register(env.ctx, env.db, registerRequest("root", "admin"))
	assertAppError(t, err, apperrors.CodeValidationFailed, http.StatusBadRequest)

	_, err = env.svc.Auth.Register(env.ctx, env.db, registerRequest("asha", "customer"))
	assertAppError(t, err, apperrors.CodeValidationFailed, http.StatusBadRequest)

	short := registerRequest("tara", "customer")
	short.Password = "short"
	_, err = env.svc.Auth.Register(env.ctx, env.db, short)
	assertAppError(t, err, apperrors.CodeValidationFailed, http.StatusBadRequest)
}

func TestAuthService_LoginRefreshLogout(t *testing.T) {
	env := newTestEnv(t, testutil.Date(2024, 5, 1, 9, 0))
	user := testutil.CreateCustomer(t, env.db)

	_, err := env.svc.Auth.Login(env.ctx, env.db, &dto.LoginRequest{Email: user.Email, Password: "wrong-password"})
	assertAppError(t, err, apperrors.CodeInvalidCredentials, http.StatusUnauthorized)
	_, err = env.svc.Auth.Login(env.ctx, env.db, &dto.LoginRequest{Username: "nobody", Password: testutil.Password})
	assertAppError(t, err, apperrors.CodeInvalidCredentials, http.StatusUnauthorized)

	byUsername, err := env.svc.Auth.Login(env.ctx, env.db, &dto.LoginRequest{Username: user.Username, Password: testutil.Password})
	require.NoError(t, err)
	assert.Equal(t, user.ID, byUsername.User.ID)

	tokens, err := env.svc.Auth.Login(env.ctx, env.db, &dto.LoginRequest{Email: user.Email, Password: testutil.Password})
	require.NoError(t, err)

	rotated, err := env.svc.Auth.Refresh(env.ctx, env.db, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	// Старый токен после ротации недействителен
	_, err = env.svc.Auth.Refresh(env.ctx, env.db, tokens.RefreshToken)
	assertAppError(t, err, apperrors.CodeInvalidToken, http.StatusUnauthorized)

	require.NoError(t, env.svc.Auth.Logout(env.ctx, env.db, rotated.RefreshToken))
	require.NoError(t, env.svc.Auth.Logout(env.ctx, env.db, rotated.RefreshToken))
	_, err = env.svc.Auth.Refresh(env.ctx, env.db, rotated.RefreshToken)
	assertAppError(t, err, apperrors.CodeInvalidToken, http.StatusUnauthorized)
}

func TestAuthService_ExpiredRefreshToken(t *testing.T) {
	start := testutil.Date(2024, 5, 1, 9, 0)
	env := newTestEnv(t, start)
	user := testutil.CreateCustomer(t, env.db)

	tokens, err := env.svc.Auth.Login(env.ctx, env.db, &dto.LoginRequest{Email: user.Email, Password: testutil.Password})
	require.NoError(t, err)
	_, err = env.svc.Auth.Login(env.ctx, env.db, &dto.LoginRequest{Email: user.Email, Password: testutil.Password})
	require.NoError(t, err)

	env.clock.Set(start.Add(time.Duration(env.cfg.JWT.RefreshTTLHours)*time.Hour + time.Minute))

	_, err = env.svc.Auth.Refresh(env.ctx, env.db, tokens.RefreshToken)
	assertAppError(t, err, apperrors.CodeInvalidToken, http.StatusUnauthorized)

	removed, err := env.svc.Auth.CleanupExpired(env.ctx, env.db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	var left int64
	env.db.Model(&models.RefreshToken{}).Count(&left)
	assert.Zero(t, left)
}
