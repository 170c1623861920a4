package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"mehndi_backend/internal/auth"
	"mehndi_backend/internal/logger"
	"mehndi_backend/internal/models"
	"mehndi_backend/internal/repositories"
	"mehndi_backend/internal/services/dto"
	"mehndi_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// =======================
// 1. ИНТЕРФЕЙС
// =======================
type AuthService interface {
	// Register: дизайнер создается неодобренным, покупатель - сразу активным
	Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*dto.TokenResponse, error)
	Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// Refresh ротирует пару: старый refresh-токен удаляется
	Refresh(ctx context.Context, db *gorm.DB, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, db *gorm.DB, refreshToken string) error
	// CleanupExpired удаляет просроченные refresh-токены
	CleanupExpired(ctx context.Context, db *gorm.DB) (int64, error)
}

// =======================
// 2. РЕАЛИЗАЦИЯ
// =======================
type authService struct {
	userRepo    repositories.UserRepository
	refreshRepo repositories.RefreshTokenRepository
	tokens      *auth.TokenManager
	refreshTTL  time.Duration
	now         func() time.Time
}

func NewAuthService(
	userRepo repositories.UserRepository,
	refreshRepo repositories.RefreshTokenRepository,
	tokens *auth.TokenManager,
	refreshTTL time.Duration,
	now func() time.Time,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		refreshRepo: refreshRepo,
		tokens:      tokens,
		refreshTTL:  refreshTTL,
		now:         now,
	}
}

func (s *authService) Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	role := models.UserRole(req.Role)
	if role != models.UserRoleCustomer && role != models.UserRoleDesigner {
		return nil, apperrors.FieldError("role", "Role must be customer or designer")
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.FieldError("password", err.Error())
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         role,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Location:     req.Location,
		Bio:          req.Bio,
		IsApproved:   role != models.UserRoleDesigner,
	}
	if role == models.UserRoleDesigner {
		user.YearsOfExperience = req.YearsOfExperience
		user.Specialization = req.Specialization
		user.PortfolioURL = req.PortfolioURL
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if err := s.userRepo.Create(tx, user); err != nil {
		return nil, handleUserError(err)
	}
	resp, err := s.issueTokens(tx, user)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "User registered", "user_id", user.ID, "role", user.Role)
	return resp, nil
}

func (s *authService) Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.FindByLogin(db, req.Login())
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}
	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.CtxWarn(ctx, "Failed login attempt", "user_id", user.ID)
		return nil, apperrors.ErrInvalidCredentials
	}

	resp, err := s.issueTokens(db, user)
	if err != nil {
		return nil, err
	}
	logger.CtxInfo(ctx, "User logged in", "user_id", user.ID)
	return resp, nil
}

func (s *authService) Refresh(ctx context.Context, db *gorm.DB, refreshToken string) (*dto.TokenResponse, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	stored, err := s.refreshRepo.FindByToken(tx, refreshToken)
	if err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}
	if err := s.refreshRepo.DeleteByToken(tx, refreshToken); err != nil {
		// Токен успел использовать параллельный запрос
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}
	if !stored.ExpiresAt.After(s.now()) {
		if err := tx.Commit().Error; err != nil {
			return nil, apperrors.InternalError(err)
		}
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(tx, stored.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}

	resp, err := s.issueTokens(tx, user)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	return resp, nil
}

// Logout идемпотентен
func (s *authService) Logout(ctx context.Context, db *gorm.DB, refreshToken string) error {
	if err := s.refreshRepo.DeleteByToken(db, refreshToken); err != nil && !errors.Is(err, repositories.ErrRefreshTokenNotFound) {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *authService) CleanupExpired(ctx context.Context, db *gorm.DB) (int64, error) {
	return s.refreshRepo.DeleteExpired(db, s.now())
}

func (s *authService) issueTokens(db *gorm.DB, user *models.User) (*dto.TokenResponse, error) {
	access, err := s.tokens.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	refresh, err := auth.NewRefreshToken()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := s.refreshRepo.Create(db, &models.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: s.now().Add(s.refreshTTL),
	}); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
		User:         dto.NewUserResponse(user, true),
	}, nil
}
