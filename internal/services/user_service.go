package services

import (
	"context"

	"mehndi_backend/internal/models"
	"mehndi_backend/internal/repositories"
	"mehndi_backend/internal/services/dto"
	"mehndi_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type UserService interface {
	GetMe(ctx context.Context, db *gorm.DB, userID string) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	Stats(ctx context.Context, db *gorm.DB, actor Actor) (*dto.DashboardStats, error)

	// Публичный каталог дизайнеров: только одобренные
	ListDesigners(ctx context.Context, db *gorm.DB, query dto.DesignerListQuery) (*dto.PageResult[*dto.UserResponse], error)
	GetDesigner(ctx context.Context, db *gorm.DB, actor Actor, designerID string) (*dto.UserResponse, error)

	ListUsers(ctx context.Context, db *gorm.DB, query dto.UserListQuery) (*dto.PageResult[*dto.UserResponse], error)
}

type userService struct {
	userRepo    repositories.UserRepository
	designRepo  repositories.DesignRepository
	bookingRepo repositories.BookingRepository
}

func NewUserService(
	userRepo repositories.UserRepository,
	designRepo repositories.DesignRepository,
	bookingRepo repositories.BookingRepository,
) UserService {
	return &userService{
		userRepo:    userRepo,
		designRepo:  designRepo,
		bookingRepo: bookingRepo,
	}
}

func (s *userService) GetMe(ctx context.Context, db *gorm.DB, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleUserError(err)
	}
	return dto.NewUserResponse(user, true), nil
}

func (s *userService) UpdateProfile(ctx context.Context, db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleUserError(err)
	}

	setString(&user.FirstName, req.FirstName)
	setString(&user.LastName, req.LastName)
	setString(&user.Phone, req.Phone)
	setString(&user.Bio, req.Bio)
	setString(&user.Location, req.Location)
	setString(&user.ProfilePicture, req.ProfilePicture)
	if user.IsDesigner() {
		if req.YearsOfExperience != nil {
			user.YearsOfExperience = *req.YearsOfExperience
		}
		setString(&user.Specialization, req.Specialization)
		setString(&user.PortfolioURL, req.PortfolioURL)
	}

	if err := s.userRepo.Update(db, user); err != nil {
		return nil, handleUserError(err)
	}
	return dto.NewUserResponse(user, true), nil
}

func (s *userService) Stats(ctx context.Context, db *gorm.DB, actor Actor) (*dto.DashboardStats, error) {
	user, err := s.userRepo.FindByID(db, actor.ID)
	if err != nil {
		return nil, handleUserError(err)
	}
	stats := &dto.DashboardStats{Role: user.Role}

	switch user.Role {
	case models.UserRoleDesigner:
		counts, err := s.bookingRepo.CountByStatus(db, repositories.BookingFilter{DesignerID: user.ID})
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		designs, err := s.designRepo.CountByDesigner(db, user.ID, nil)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		pending := counts[models.BookingStatusPending]
		completed := counts[models.BookingStatusCompleted]
		rating := user.AverageRating
		stats.TotalBookings = int64(user.TotalBookings)
		stats.PendingBookings = &pending
		stats.CompletedBookings = &completed
		stats.TotalDesigns = &designs
		stats.AverageRating = &rating

	case models.UserRoleCustomer:
		counts, err := s.bookingRepo.CountByStatus(db, repositories.BookingFilter{CustomerID: user.ID})
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		favorites, err := s.designRepo.CountFavorites(db, user.ID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		for _, c := range counts {
			stats.TotalBookings += c
		}
		stats.FavoritesCount = &favorites

	default:
		counts, err := s.bookingRepo.CountByStatus(db, repositories.BookingFilter{})
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		for _, c := range counts {
			stats.TotalBookings += c
		}
	}
	return stats, nil
}

func (s *userService) ListDesigners(ctx context.Context, db *gorm.DB, query dto.DesignerListQuery) (*dto.PageResult[*dto.UserResponse], error) {
	role := models.UserRoleDesigner
	approved := true
	return s.list(db, repositories.UserFilter{
		Role:       &role,
		IsApproved: &approved,
		Search:     query.Search,
		Location:   query.Location,
		OrderBy:    query.Ordering,
		Page:       repositories.Page{Page: query.Page, PageSize: query.PageSize}.Normalize(),
	}, false)
}

// GetDesigner: неодобренный дизайнер виден только себе и админу
func (s *userService) GetDesigner(ctx context.Context, db *gorm.DB, actor Actor, designerID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, designerID)
	if err != nil {
		if isNotFoundErr(err) {
			return nil, apperrors.ErrDesignerNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	if !user.IsDesigner() || (!user.IsApproved && !actor.IsAdmin() && actor.ID != user.ID) {
		return nil, apperrors.ErrDesignerNotFound
	}

	status := models.DesignStatusApproved
	count, err := s.designRepo.CountByDesigner(db, user.ID, &status)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := dto.NewUserResponse(user, actor.IsAdmin() || actor.ID == user.ID)
	resp.ApprovedDesignsCount = &count
	return resp, nil
}

func (s *userService) ListUsers(ctx context.Context, db *gorm.DB, query dto.UserListQuery) (*dto.PageResult[*dto.UserResponse], error) {
	filter := repositories.UserFilter{
		IsApproved: query.Approved,
		Search:     query.Search,
		OrderBy:    query.Ordering,
		Page:       repositories.Page{Page: query.Page, PageSize: query.PageSize}.Normalize(),
	}
	if query.Role != "" {
		role := models.UserRole(query.Role)
		filter.Role = &role
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "-created_at"
	}
	return s.list(db, filter, true)
}

func (s *userService) list(db *gorm.DB, filter repositories.UserFilter, private bool) (*dto.PageResult[*dto.UserResponse], error) {
	users, total, err := s.userRepo.FindWithFilter(db, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	items := make([]*dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserResponse(&users[i], private))
	}
	return &dto.PageResult[*dto.UserResponse]{Items: items, Total: total, Page: filter.Page.Page, PageSize: filter.Page.PageSize}, nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
