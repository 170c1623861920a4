package handlers

import (
	"net/http"

	"mehndi_backend/internal/services"
	"mehndi_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	*BaseHandler
	userService   services.UserService
	reviewService services.ReviewService
}

func NewUserHandler(base *BaseHandler, userService services.UserService, reviewService services.ReviewService) *UserHandler {
	return &UserHandler{
		BaseHandler:   base,
		userService:   userService,
		reviewService: reviewService,
	}
}

func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup) {
	me := r.Group("/users/me")
	me.Use(h.RequireAuth())
	{
		me.GET("", h.GetMe)
		me.PUT("", h.UpdateMe)
		me.GET("/stats", h.GetStats)
	}

	designers := r.Group("/designers")
	designers.Use(h.OptionalAuth())
	{
		designers.GET("", h.ListDesigners)
		designers.GET("/:designerId", h.GetDesigner)
		designers.GET("/:designerId/rating", h.GetDesignerRating)
	}
}

// --- Current user ---

func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetMe(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetStats - сводка для личного кабинета, состав зависит от роли
func (h *UserHandler) GetStats(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	stats, err := h.userService.Stats(c.Request.Context(), h.GetDB(c), actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// --- Public designers ---

func (h *UserHandler) ListDesigners(c *gin.Context) {
	var query dto.DesignerListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	page, err := h.userService.ListDesigners(c.Request.Context(), h.GetDB(c), query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	RespondPage(c, page)
}

func (h *UserHandler) GetDesigner(c *gin.Context) {
	designer, err := h.userService.GetDesigner(c.Request.Context(), h.GetDB(c), h.OptionalActor(c), c.Param("designerId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, designer)
}

func (h *UserHandler) GetDesignerRating(c *gin.Context) {
	designerID := c.Param("designerId")
	db := h.GetDB(c)

	// Рейтинг скрытого дизайнера не раскрываем
	if _, err := h.userService.GetDesigner(c.Request.Context(), db, h.OptionalActor(c), designerID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	stats, err := h.reviewService.RatingStats(c.Request.Context(), db, designerID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// --- Admin ---

type AdminUserHandler struct {
	*BaseHandler
	userService       services.UserService
	moderationService services.ModerationService
}

func NewAdminUserHandler(base *BaseHandler, userService services.UserService, moderationService services.ModerationService) *AdminUserHandler {
	return &AdminUserHandler{
		BaseHandler:       base,
		userService:       userService,
		moderationService: moderationService,
	}
}

func (h *AdminUserHandler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/dashboard", h.Dashboard)
	admin.GET("/users", h.ListUsers)
	admin.POST("/users/:userId/approve", h.ApproveDesigner)
	admin.DELETE("/users/:userId", h.DeleteUser)
	admin.GET("/designers/pending", h.PendingDesigners)
}

func (h *AdminUserHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.moderationService.Dashboard(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

func (h *AdminUserHandler) ListUsers(c *gin.Context) {
	var query dto.UserListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	page, err := h.userService.ListUsers(c.Request.Context(), h.GetDB(c), query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	RespondPage(c, page)
}

func (h *AdminUserHandler) PendingDesigners(c *gin.Context) {
	var query dto.PageQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	page, err := h.moderationService.PendingDesigners(c.Request.Context(), h.GetDB(c), query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	RespondPage(c, page)
}

func (h *AdminUserHandler) ApproveDesigner(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	user, err := h.moderationService.ApproveDesigner(c.Request.Context(), h.GetDB(c), actor, c.Param("userId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *AdminUserHandler) DeleteUser(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	if err := h.moderationService.DeleteUser(c.Request.Context(), h.GetDB(c), actor, c.Param("userId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
