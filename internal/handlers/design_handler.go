package handlers

import (
	"net/http"

	"mehndi_backend/internal/auth"
	"mehndi_backend/internal/middleware"
	"mehndi_backend/internal/models"
	"mehndi_backend/internal/services"
	"mehndi_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// imageField - имя multipart-поля с файлом дизайна
const imageField = "image"

type DesignHandler struct {
	*BaseHandler
	catalogService    services.CatalogService
	moderationService services.ModerationService
}

func NewDesignHandler(base *BaseHandler, catalogService services.CatalogService, moderationService services.ModerationService) *DesignHandler {
	return &DesignHandler{
		BaseHandler:       base,
		catalogService:    catalogService,
		moderationService: moderationService,
	}
}

func (h *DesignHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/categories", h.ListCategories)

	// Public routes: токен опционален, с ним появляются my_reaction / is_favorited
	public := r.Group("/designs")
	public.Use(h.OptionalAuth())
	{
		public.GET("", h.ListDesigns)
		public.GET("/trending", h.Trending)
		public.GET("/:designId", h.GetDesign)
	}

	// Protected routes
	designs := r.Group("/designs")
	designs.Use(h.RequireAuth())
	{
		designs.POST("", middleware.RequirePermission(auth.PermDesignsSubmit), h.CreateDesign)
		designs.PUT("/:designId", middleware.RoleMiddleware(models.UserRoleDesigner), h.UpdateDesign)
		designs.DELETE("/:designId", middleware.RequireRoles(models.UserRoleDesigner, models.UserRoleAdmin), h.DeleteDesign)
		designs.POST("/:designId/react", h.React)
		designs.POST("/:designId/favorite", h.ToggleFavorite)
	}

	favorites := r.Group("/favorites")
	favorites.Use(h.RequireAuth())
	{
		favorites.GET("", h.Favorites)
	}
}

// RegisterAdminRoutes - модерация каталога; группа уже защищена ролью admin
func (h *DesignHandler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.GET("/designs", h.ListDesigns)
	admin.POST("/designs/:designId/approve", h.ApproveDesign)
	admin.POST("/designs/:designId/reject", h.RejectDesign)
	admin.POST("/categories", h.CreateCategory)
	admin.DELETE("/categories/:categoryId", h.DeleteCategory)
}

// --- Categories ---

func (h *DesignHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

// --- Public handlers ---

// ListDesigns godoc
// @Summary      Каталог дизайнов
// @Description  Без роли admin возвращаются только одобренные дизайны (и свои у дизайнера)
// @Tags         designs
// @Produce      json
// @Param        search    query string false "Поиск по названию, описанию и тегам"
// @Param        category  query string false "ID категории"
// @Param        designer  query string false "ID дизайнера"
// @Param        ordering  query string false "-created_at | created_at | -likes_count | -views_count | title"
// @Param        page      query int    false "Страница"
// @Param        page_size query int    false "Размер страницы"
// @Success      200 {object} dto.Paginated[dto.DesignResponse]
// @Router       /designs [get]
func (h *DesignHandler) ListDesigns(c *gin.Context) {
	var query dto.DesignListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	page, err := h.catalogService.List(c.Request.Context(), h.GetDB(c), h.OptionalActor(c), query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	RespondPage(c, page)
}

func (h *DesignHandler) Trending(c *gin.Context) {
	designs, err := h.catalogService.Trending(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, designs)
}

// GetDesign - просмотр аутентифицированным зрителем учитывается в views_count
func (h *DesignHandler) GetDesign(c *gin.Context) {
	design, err := h.catalogService.Get(c.Request.Context(), h.GetDB(c), h.OptionalActor(c), c.Param("designId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, design)
}

// --- Designer handlers ---

func (h *DesignHandler) CreateDesign(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.CreateDesignRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	image, file, err := ReadImage(c, imageField)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	design, err := h.catalogService.Submit(c.Request.Context(), h.GetDB(c), actor, &req, image)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, design)
}

func (h *DesignHandler) UpdateDesign(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateDesignRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	image, file, err := ReadImage(c, imageField)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	design, err := h.catalogService.Update(c.Request.Context(), h.GetDB(c), actor, c.Param("designId"), &req, image)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, design)
}

func (h *DesignHandler) DeleteDesign(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	if err := h.catalogService.Delete(c.Request.Context(), h.GetDB(c), actor, c.Param("designId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// --- Viewer interactions ---

func (h *DesignHandler) React(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.ReactRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	result, err := h.catalogService.React(c.Request.Context(), h.GetDB(c), actor, c.Param("designId"), models.ReactionType(req.ReactionType))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *DesignHandler) ToggleFavorite(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	result, err := h.catalogService.ToggleFavorite(c.Request.Context(), h.GetDB(c), actor, c.Param("designId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *DesignHandler) Favorites(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var query dto.PageQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	page, err := h.catalogService.Favorites(c.Request.Context(), h.GetDB(c), actor, query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	RespondPage(c, page)
}

// --- Admin handlers ---

func (h *DesignHandler) ApproveDesign(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	design, err := h.moderationService.ApproveDesign(c.Request.Context(), h.GetDB(c), actor, c.Param("designId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, design)
}

func (h *DesignHandler) RejectDesign(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.RejectDesignRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	design, err := h.moderationService.RejectDesign(c.Request.Context(), h.GetDB(c), actor, c.Param("designId"), req.Reason)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, design)
}

func (h *DesignHandler) CreateCategory(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.CreateCategoryRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), h.GetDB(c), actor, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

func (h *DesignHandler) DeleteCategory(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	if err := h.catalogService.DeleteCategory(c.Request.Context(), h.GetDB(c), actor, c.Param("categoryId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
