package handlers

import (
	"net/http"

	"mehndi_backend/internal/auth"
	"mehndi_backend/internal/middleware"
	"mehndi_backend/internal/services"
	"mehndi_backend/internal/services/dto"
	"mehndi_backend/internal/workflow"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	*BaseHandler
	reviewService     services.ReviewService
	moderationService services.ModerationService
}

func NewReviewHandler(base *BaseHandler, reviewService services.ReviewService, moderationService services.ModerationService) *ReviewHandler {
	return &ReviewHandler{
		BaseHandler:       base,
		reviewService:     reviewService,
		moderationService: moderationService,
	}
}

func (h *ReviewHandler) RegisterRoutes(r *gin.RouterGroup) {
	// Public routes
	public := r.Group("/reviews")
	{
		public.GET("", h.ListReviews)
	}

	// Protected routes
	reviews := r.Group("/reviews")
	reviews.Use(h.RequireAuth())
	{
		reviews.POST("", middleware.RequirePermission(auth.PermReviewsCreate), h.CreateReview)
		reviews.POST("/:reviewId/respond", middleware.RequirePermission(auth.PermReviewsRespond), h.RespondReview)
		reviews.POST("/:reviewId/report", middleware.RequirePermission(auth.PermReviewsReport), h.ReportReview)
		reviews.DELETE("/:reviewId", h.DeleteReview)
	}
}

func (h *ReviewHandler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.GET("/reviews", h.ListReviews)
	admin.POST("/reviews/:reviewId/flag", h.moderate(workflow.ReviewFlag))
	admin.POST("/reviews/:reviewId/unflag", h.moderate(workflow.ReviewUnflag))
	admin.POST("/reviews/:reviewId/approve", h.moderate(workflow.ReviewApprove))
	admin.POST("/reviews/:reviewId/reject", h.moderate(workflow.ReviewReject))
	admin.DELETE("/reviews/:reviewId", h.DeleteReview)
}

// --- Public handlers ---

// ListReviews - публично только одобренные; в /admin фильтры flagged/approved
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	var query dto.ReviewListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	page, err := h.reviewService.List(c.Request.Context(), h.GetDB(c), h.OptionalActor(c), query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	RespondPage(c, page)
}

// --- Customer handlers ---

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.CreateReviewRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), h.GetDB(c), actor, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), h.GetDB(c), actor, c.Param("reviewId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// --- Designer handlers ---

func (h *ReviewHandler) RespondReview(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.RespondReviewRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	review, err := h.reviewService.Respond(c.Request.Context(), h.GetDB(c), actor, c.Param("reviewId"), req.Response)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

func (h *ReviewHandler) ReportReview(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.ReportReviewRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	review, err := h.reviewService.Report(c.Request.Context(), h.GetDB(c), actor, c.Param("reviewId"), req.Reason)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// --- Admin handlers ---

// moderate - одна ручка на каждое событие модерации отзыва
func (h *ReviewHandler) moderate(event workflow.ReviewEvent) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := h.GetActor(c)
		if !ok {
			return
		}

		review, err := h.moderationService.ModerateReview(c.Request.Context(), h.GetDB(c), actor, c.Param("reviewId"), event)
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, review)
	}
}
