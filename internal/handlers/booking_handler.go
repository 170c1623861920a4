package handlers

import (
	"fmt"
	"net/http"

	"mehndi_backend/internal/auth"
	"mehndi_backend/internal/middleware"
	"mehndi_backend/internal/services"
	"mehndi_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type BookingHandler struct {
	*BaseHandler
	bookingService services.BookingService
	exportService  services.ExportService
}

func NewBookingHandler(base *BaseHandler, bookingService services.BookingService, exportService services.ExportService) *BookingHandler {
	return &BookingHandler{
		BaseHandler:    base,
		bookingService: bookingService,
		exportService:  exportService,
	}
}

func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/bookings")
	bookings.Use(h.RequireAuth())
	{
		bookings.GET("", h.ListBookings)
		bookings.GET("/:bookingId", h.GetBooking)
		bookings.POST("", middleware.RequirePermission(auth.PermBookingsCreate), h.CreateBooking)
		bookings.PATCH("/:bookingId/status", h.UpdateStatus)
		bookings.POST("/:bookingId/cancel", h.CancelBooking)
	}
}

func (h *BookingHandler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.GET("/bookings", h.ListBookings)
	admin.GET("/bookings/export", h.ExportBookings)
	admin.PATCH("/bookings/:bookingId/status", h.UpdateStatus)
}

// CreateBooking godoc
// @Summary      Запрос на бронирование дизайнера
// @Description  Пересечение с живым бронированием дизайнера дает 409 с conflicting_booking_id
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateBookingRequest true "Параметры бронирования"
// @Success      201 {object} dto.BookingResponse
// @Failure      400 {object} apperrors.ErrorResponse
// @Failure      409 {object} apperrors.ErrorResponse
// @Router       /bookings [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.CreateBookingRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	booking, err := h.bookingService.Create(c.Request.Context(), h.GetDB(c), actor, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// ListBookings - покупатель видит свои, дизайнер входящие, админ все
func (h *BookingHandler) ListBookings(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var query dto.BookingListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	page, err := h.bookingService.List(c.Request.Context(), h.GetDB(c), actor, query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	RespondPage(c, page)
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.Get(c.Request.Context(), h.GetDB(c), actor, c.Param("bookingId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateBookingStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	booking, err := h.bookingService.UpdateStatus(c.Request.Context(), h.GetDB(c), actor, c.Param("bookingId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) CancelBooking(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.CancelBookingRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	booking, err := h.bookingService.Cancel(c.Request.Context(), h.GetDB(c), actor, c.Param("bookingId"), req.Reason)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ExportBookings отдает xlsx-выгрузку бронирований за период
func (h *BookingHandler) ExportBookings(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var query dto.BookingExportQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	data, err := h.exportService.ExportBookings(c.Request.Context(), h.GetDB(c), actor, query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	filename := "bookings.xlsx"
	if query.DateFrom != "" || query.DateTo != "" {
		filename = fmt.Sprintf("bookings_%s_%s.xlsx", query.DateFrom, query.DateTo)
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
