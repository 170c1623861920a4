package routes

import (
	"mehndi_backend/internal/handlers"
	"mehndi_backend/internal/middleware"
	"mehndi_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// SetupAdminRoutes - /api/v1/admin: JWT + роль admin на всю группу
func SetupAdminRoutes(api *gin.RouterGroup, appHandlers *handlers.AppHandlers) {
	admin := api.Group("/admin")
	admin.Use(appHandlers.Base.RequireAuth(), middleware.RequireRoles(models.UserRoleAdmin))
	{
		// Users
		appHandlers.AdminUserHandler.RegisterRoutes(admin)

		// Catalog
		appHandlers.DesignHandler.RegisterAdminRoutes(admin)

		// Bookings
		appHandlers.BookingHandler.RegisterAdminRoutes(admin)

		// Reviews
		appHandlers.ReviewHandler.RegisterAdminRoutes(admin)
	}
}
