package routes

import (
	"net/http"

	_ "mehndi_backend/docs"
	"mehndi_backend/internal/metrics"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// PublicOptions - служебные маршруты вне /api/v1
type PublicOptions struct {
	DB *gorm.DB
	// MediaDir - каталог локального хранилища; пусто, если файлы лежат в R2
	MediaDir  string
	MediaPath string
	Swagger   bool
}

func SetupPublicRoutes(r *gin.Engine, opts PublicOptions) {
	r.GET("/health", healthHandler(opts.DB))
	r.GET("/metrics", metrics.Handler())

	if opts.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	if opts.MediaDir != "" {
		path := opts.MediaPath
		if path == "" {
			path = "/media"
		}
		r.Static(path, opts.MediaDir)
	}
}

func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{"status": "ok", "database": "ok"}
		code := http.StatusOK

		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(c.Request.Context())
			}
			if err != nil {
				status["status"] = "degraded"
				status["database"] = err.Error()
				code = http.StatusServiceUnavailable
			}
		}

		c.JSON(code, status)
	}
}
