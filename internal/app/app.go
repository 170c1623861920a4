package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"mehndi_backend/database"
	"mehndi_backend/internal/auth"
	"mehndi_backend/internal/cache"
	"mehndi_backend/internal/config"
	"mehndi_backend/internal/email"
	"mehndi_backend/internal/handlers"
	"mehndi_backend/internal/logger"
	"mehndi_backend/internal/middleware"
	"mehndi_backend/internal/models"
	"mehndi_backend/internal/routes"
	"mehndi_backend/internal/services"
	"mehndi_backend/internal/storage"
	"mehndi_backend/internal/validator"
	"mehndi_backend/internal/workers"
	"mehndi_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// Application - собранное приложение: роутер и сервисы поверх одной БД
type Application struct {
	Config   *config.Config
	DB       *gorm.DB
	Router   *gin.Engine
	Services *services.ServiceContainer
	Tokens   *auth.TokenManager

	redis *redis.Client
}

func Run() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	gormDB, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	defer sqlDB.Close()
	if err = sqlDB.PingContext(ctx); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("Migration failed", "error", err)
	}

	if err := seedFirstAdmin(gormDB, cfg); err != nil {
		// Без админа платформа неуправляема - не запускаем сервер
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	application, err := Build(ctx, cfg, gormDB)
	if err != nil {
		logger.Fatal("Failed to build application", "error", err)
	}
	defer application.Close()

	application.StartWorkers(ctx)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              address,
		Handler:           application.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "address", address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	logger.Info("Server stopped")
}

// Build создает внешние зависимости по конфигу (хранилище, Redis, почта, JWT) и собирает приложение
func Build(ctx context.Context, cfg *config.Config, gormDB *gorm.DB) (*Application, error) {
	storageInstance, err := storage.NewStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	deps := services.Dependencies{
		Config:  cfg,
		Storage: storageInstance,
		Tokens:  auth.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTTLMinutes)*time.Minute),
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		deps.Views = cache.NewRedisViewTracker(redisClient, cfg.ViewSession())
		logger.Info("View tracking uses Redis", "addr", cfg.Redis.Addr)
	}

	if cfg.Email.Enabled {
		provider, err := email.NewGomailProvider(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize email provider: %w", err)
		}
		deps.Email = provider
	} else {
		logger.Warn("Email delivery disabled, using mock provider")
		deps.Email = email.NewMockProvider()
	}

	application := NewApplication(cfg, gormDB, deps)
	application.redis = redisClient
	return application, nil
}

// NewApplication собирает сервисы, хэндлеры и роутер из готовых зависимостей
func NewApplication(cfg *config.Config, gormDB *gorm.DB, deps services.Dependencies) *Application {
	apperrors.DefaultHandler.Debug = !isProduction(cfg)
	if isProduction(cfg) {
		gin.SetMode(gin.ReleaseMode)
	}

	// 1. Инициализируем сервисы
	serviceContainer := services.NewServiceContainer(deps)

	// 2. Инициализируем хэндлеры
	appHandlers := handlers.NewAppHandlers(serviceContainer, validator.New(), deps.Tokens)

	// 3. Инициализируем Gin
	ginRouter := initializeGinRouter(gormDB, cfg)

	// 4. Делегируем регистрацию маршрутов пакету 'routes'
	routes.RegisterRoutes(ginRouter, appHandlers, publicOptions(cfg, gormDB))

	return &Application{
		Config:   cfg,
		DB:       gormDB,
		Router:   ginRouter,
		Services: serviceContainer,
		Tokens:   deps.Tokens,
	}
}

// StartWorkers запускает фоновые задачи; они завершаются вместе с ctx
func (a *Application) StartWorkers(ctx context.Context) {
	interval := time.Duration(a.Config.Booking.WorkerIntervalSeconds) * time.Second

	workers.NewBookingWorker(a.DB, a.Services.Bookings, interval).Start(ctx)
	workers.NewMaintenanceWorker(a.DB, a.Services.Notifications, a.Services.Auth, interval).Start(ctx)
	logger.Info("Workers started", "interval", interval)
}

func (a *Application) Close() {
	if a.redis != nil {
		if err := cache.Close(a.redis); err != nil {
			logger.Warn("Failed to close redis", "error", err)
		}
	}
}

func initializeGinRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = cfg.Upload.MaxSize
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DBMiddleware(db))
	return router
}

func publicOptions(cfg *config.Config, db *gorm.DB) routes.PublicOptions {
	opts := routes.PublicOptions{
		DB:      db,
		Swagger: !isProduction(cfg),
	}
	// Локальные файлы раздаем сами, R2 отдает их по своему BaseURL
	if cfg.Storage.Type == "local" && strings.HasPrefix(cfg.Storage.BaseURL, "/") {
		opts.MediaDir = cfg.Storage.BasePath
		opts.MediaPath = cfg.Storage.BaseURL
	}
	return opts
}

func isProduction(cfg *config.Config) bool {
	return cfg.Server.Env == "production"
}

func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	adminEmail := strings.ToLower(strings.TrimSpace(cfg.FirstAdmin.Email))
	adminPassword := cfg.FirstAdmin.Password

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	tx := db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer tx.Rollback()

	var adminUser models.User
	result := tx.Where("email = ?", adminEmail).First(&adminUser)

	if result.Error == nil {
		logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
		return nil
	}

	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", result.Error)
	}

	logger.Warn("No admin user found with specified email. Creating first admin...", "email", adminEmail)

	hashedPassword, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	newAdmin := &models.User{
		Username:     strings.SplitN(adminEmail, "@", 2)[0],
		Email:        adminEmail,
		PasswordHash: hashedPassword,
		Role:         models.UserRoleAdmin,
		FirstName:    "Platform",
		LastName:     "Administrator",
	}

	if err := tx.Create(newAdmin).Error; err != nil {
		return fmt.Errorf("failed to create admin user in database: %w", err)
	}

	logger.Info("Successfully created first admin user", "email", adminEmail)

	return tx.Commit().Error
}
