package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host" env:"SERVER_HOST"`
		Port int    `yaml:"port" env:"SERVER_PORT"`
		Env  string `yaml:"env" env:"SERVER_ENV"`
	} `yaml:"server"`

	Database struct {
		Driver string `yaml:"driver" env:"DATABASE_DRIVER"` // postgres, mysql, sqlite
		DSN    string `yaml:"url" env:"DATABASE_URL"`
	} `yaml:"database"`

	Redis struct {
		Enabled  bool   `yaml:"enabled" env:"REDIS_ENABLED"`
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB"`
	} `yaml:"redis"`

	JWT struct {
		Secret           string `yaml:"secret" env:"JWT_SECRET"`
		AccessTTLMinutes int    `yaml:"access_ttl_minutes" env:"JWT_ACCESS_TTL_MINUTES"`
		RefreshTTLHours  int    `yaml:"refresh_ttl_hours" env:"JWT_REFRESH_TTL_HOURS"`
	} `yaml:"jwt"`

	Email struct {
		Enabled      bool   `yaml:"enabled" env:"EMAIL_ENABLED"`
		SMTPHost     string `yaml:"smtp_host" env:"SMTP_HOST"`
		SMTPPort     int    `yaml:"smtp_port" env:"SMTP_PORT"`
		SMTPUsername string `yaml:"smtp_user" env:"SMTP_USER"`
		SMTPPassword string `yaml:"smtp_password" env:"SMTP_PASSWORD"`
		FromEmail    string `yaml:"from_email" env:"EMAIL_FROM"`
		FromName     string `yaml:"from_name" env:"EMAIL_FROM_NAME"`
	} `yaml:"email"`

	Storage struct {
		Type      string `yaml:"type" env:"STORAGE_TYPE"`           // local, cloudflare_r2
		BasePath  string `yaml:"base_path" env:"STORAGE_BASE_PATH"` // для local
		BaseURL   string `yaml:"base_url" env:"STORAGE_BASE_URL"`   // публичный URL
		Bucket    string `yaml:"bucket" env:"STORAGE_BUCKET"`
		AccessKey string `yaml:"access_key" env:"STORAGE_ACCESS_KEY"`
		SecretKey string `yaml:"secret_key" env:"STORAGE_SECRET_KEY"`
		Endpoint  string `yaml:"endpoint" env:"STORAGE_ENDPOINT"`
	} `yaml:"storage"`

	Upload struct {
		MaxSize      int64    `yaml:"max_size" env:"UPLOAD_MAX_SIZE"`
		AllowedTypes []string `yaml:"allowed_types" env:"UPLOAD_ALLOWED_TYPES" envSeparator:","`
	} `yaml:"upload"`

	Booking struct {
		ViewSessionMinutes    int  `yaml:"view_session_minutes" env:"VIEW_SESSION_MINUTES"`
		ReminderLeadHours     int  `yaml:"reminder_lead_hours" env:"REMINDER_LEAD_HOURS"`
		WorkerIntervalSeconds int  `yaml:"worker_interval_seconds" env:"WORKER_INTERVAL_SECONDS"`
		ReviewRequiresBooking bool `yaml:"review_requires_booking" env:"REVIEW_REQUIRES_BOOKING"`
	} `yaml:"booking"`

	FirstAdmin struct {
		Email    string `yaml:"email" env:"FIRST_ADMIN_EMAIL"`
		Password string `yaml:"password" env:"FIRST_ADMIN_PASSWORD"`
	} `yaml:"first_admin"`
}

var AppConfig *Config

// LoadConfig: .env -> config.yaml -> переменные окружения -> значения по умолчанию
func LoadConfig() (*Config, error) {
	// .env не обязателен
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	if err := loadFile(configPath, &cfg); err != nil {
		return nil, err
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse env: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	AppConfig = &cfg
	return AppConfig, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file at %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file at %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.Env == "" {
		c.Server.Env = "development"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.JWT.AccessTTLMinutes == 0 {
		c.JWT.AccessTTLMinutes = 60
	}
	if c.JWT.RefreshTTLHours == 0 {
		c.JWT.RefreshTTLHours = 24 * 7
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
	if c.Email.FromName == "" {
		c.Email.FromName = "Mehndi Marketplace"
	}
	if c.Storage.Type == "" {
		c.Storage.Type = "local"
	}
	if c.Storage.BasePath == "" {
		c.Storage.BasePath = "./uploads"
	}
	if c.Storage.BaseURL == "" {
		c.Storage.BaseURL = "/media"
	}
	if c.Upload.MaxSize == 0 {
		c.Upload.MaxSize = 10 * 1024 * 1024 // 10MB
	}
	if len(c.Upload.AllowedTypes) == 0 {
		c.Upload.AllowedTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}
	}
	if c.Booking.ViewSessionMinutes == 0 {
		c.Booking.ViewSessionMinutes = 30
	}
	if c.Booking.ReminderLeadHours == 0 {
		c.Booking.ReminderLeadHours = 24
	}
	if c.Booking.WorkerIntervalSeconds == 0 {
		c.Booking.WorkerIntervalSeconds = 300
	}
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("database url is required (DATABASE_URL or database.url)")
	}
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt secret is required (JWT_SECRET or jwt.secret)")
	}
	return nil
}

// ViewSession - окно дедупликации просмотров
func (c *Config) ViewSession() time.Duration {
	return time.Duration(c.Booking.ViewSessionMinutes) * time.Minute
}

// TestConfig - конфигурация для тестов (sqlite, без Redis и email)
func TestConfig() *Config {
	var cfg Config
	cfg.Server.Env = "test"
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = ":memory:"
	cfg.JWT.Secret = "test-secret"
	cfg.applyDefaults()
	cfg.Storage.BasePath = os.TempDir()
	return &cfg
}
