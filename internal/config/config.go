package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/kpi"
	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Storage  StorageConfig
	KPI      KPIConfig
	Sync     SyncConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// StorageConfig holds uploaded data file storage configuration
type StorageConfig struct {
	BasePath string
}

// KPIConfig holds the compliance grading bands
type KPIConfig struct {
	Thresholds kpi.Thresholds
	// ProblemEmployeeLimit caps the clock behavior drill-down; 0 lists everyone.
	ProblemEmployeeLimit int
}

// SyncConfig controls the scheduled import from the data directory
type SyncConfig struct {
	Enabled  bool
	Dir      string
	Interval time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded, using process environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "bstt"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Storage configuration
	config.Storage = StorageConfig{
		BasePath: getEnv("STORAGE_BASE_PATH", "./uploads"),
	}

	// KPI thresholds
	defaults := kpi.DefaultThresholds()
	th := kpi.Thresholds{}
	floats := []struct {
		key string
		dst *float64
		def float64
	}{
		{"KPI_FINGER_GREEN", &th.FingerGreen, defaults.FingerGreen},
		{"KPI_FINGER_YELLOW", &th.FingerYellow, defaults.FingerYellow},
		{"KPI_PROVISIONAL_GREEN", &th.ProvisionalGreen, defaults.ProvisionalGreen},
		{"KPI_PROVISIONAL_YELLOW", &th.ProvisionalYellow, defaults.ProvisionalYellow},
		{"KPI_WRITE_IN_GREEN", &th.WriteInGreen, defaults.WriteInGreen},
		{"KPI_WRITE_IN_YELLOW", &th.WriteInYellow, defaults.WriteInYellow},
		{"KPI_MISSING_CO_GREEN", &th.MissingCOGreen, defaults.MissingCOGreen},
		{"KPI_MISSING_CO_YELLOW", &th.MissingCOYellow, defaults.MissingCOYellow},
	}
	for _, f := range floats {
		if *f.dst, err = getEnvFloat(f.key, f.def); err != nil {
			return nil, err
		}
	}
	if th.EnrollmentThreshold, err = getEnvInt("KPI_ENROLLMENT_THRESHOLD", defaults.EnrollmentThreshold); err != nil {
		return nil, err
	}
	problemLimit, err := getEnvInt("KPI_PROBLEM_EMPLOYEE_LIMIT", 50)
	if err != nil {
		return nil, err
	}
	config.KPI = KPIConfig{Thresholds: th, ProblemEmployeeLimit: problemLimit}

	// Directory sync
	interval, err := time.ParseDuration(getEnv("SYNC_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_INTERVAL: %w", err)
	}
	config.Sync = SyncConfig{
		Enabled:  getEnv("SYNC_ENABLED", "false") == "true",
		Dir:      getEnv("SYNC_DATA_DIR", ""),
		Interval: interval,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if err := c.KPI.Thresholds.Validate(); err != nil {
		return err
	}
	if c.KPI.ProblemEmployeeLimit < 0 {
		return fmt.Errorf("KPI_PROBLEM_EMPLOYEE_LIMIT must not be negative")
	}
	if c.Sync.Enabled {
		if c.Sync.Dir == "" {
			return fmt.Errorf("SYNC_DATA_DIR is required when SYNC_ENABLED is true")
		}
		if c.Sync.Interval < time.Minute {
			return fmt.Errorf("SYNC_INTERVAL must be at least 1m")
		}
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
