package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	SMTP     SMTPConfig
	Storage  StorageConfig
	Jobs     JobsConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	Version        string
	LogLevel       string
	AllowedOrigins []string
	// Requests per second allowed per client IP on trigger routes.
	TriggerRateLimit float64
	TriggerBurst     int
}

// SMTPConfig holds outgoing mail configuration
type SMTPConfig struct {
	Host          string
	Port          int
	Username      string
	Password      string
	From          string
	FromName      string
	RatePerMinute int
}

// StorageConfig selects where rendered reports are kept
type StorageConfig struct {
	Type     string // local | s3
	BasePath string
	BaseURL  string

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string
}

// JobsConfig holds timer job and aggregation settings
type JobsConfig struct {
	CronEnabled        bool
	AddendumStaleAfter time.Duration
	JobTimeout         time.Duration
	BatchChunkSize     int
	ConflictRetries    int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	dbMaxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "fieldforce"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(dbMaxConns),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}
	triggerRate, err := strconv.ParseFloat(getEnv("TRIGGER_RATE_LIMIT", "50"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TRIGGER_RATE_LIMIT: %w", err)
	}
	triggerBurst, err := strconv.Atoi(getEnv("TRIGGER_BURST", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid TRIGGER_BURST: %w", err)
	}

	config.App = AppConfig{
		Port:             appPort,
		Env:              getEnv("APP_ENV", "development"),
		Version:          getEnv("APP_VERSION", "dev"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		AllowedOrigins:   getEnvSlice("ALLOWED_ORIGINS"),
		TriggerRateLimit: triggerRate,
		TriggerBurst:     triggerBurst,
	}

	// JWT configuration
	accessExpiration, err := time.ParseDuration(getEnv("JWT_ACCESS_EXPIRATION", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_EXPIRATION: %w", err)
	}
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: accessExpiration,
	}

	// SMTP configuration
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	smtpRate, err := strconv.Atoi(getEnv("SMTP_RATE_PER_MINUTE", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_RATE_PER_MINUTE: %w", err)
	}

	config.SMTP = SMTPConfig{
		Host:          getEnv("SMTP_HOST", ""),
		Port:          smtpPort,
		Username:      getEnv("SMTP_USERNAME", ""),
		Password:      getEnv("SMTP_PASSWORD", ""),
		From:          getEnv("SMTP_FROM", "noreply@fieldforce.local"),
		FromName:      getEnv("SMTP_FROM_NAME", "Fieldforce Payroll"),
		RatePerMinute: smtpRate,
	}

	// Storage configuration
	config.Storage = StorageConfig{
		Type:        getEnv("STORAGE_TYPE", "local"),
		BasePath:    getEnv("STORAGE_BASE_PATH", "./reports"),
		BaseURL:     getEnv("STORAGE_BASE_URL", fmt.Sprintf("http://localhost:%d/reports", appPort)),
		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		S3PublicURL: getEnv("S3_PUBLIC_URL", ""),
	}

	// Jobs configuration
	staleAfter, err := time.ParseDuration(getEnv("ADDENDUM_STALE_AFTER", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid ADDENDUM_STALE_AFTER: %w", err)
	}
	jobTimeout, err := time.ParseDuration(getEnv("JOB_TIMEOUT", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid JOB_TIMEOUT: %w", err)
	}
	chunkSize, err := strconv.Atoi(getEnv("BATCH_CHUNK_SIZE", "450"))
	if err != nil {
		return nil, fmt.Errorf("invalid BATCH_CHUNK_SIZE: %w", err)
	}
	retries, err := strconv.Atoi(getEnv("CONFLICT_RETRIES", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid CONFLICT_RETRIES: %w", err)
	}
	cronEnabled, err := strconv.ParseBool(getEnv("CRON_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid CRON_ENABLED: %w", err)
	}

	config.Jobs = JobsConfig{
		CronEnabled:        cronEnabled,
		AddendumStaleAfter: staleAfter,
		JobTimeout:         jobTimeout,
		BatchChunkSize:     chunkSize,
		ConflictRetries:    retries,
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
	if c.Jobs.BatchChunkSize < 1 || c.Jobs.BatchChunkSize > 500 {
		return fmt.Errorf("BATCH_CHUNK_SIZE must be between 1 and 500")
	}
	if c.Jobs.ConflictRetries < 0 {
		return fmt.Errorf("CONFLICT_RETRIES must not be negative")
	}
	switch c.Storage.Type {
	case "local":
	case "s3":
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when STORAGE_TYPE=s3")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_TYPE %q", c.Storage.Type)
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

// SlogLevel maps LOG_LEVEL to a slog level, info when unknown.
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

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
