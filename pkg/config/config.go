package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Storage modes.
const (
	StorageModePostgres = "postgres"
	StorageModeMemory   = "memory"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// HTTP server
	HTTPRequestTimeout time.Duration
	HTTPWriteTimeout   time.Duration

	// Auth
	JWTSecret string

	// Gemini
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	GeminiTimeout time.Duration

	// Insights cache
	InsightsTTL           time.Duration
	InsightsPurgeInterval time.Duration // 0 disables the purge loop

	// Stock metadata (RapidAPI Yahoo Finance)
	MetadataBaseURL  string
	RapidAPIKey      string
	RapidAPIHost     string
	MetadataTimeout  time.Duration
	MetadataCacheTTL time.Duration

	// Portfolio
	SummaryConcurrency int

	// Storage
	StorageMode    string // "postgres" or "memory"
	PostgresHost   string
	PostgresPort   string
	PostgresUser   string
	PostgresPass   string
	PostgresDB     string
	PostgresSSL    string
	AutoMigrate    bool
	DBMaxOpenConns int
	DBMaxIdleConns int
	DBConnLifetime time.Duration
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "5050"),

		// The AI call alone can take most of a minute.
		HTTPRequestTimeout: getDurationOrDefault("HTTP_REQUEST_TIMEOUT", 90*time.Second),
		HTTPWriteTimeout:   getDurationOrDefault("HTTP_WRITE_TIMEOUT", 120*time.Second),

		JWTSecret: os.Getenv("JWT_SECRET"),

		// Gemini defaults
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiBaseURL: os.Getenv("GEMINI_BASE_URL"),
		GeminiTimeout: getDurationOrDefault("GEMINI_TIMEOUT", 60*time.Second),

		InsightsTTL:           getDurationOrDefault("INSIGHTS_CACHE_TTL", 24*time.Hour),
		InsightsPurgeInterval: getDurationOrDefault("INSIGHTS_PURGE_INTERVAL", time.Hour),

		// Metadata defaults
		MetadataBaseURL:  getEnvOrDefault("METADATA_BASE_URL", "https://yahoo-finance15.p.rapidapi.com/api/v1/markets/stock"),
		RapidAPIKey:      os.Getenv("RAPIDAPI_KEY"),
		RapidAPIHost:     getEnvOrDefault("RAPIDAPI_HOST", "yahoo-finance15.p.rapidapi.com"),
		MetadataTimeout:  getDurationOrDefault("METADATA_TIMEOUT", 10*time.Second),
		MetadataCacheTTL: getDurationOrDefault("METADATA_CACHE_TTL", 24*time.Hour),

		SummaryConcurrency: getIntOrDefault("SUMMARY_CONCURRENCY", 4),

		// Storage defaults
		StorageMode:    getEnvOrDefault("STORAGE_MODE", StorageModeMemory),
		PostgresHost:   getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort:   getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser:   getEnvOrDefault("POSTGRES_USER", "finsight"),
		PostgresPass:   getEnvOrDefault("POSTGRES_PASSWORD", "finsight"),
		PostgresDB:     getEnvOrDefault("POSTGRES_DB", "finsight"),
		PostgresSSL:    getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
		AutoMigrate:    getBoolOrDefault("POSTGRES_AUTO_MIGRATE", true),
		DBMaxOpenConns: getIntOrDefault("POSTGRES_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getIntOrDefault("POSTGRES_MAX_IDLE_CONNS", 5),
		DBConnLifetime: getDurationOrDefault("POSTGRES_CONN_MAX_LIFETIME", 5*time.Minute),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if c.GeminiModel == "" {
		return fmt.Errorf("GEMINI_MODEL cannot be empty")
	}

	if c.GeminiTimeout <= 0 {
		return fmt.Errorf("GEMINI_TIMEOUT must be positive, got %v", c.GeminiTimeout)
	}

	if c.InsightsTTL <= 0 {
		return fmt.Errorf("INSIGHTS_CACHE_TTL must be positive, got %v", c.InsightsTTL)
	}

	if c.InsightsPurgeInterval < 0 {
		return fmt.Errorf("INSIGHTS_PURGE_INTERVAL cannot be negative, got %v", c.InsightsPurgeInterval)
	}

	if c.SummaryConcurrency < 1 {
		return fmt.Errorf("SUMMARY_CONCURRENCY must be at least 1, got %d", c.SummaryConcurrency)
	}

	if c.StorageMode != StorageModePostgres && c.StorageMode != StorageModeMemory {
		return fmt.Errorf("STORAGE_MODE must be 'postgres' or 'memory', got %q", c.StorageMode)
	}

	return nil
}

// PostgresDSN returns the lib/pq connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPass, c.PostgresDB, c.PostgresSSL,
	)
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}
