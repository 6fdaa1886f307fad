package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port            string        `json:"port"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	HTTPTimeout     time.Duration `json:"http_timeout"`

	// Durable store. Empty means degraded mode: every store operation
	// becomes a logged no-op so the service still runs locally.
	DatabaseURL string `json:"database_url"`

	// Redis (recent-posts cache). Empty disables caching.
	RedisURL       string        `json:"redis_url"`
	RecentCacheTTL time.Duration `json:"recent_cache_ttl"`

	// Upstream content generators, production first.
	GeneratorURL     string        `json:"generator_url"`
	GeneratorTestURL string        `json:"generator_test_url"`
	GeneratorTimeout time.Duration `json:"generator_timeout"`
	CycleDelay       time.Duration `json:"cycle_delay"`

	// Schedule config reconciliation.
	ConfigSyncInterval time.Duration `json:"config_sync_interval"`

	// CloudFlare R2 (S3 API) for post images.
	R2Endpoint  string `json:"r2_endpoint"`
	R2AccessKey string `json:"r2_access_key"`
	R2SecretKey string `json:"r2_secret_key"`
	R2Bucket    string `json:"r2_bucket"`
	R2PublicURL string `json:"r2_public_url"`

	// Canonical base for og:url defaults.
	SiteBaseURL string `json:"site_base_url"`

	// Logging
	LogLevel string `json:"log_level"`

	// Security
	AdminAPIKey string `json:"admin_api_key"`
}

// Load loads configuration from environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	return &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisURL:       getEnv("REDIS_URL", ""),
		RecentCacheTTL: getEnvAsDuration("RECENT_CACHE_TTL", 5*time.Minute),

		GeneratorURL:     getEnv("GENERATOR_URL", "https://n8n.cafecanastra.com/webhook/gerar-post"),
		GeneratorTestURL: getEnv("GENERATOR_TEST_URL", "https://n8n-test.cafecanastra.com/webhook/gerar-post"),
		GeneratorTimeout: getEnvAsDuration("GENERATOR_TIMEOUT", 2*time.Minute),
		CycleDelay:       getEnvAsDuration("CYCLE_DELAY", 30*time.Second),

		ConfigSyncInterval: getEnvAsDuration("CONFIG_SYNC_INTERVAL", time.Minute),

		R2Endpoint:  getEnv("R2_ENDPOINT", ""),
		R2AccessKey: getEnv("R2_ACCESS_KEY", ""),
		R2SecretKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:    getEnv("R2_BUCKET", "canastra-blog"),
		R2PublicURL: getEnv("R2_PUBLIC_URL", ""),

		SiteBaseURL: getEnv("SITE_BASE_URL", "https://www.cafecanastra.com"),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
	}
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}
