package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	// Database
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	DatabaseURL string

	// Redis render cache
	EnableCache    bool
	RedisURL       string
	RenderCacheTTL time.Duration

	// Server
	Port        string
	Environment string
	LogLevel    string

	// CORS
	CORSOrigins []string

	// Features
	EnableMetrics bool

	// Storefront rate limiting
	RateLimitRequests int
	RateLimitWindow   int
	RateLimitBurst    int

	// Themes
	ThemesDir          string
	DefaultThemePreset string

	// Rendering
	RenderFetchTimeout time.Duration
	ImageHosts         []string

	// Background
	WidgetUpgradeSchedule string
	WorkerCount           int
}

func New() *Config {
	c := &Config{
		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "postgres"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// Redis render cache
		EnableCache:    getEnvAsBool("ENABLE_CACHE", false),
		RedisURL:       getEnv("REDIS_URL", "localhost:6379"),
		RenderCacheTTL: getEnvAsDuration("RENDER_CACHE_TTL", 5*time.Minute),

		// Server
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// CORS
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),

		// Features
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),

		// Storefront rate limiting
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 300),
		RateLimitWindow:   getEnvAsInt("RATE_LIMIT_WINDOW", 60),
		RateLimitBurst:    getEnvAsInt("RATE_LIMIT_BURST", 60),

		// Themes
		ThemesDir:          getEnv("THEMES_DIR", "./themes"),
		DefaultThemePreset: getEnv("DEFAULT_THEME_PRESET", "classic"),

		// Rendering
		RenderFetchTimeout: getEnvAsDuration("RENDER_FETCH_TIMEOUT", 3*time.Second),
		ImageHosts:         splitList(getEnv("IMAGE_HOSTS", "https:")),

		// Background
		WidgetUpgradeSchedule: getEnv("WIDGET_UPGRADE_SCHEDULE", ""),
		WorkerCount:           getEnvAsInt("WORKER_COUNT", 2),
	}

	// DATABASE_URL wins over the discrete settings (Supabase hands out a full URI).
	c.DatabaseURL = getEnv("DATABASE_URL", fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	))

	return c
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var value int
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return valueStr == "true" || valueStr == "1"
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil || value < 0 {
		return defaultValue
	}
	return value
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
