package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	StaticFilesPath string
	TemplatesPath   string
	Debug           bool

	// Database (sessions, avatars, settings)
	DatabaseType string
	DatabasePath string
	DatabaseURL  string

	DatabaseMaxOpenConns    int
	DatabaseMaxIdleConns    int
	DatabaseConnMaxLifetime time.Duration

	// Session store
	SessionBackend   string
	RedisURL         string
	SessionSecret    string
	SessionRetention time.Duration

	// Backend REST API
	APIBaseURL     string
	APIPublicPaths []string
	APITimeout     time.Duration

	// Alert feed
	AlertFeedURL         string
	AlertRefreshInterval time.Duration

	// OAuth
	GoogleClientID       string
	GoogleClientSecret   string
	FacebookClientID     string
	FacebookClientSecret string
	OAuthRedirectBaseURL string

	// Email (Amazon SES)
	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	AppBaseURL   string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		StaticFilesPath: getEnv("STATIC_PATH", "./static"),
		TemplatesPath:   getEnv("TEMPLATES_PATH", "./internal/templates"),
		Debug:           getEnvBool("DEBUG", false),

		DatabaseType: getEnv("DB_TYPE", "sqlite"),
		DatabasePath: getEnv("DB_PATH", "./readyset.db"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),

		DatabaseMaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
		DatabaseMaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DatabaseConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 0),

		SessionBackend:   getEnv("SESSION_BACKEND", "sql"),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379/0"),
		SessionSecret:    getEnv("SESSION_SECRET", "change-me-in-production"),
		SessionRetention: getEnvPositiveDuration("SESSION_RETENTION", 30*24*time.Hour),

		APIBaseURL:     getEnv("API_BASE_URL", "http://localhost:5000/api"),
		APIPublicPaths: getEnvList("API_PUBLIC_PATHS", []string{"/content"}),
		APITimeout:     getEnvPositiveDuration("API_TIMEOUT", 15*time.Second),

		AlertFeedURL:         getEnv("ALERT_FEED_URL", ""),
		AlertRefreshInterval: getEnvPositiveDuration("ALERT_REFRESH_INTERVAL", 15*time.Minute),

		GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
		FacebookClientID:     getEnv("FACEBOOK_CLIENT_ID", ""),
		FacebookClientSecret: getEnv("FACEBOOK_CLIENT_SECRET", ""),
		OAuthRedirectBaseURL: getEnv("OAUTH_REDIRECT_BASE_URL", ""),

		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "ReadySet"),
		AppBaseURL:   getEnv("APP_BASE_URL", "http://localhost:8080"),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Warning: invalid boolean for %s: %q, using default", key, value)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		log.Printf("Warning: invalid integer for %s: %q, using default", key, value)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: invalid duration for %s: %q, using default", key, value)
		return defaultValue
	}
	return parsed
}

// getEnvPositiveDuration is getEnvDuration for settings where zero or less is meaningless
func getEnvPositiveDuration(key string, defaultValue time.Duration) time.Duration {
	parsed := getEnvDuration(key, defaultValue)
	if parsed <= 0 {
		log.Printf("Warning: %s must be positive, got %v, using default", key, parsed)
		return defaultValue
	}
	return parsed
}

// getEnvList splits a comma separated variable, dropping empty entries
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
