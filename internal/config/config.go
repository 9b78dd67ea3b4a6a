package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session store backends.
const (
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string

	// BackendURL is the base URL of the remote institute REST API, without a trailing slash.
	BackendURL     string
	BackendTimeout time.Duration

	SessionStore string
	RedisURL     string
	SessionTTL   time.Duration
	CookieSecure bool

	// DatabaseURL enables the Postgres audit trail. Empty keeps audit events in the log only.
	DatabaseURL string
	MaxDBConns  int32

	AttendanceConcurrency int
	PortalLoginRate       int
	MaxUploadBytes        int64

	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:            getEnv("SERVER_PORT", "8080"),
		GinMode:               getEnv("GIN_MODE", "debug"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "pretty"),
		BackendURL:            strings.TrimRight(getEnv("BACKEND_URL", "https://institutemanagement3.onrender.com"), "/"),
		BackendTimeout:        time.Duration(getEnvInt("BACKEND_TIMEOUT_SECONDS", 15)) * time.Second,
		SessionStore:          getEnv("SESSION_STORE", SessionStoreRedis),
		RedisURL:              getEnv("REDIS_URL", "redis://localhost:6379/0"),
		SessionTTL:            time.Duration(getEnvInt("SESSION_TTL_HOURS", 12)) * time.Hour,
		CookieSecure:          getEnvBool("COOKIE_SECURE", false),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		MaxDBConns:            int32(getEnvInt("MAX_DB_CONNS", 4)),
		AttendanceConcurrency: getEnvInt("ATTENDANCE_CONCURRENCY", 4),
		PortalLoginRate:       getEnvInt("PORTAL_LOGIN_RATE", 10),
		MaxUploadBytes:        int64(getEnvInt("MAX_UPLOAD_SIZE_MB", 10)) * 1024 * 1024,
		AllowedOrigins:        parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
}

// AuditEnabled reports whether audit events are persisted to Postgres.
func (c *Config) AuditEnabled() bool {
	return c.DatabaseURL != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
