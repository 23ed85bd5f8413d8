package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	OIDCProvider      string // Required with auth: issuer URL for OIDC discovery
	OIDCClientID      string // Required with auth: relying-party client id
	OIDCClientSecret  string // Required with auth: relying-party client secret
	RedirectURL       string // Required with auth: absolute URL of the OIDC callback
	PLSURL            string // Required with auth: base URL of the pls permission service
	AppSecret         string // Required with auth: HMAC secret for session cookies
	AppAuth           bool   // Optional: disable for a fixed development session (default: true)
	APIMode           bool   // Optional: deny unauthenticated requests with 401 instead of a login redirect (default: false)
	RequireAccessHash bool   // Optional: reject ID tokens without an at_hash claim (default: false)

	RedisURL             string        // Optional: redis URL for login state (default: in-memory store)
	LoginStateTTL        time.Duration // Optional: lifetime of a pending login (default: 10m)
	SessionTTL           time.Duration // Optional: sliding session lifetime (default: 2h)
	DatabaseFile         string        // Optional: path to SQLite database file (default: ./zaiko.db)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 5m)
}

func LoadConfig() Config {
	return Config{
		OIDCProvider:      os.Getenv("OIDC_PROVIDER"),
		OIDCClientID:      os.Getenv("OIDC_ID"),
		OIDCClientSecret:  os.Getenv("OIDC_SECRET"),
		RedirectURL:       os.Getenv("REDIRECT_URL"),
		PLSURL:            os.Getenv("PLS_URL"),
		AppSecret:         os.Getenv("APP_SECRET"),
		AppAuth:           getEnvBoolOrDefault("APP_AUTH", true),
		APIMode:           getEnvBoolOrDefault("API_MODE", false),
		RequireAccessHash: getEnvBoolOrDefault("OIDC_REQUIRE_AT_HASH", false),

		RedisURL:             os.Getenv("REDIS_URL"),
		LoginStateTTL:        getEnvDurationOrDefault("LOGIN_STATE_TTL", 10*time.Minute),
		SessionTTL:           getEnvDurationOrDefault("SESSION_TTL", 2*time.Hour),
		DatabaseFile:         getEnvOrDefault("DATABASE_FILE", "zaiko.db"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 5*time.Minute),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
