// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"studiodesk-service/internal/pkg/jwt"
)

type AppConfig struct {
	// Server
	HTTPAddr           string
	CORSAllowedOrigins []string

	// Stores
	DatabaseURL        string
	DBMaxConns         int32
	RedisAddr          string
	RedisPass          string
	LeadSourceCacheTTL time.Duration

	// JWT
	JWT jwt.Config

	// First owner account, created when the staff table has no owner
	OwnerEmail    string
	OwnerPassword string
	OwnerName     string
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	return AppConfig{
		HTTPAddr:           getEnv("HTTP_ADDR", ":8000"),
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),

		DatabaseURL:        getEnv("DATABASE_URL", ""),
		DBMaxConns:         int32(getEnvInt("DB_MAX_CONNS", 10)),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:          getEnv("REDIS_PASS", ""),
		LeadSourceCacheTTL: getEnvDuration("LEAD_SOURCE_CACHE_TTL", 10*time.Minute),

		JWT: jwt.Config{
			PrivPath: getEnv("JWT_PRIVATE_KEY_PATH", "/app/secrets/jwt_private.pem"),
			PubPath:  getEnv("JWT_PUBLIC_KEY_PATH", "/app/secrets/jwt_public.pem"),
			Issuer:   getEnv("JWT_ISSUER", "studiodesk"),
			Audience: getEnv("JWT_AUDIENCE", "studiodesk-staff"),
			TTL:      getEnvDuration("JWT_TTL", 12*time.Hour),
			KID:      getEnv("JWT_KID", "studiodesk-key"),
		},

		OwnerEmail:    getEnv("OWNER_EMAIL", ""),
		OwnerPassword: getEnv("OWNER_PASSWORD", ""),
		OwnerName:     getEnv("OWNER_NAME", "Studio Owner"),
	}
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}
