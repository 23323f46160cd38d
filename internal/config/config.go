package config

import (
	"os"
	"strings"
)

type Config struct {
	PostgresURI    string
	RedisURI       string
	MongoURI       string
	Port           string
	FrontendURL    string
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL
	Environment    string   // ENV: production, development, etc.

	// Google OAuth, used by /google-login to verify the access token.
	GoogleClientID     string
	GoogleClientSecret string
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{getEnv("FRONTEND_URL", "http://localhost:3000")}
	}

	return &Config{
		PostgresURI:        getEnv("POSTGRES_URI", "postgres://localhost:5432/cipherpoint?sslmode=disable"),
		RedisURI:           getEnv("REDIS_URI", "redis://localhost:6379/0"),
		MongoURI:           getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/cipherpoint")),
		Port:               getEnv("PORT", "3001"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:3000"),
		AllowedOrigins:     allowedOrigins,
		Environment:        env,
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
	}
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
