package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	LogLevel string
	Env      string

	RedisURL      string
	JWTSecret     string
	ProfileAPIURL string
}

// LoadConfig reads configuration from the environment, with a best-effort
// .env load for local development.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		Port:          GetEnv("PORT", "8080"),
		Env:           GetEnv("ENV", "development"),
		LogLevel:      GetEnv("LOG_LEVEL", "info"),
		RedisURL:      GetEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:     GetEnv("JWT_SECRET", "dev-secret"),
		ProfileAPIURL: GetEnv("PROFILE_API_URL", "http://localhost:8090"),
	}, nil
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
