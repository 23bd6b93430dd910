package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the application configuration
type Config struct {
	Environment        string
	ServerPort         int
	LogLevel           string
	StoreBackend       string
	SessionBackend     string
	DatabaseURL        string
	DatabaseHost       string
	DatabasePort       int
	DatabaseUser       string
	DatabasePassword   string
	DatabaseName       string
	DatabaseSSLMode    string
	RedisURL           string
	JWTSecret          string
	CredentialScheme   string
	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := strconv.Atoi(getEnv("DATABASE_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DATABASE_PORT: %w", err)
	}

	storeBackend := getEnv("STORE_BACKEND", "postgres")
	switch storeBackend {
	case "postgres", "memory":
	default:
		return nil, fmt.Errorf("invalid STORE_BACKEND %q: want postgres or memory", storeBackend)
	}

	sessionBackend := getEnv("SESSION_BACKEND", "redis")
	switch sessionBackend {
	case "redis", "memory":
	default:
		return nil, fmt.Errorf("invalid SESSION_BACKEND %q: want redis or memory", sessionBackend)
	}

	return &Config{
		Environment:      getEnv("ENVIRONMENT", "development"),
		ServerPort:       port,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		StoreBackend:     storeBackend,
		SessionBackend:   sessionBackend,
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DatabaseHost:     getEnv("DATABASE_HOST", "localhost"),
		DatabasePort:     dbPort,
		DatabaseUser:     getEnv("DATABASE_USER", "inventario"),
		DatabasePassword: getEnv("DATABASE_PASSWORD", "dev"),
		DatabaseName:     getEnv("DATABASE_NAME", "inventario"),
		DatabaseSSLMode:  getEnv("DATABASE_SSLMODE", "disable"),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		CredentialScheme: getEnv("CREDENTIAL_SCHEME", "sha256"),
		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:3000",
		}),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
