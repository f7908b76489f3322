package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	ServerPort  string
	Environment string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis configuration
	RedisAddress string

	// JWT secret used to verify signed identity claims
	JWTSecret string

	// internal secret used for communication between servers
	InternalSecret string

	// Notification delivery sink (webhook). Empty disables delivery.
	NotificationWebhookURL string

	// Interval for the optional stale-share-link sweep. Zero disables it;
	// expiry stays lazily checked at resolve time either way.
	LinkSweepInterval time.Duration

	FrontendAddress string
}

// Global application configuration
var AppConfig Config

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	// Find .env file
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		// Try to find .env in parent directories
		envPath = filepath.Join("..", ".env")
		if _, err := os.Stat(envPath); os.IsNotExist(err) {
			envPath = filepath.Join("..", "..", ".env")
		}
	}

	// Load .env file if it exists
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			log.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	AppConfig = Config{
		ServerPort:             getEnv("PORT", "8080"),
		Environment:            getEnv("ENV", "development"),
		DBHost:                 getEnv("DB_HOST", "localhost"),
		DBPort:                 getEnv("DB_PORT", "5432"),
		DBUser:                 getEnv("DB_USER", "postgres"),
		DBPassword:             getEnv("DB_PASSWORD", "postgres"),
		DBName:                 getEnv("DB_NAME", "prompt_sharing"),
		RedisAddress:           getEnv("REDIS_ADDRESS", "localhost:6379"),
		JWTSecret:              getEnv("JWT_SECRET", "prompt-share-secret"),
		InternalSecret:         getEnv("INTERNAL_SECRET", "prompt-share-internal-secret"),
		NotificationWebhookURL: getEnv("NOTIFICATION_WEBHOOK_URL", ""),
		LinkSweepInterval:      getDurationMinutes("LINK_SWEEP_MINUTES", 0),
		FrontendAddress:        getEnv("FRONTEND_ADDRESS", "https://production-frontend.com"),
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDurationMinutes(key string, defaultMinutes int) time.Duration {
	raw := getEnv(key, strconv.Itoa(defaultMinutes))
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes < 0 {
		log.Printf("Warning: invalid %s value %q, using %d\n", key, raw, defaultMinutes)
		minutes = defaultMinutes
	}
	return time.Duration(minutes) * time.Minute
}
