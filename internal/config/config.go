package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds all configuration for the service.
type Config struct {
	Port            string
	Origin          string
	Environment     string
	SecretKey       string
	DBPath          string
	Timezone        string
	DefaultLanguage string
	LocalesDir      string
	LogLevel        string
	TokenTTLHours   int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	tokenTTLHours, err := strconv.Atoi(getEnv("TOKEN_TTL_HOURS", "12"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL_HOURS: %w", err)
	}

	return &Config{
		Port:            getEnv("PORT", "8080"),
		Origin:          getEnv("ORIGIN", "http://localhost:5173"),
		Environment:     getEnv("APP_ENV", "development"),
		SecretKey:       getEnv("SECRET_KEY", "change_me_in_production"),
		DBPath:          getEnv("DB_PATH", filepath.Join("data", "care-emr.db")),
		Timezone:        getEnv("TZ", "Asia/Tokyo"),
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "ja"),
		LocalesDir:      getEnv("LOCALES_DIR", filepath.Join("internal", "i18n", "locales")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		TokenTTLHours:   tokenTTLHours,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
