package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Session  SessionConfig
	Quotes   QuoteConfig
	AI       AIConfig
	LogLevel string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// SessionConfig holds session token configuration. Key is a base64url
// fernet key; generate one with fernet.GenerateKey if unset in production.
type SessionConfig struct {
	Key string
	TTL time.Duration
}

// QuoteConfig bounds quote provider lookups and the cache refresh job.
type QuoteConfig struct {
	Timeout     time.Duration
	CacheTTL    time.Duration
	RefreshSpec string // cron spec for the background quote refresh
}

// AIConfig holds the optional Gemini settings. An empty APIKey disables
// the AI endpoints.
type AIConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/stocktrack.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost"), ","),
		},
		Session: SessionConfig{
			Key: getEnv("SESSION_KEY", ""),
			TTL: getEnvDuration("SESSION_TTL_HOURS", 24) * time.Hour,
		},
		Quotes: QuoteConfig{
			Timeout:     getEnvDuration("QUOTE_TIMEOUT_SECONDS", 3) * time.Second,
			CacheTTL:    getEnvDuration("QUOTE_CACHE_TTL_SECONDS", 60) * time.Second,
			RefreshSpec: getEnv("QUOTE_REFRESH_SPEC", "@every 5m"),
		},
		AI: AIConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("AI_MODEL", "gemini-2.0-flash"),
			Timeout: getEnvDuration("AI_TIMEOUT_SECONDS", 30) * time.Second,
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvDuration reads an integer environment variable as a time.Duration
// unit count, falling back to the default on absence or parse failure.
func getEnvDuration(key string, defaultValue int64) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return time.Duration(defaultValue)
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Duration(defaultValue)
	}
	return time.Duration(n)
}
