// Package config provides application configuration management using environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Security SecurityConfig
	Avatar   AvatarConfig
	Gateway  GatewayConfig
	Logging  LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPPort string
	Host     string
	Env      string
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// SecurityConfig holds credential-related configuration
type SecurityConfig struct {
	JWTSecret   string
	TokenExpiry time.Duration
	BcryptCost  int
}

// AvatarConfig holds configuration for the identicon generation service
type AvatarConfig struct {
	BaseURL           string
	Style             string
	RequestsPerSecond float64
	Timeout           time.Duration
}

// GatewayConfig holds realtime gateway configuration
type GatewayConfig struct {
	Enabled        bool
	SendBufferSize int
	MaxMessageSize int64
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables
// It optionally loads from a .env file if it exists
func Load() (*Config, error) {
	// Try to load .env file (optional, ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.Server = ServerConfig{
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		Host:     getEnv("SERVER_HOST", "localhost"),
		Env:      getEnv("ENVIRONMENT", "development"),
	}

	maxOpenConns, _ := strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "25"))
	maxIdleConns, _ := strconv.Atoi(getEnv("DB_MAX_IDLE_CONNS", "5"))

	cfg.Database = DatabaseConfig{
		Host:         getEnv("DB_HOST", "localhost"),
		Port:         getEnv("DB_PORT", "5432"),
		User:         getEnv("DB_USER", "kyvex"),
		Password:     getEnv("DB_PASSWORD", ""),
		Name:         getEnv("DB_NAME", "kyvex_db"),
		SSLMode:      getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns: maxOpenConns,
		MaxIdleConns: maxIdleConns,
	}

	tokenExpiryHours, _ := strconv.Atoi(getEnv("TOKEN_EXPIRY_HOURS", "168"))
	bcryptCost, _ := strconv.Atoi(getEnv("BCRYPT_COST", "10"))

	cfg.Security = SecurityConfig{
		JWTSecret:   getEnv("JWT_SECRET", ""),
		TokenExpiry: time.Duration(tokenExpiryHours) * time.Hour,
		BcryptCost:  bcryptCost,
	}

	avatarRPS, _ := strconv.ParseFloat(getEnv("AVATAR_REQUESTS_PER_SECOND", "5"), 64)
	avatarTimeoutSeconds, _ := strconv.Atoi(getEnv("AVATAR_TIMEOUT_SECONDS", "10"))

	cfg.Avatar = AvatarConfig{
		BaseURL:           getEnv("AVATAR_API_URL", "https://api.dicebear.com"),
		Style:             getEnv("AVATAR_STYLE", "bottts-neutral"),
		RequestsPerSecond: avatarRPS,
		Timeout:           time.Duration(avatarTimeoutSeconds) * time.Second,
	}

	sendBufferSize, _ := strconv.Atoi(getEnv("GATEWAY_SEND_BUFFER", "256"))
	maxMessageSize, _ := strconv.ParseInt(getEnv("GATEWAY_MAX_MESSAGE_SIZE", "4096"), 10, 64)

	cfg.Gateway = GatewayConfig{
		Enabled:        getEnv("GATEWAY_ENABLED", "true") == "true",
		SendBufferSize: sendBufferSize,
		MaxMessageSize: maxMessageSize,
	}

	cfg.Logging = LoggingConfig{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}

	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if c.Security.TokenExpiry <= 0 {
		return fmt.Errorf("TOKEN_EXPIRY_HOURS must be positive")
	}
	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}

	if c.Avatar.BaseURL == "" {
		return fmt.Errorf("AVATAR_API_URL is required")
	}
	if c.Avatar.RequestsPerSecond <= 0 {
		return fmt.Errorf("AVATAR_REQUESTS_PER_SECOND must be positive")
	}

	if c.Gateway.SendBufferSize <= 0 {
		return fmt.Errorf("GATEWAY_SEND_BUFFER must be positive")
	}
	if c.Gateway.MaxMessageSize <= 0 {
		return fmt.Errorf("GATEWAY_MAX_MESSAGE_SIZE must be positive")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error")
	}
	validLogFormats := map[string]bool{"json": true, "console": true}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}

	return nil
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// getEnv retrieves an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
