package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig
	Redis     RedisConfig
	API       APIConfig
	SMS       SMSConfig
	Shortener ShortenerConfig
	Scheduler SchedulerConfig
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration for the shortener cache
type RedisConfig struct {
	URL string
}

// APIConfig holds API server configuration
type APIConfig struct {
	Port       int
	AppBaseURL string
}

// SMSConfig holds SMS provider configuration
type SMSConfig struct {
	APIURL  string
	APIKey  string
	Timeout time.Duration
}

// ShortenerConfig holds URL shortener configuration
type ShortenerConfig struct {
	ServiceURL string
	APIKey     string
	Timeout    time.Duration
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	SweepInterval time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	apiPort, err := strconv.Atoi(getEnv("API_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_PORT: %w", err)
	}

	smsTimeout, err := time.ParseDuration(getEnv("SMS_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMS_TIMEOUT: %w", err)
	}

	shortenerTimeout, err := time.ParseDuration(getEnv("URL_SHORTENER_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid URL_SHORTENER_TIMEOUT: %w", err)
	}

	sweepInterval, err := time.ParseDuration(getEnv("SCHEDULER_SWEEP_INTERVAL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_SWEEP_INTERVAL: %w", err)
	}

	return &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "campaign_engine"),
			Password: getEnv("DB_PASSWORD", "campaign_engine"),
			DBName:   getEnv("DB_NAME", "campaign_engine"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
		},
		API: APIConfig{
			Port:       apiPort,
			AppBaseURL: getEnv("APP_BASE_URL", "https://sendfy.website/app/sendfy/pix-link"),
		},
		SMS: SMSConfig{
			APIURL:  getEnv("SMS_API_URL", "https://api.smsdev.com.br/v1/send"),
			APIKey:  getEnv("SMS_API_KEY", ""),
			Timeout: smsTimeout,
		},
		Shortener: ShortenerConfig{
			ServiceURL: getEnv("URL_SHORTENER_SERVICE_URL", ""),
			APIKey:     getEnv("URL_SHORTENER_API_KEY", ""),
			Timeout:    shortenerTimeout,
		},
		Scheduler: SchedulerConfig{
			SweepInterval: sweepInterval,
		},
	}, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
