package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	NewRelic   NewRelicConfig
	Directions DirectionsConfig
	Client     ClientConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// DirectionsConfig holds Google Maps configuration for directions, place
// pricing and geocoding. An empty APIKey disables the /v1/directions relay
// and geocoding, and prices stops from the category defaults.
type DirectionsConfig struct {
	APIKey        string
	BaseURL       string
	Mode          string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	CacheTTL      time.Duration

	PlacesRadiusMeters int
}

// ClientConfig holds settings for command-line clients of the backend.
type ClientConfig struct {
	BaseURL string
	UserID  string
	Timeout time.Duration
}

// Load loads configuration from environment variables, after applying a .env
// file from the working directory if one exists. Variables already set in the
// environment take precedence over the file.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("failed to load .env: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "roadtrip"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "roadtrip-service"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Directions: DirectionsConfig{
			APIKey:        getEnv("DIRECTIONS_API_KEY", getEnv("GOOGLE_MAPS_API_KEY", "")),
			BaseURL:       getEnv("DIRECTIONS_BASE_URL", ""),
			Mode:          getEnv("DIRECTIONS_MODE", "driving"),
			Timeout:       getDurationEnv("DIRECTIONS_TIMEOUT", 10*time.Second),
			RatePerSecond: getFloatEnv("DIRECTIONS_RATE_PER_SECOND", 10),
			Burst:         getIntEnv("DIRECTIONS_BURST", 20),
			CacheTTL:      getDurationEnv("DIRECTIONS_CACHE_TTL", 24*time.Hour),

			PlacesRadiusMeters: getIntEnv("PLACES_RADIUS_METERS", 1000),
		},
		Client: ClientConfig{
			BaseURL: getEnv("ROADTRIP_API_URL", "http://localhost:8080"),
			UserID:  getEnv("ROADTRIP_USER_ID", ""),
			Timeout: getDurationEnv("ROADTRIP_API_TIMEOUT", 15*time.Second),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
