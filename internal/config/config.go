package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverJSON     = "json"
)

// DefaultCategories is the category enumeration served when CATEGORIES is unset.
var DefaultCategories = []string{
	"Food",
	"Transportation",
	"Utilities",
	"Entertainment",
	"Healthcare",
	"Shopping",
	"Education",
	"Others",
}

// Config holds application configuration
type Config struct {
	// Server
	Env        string
	Port       string
	CORSOrigin string

	// Storage
	StorageDriver string
	SQLitePath    string
	JSONStorePath string
	MigrationsDir string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Auth rate limiting, per client IP
	AuthRateLimit float64
	AuthRateBurst int

	// Optional shared key guarding /metrics
	MetricsAPIKey string

	Categories []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if present; real environment variables win.
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Env:        getEnv("ENV", "development"),
		Port:       getEnv("PORT", "5000"),
		CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:5173"),

		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", DriverPostgres)),
		SQLitePath:    getEnv("SQLITE_PATH", "expenses.db"),
		JSONStorePath: getEnv("JSON_STORE_PATH", "data/expenses.json"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "expenses"),
		DBPassword: getEnv("DB_PASSWORD", "expenses"),
		DBName:     getEnv("DB_NAME", "expenses"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		MetricsAPIKey: getEnv("METRICS_API_KEY", ""),

		Categories: parseList(getEnv("CATEGORIES", ""), DefaultCategories),
	}

	switch config.StorageDriver {
	case DriverPostgres, DriverSQLite, DriverJSON:
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q: must be postgres, sqlite, or json", config.StorageDriver)
	}

	// Tokens live for a week unless configured otherwise.
	expStr := getEnv("JWT_EXPIRES_IN", "168h")
	expDur, err := time.ParseDuration(expStr)
	if err != nil || expDur <= 0 {
		log.Printf("Warning: invalid JWT_EXPIRES_IN value '%s', falling back to 168h\n", expStr)
		expDur = 7 * 24 * time.Hour
	}
	config.JWTExpirationDur = expDur

	rps, err := strconv.ParseFloat(getEnv("AUTH_RATE_LIMIT", "5"), 64)
	if err != nil || rps <= 0 {
		return nil, fmt.Errorf("invalid AUTH_RATE_LIMIT: must be a positive number")
	}
	config.AuthRateLimit = rps

	burst, err := strconv.Atoi(getEnv("AUTH_RATE_BURST", "10"))
	if err != nil || burst <= 0 {
		return nil, fmt.Errorf("invalid AUTH_RATE_BURST: must be a positive integer")
	}
	config.AuthRateBurst = burst

	return config, nil
}

// PostgresURL returns the connection URL used by golang-migrate.
func (c *Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// PostgresDSN returns the key/value connection string used by the gorm driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseList splits a comma separated list, dropping blanks and duplicates.
func parseList(raw string, fallback []string) []string {
	if strings.TrimSpace(raw) == "" {
		return append([]string(nil), fallback...)
	}
	seen := make(map[string]bool)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" || seen[part] {
			continue
		}
		seen[part] = true
		out = append(out, part)
	}
	if len(out) == 0 {
		return append([]string(nil), fallback...)
	}
	return out
}
