// Package config loads runtime configuration from the environment.
//
// A .env file in the working directory is read first if present (handy for
// local development); real environment variables always win because
// godotenv.Load never overrides a variable that is already set.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Auth   AuthConfig
	GitHub GitHubConfig
}

type ServerConfig struct {
	Port     int
	LogLevel slog.Level
}

type StoreConfig struct {
	Driver      string // "sqlite" or "postgres"
	Path        string // SQLite file, ":memory:" allowed
	DatabaseURL string // Postgres DSN
}

type AuthConfig struct {
	JWTSecret    string
	JWTAlgorithm string
	TokenTTL     time.Duration
}

type GitHubConfig struct {
	APIURL        string
	Token         string // optional; sent as a bearer credential when set
	Timeout       time.Duration
	RatePerSecond float64
	RateBurst     int
}

// Load reads the configuration and validates it.
func Load() (*Config, error) {
	// Missing .env is normal in production.
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:     getEnvAsInt("PORT", 8080),
			LogLevel: parseLevel(getEnv("LOG_LEVEL", "info")),
		},
		Store: StoreConfig{
			Driver:      strings.ToLower(getEnv("STORE_DRIVER", DriverSQLite)),
			Path:        getEnv("DB_PATH", "data/portfolio.db"),
			DatabaseURL: getEnv("DATABASE_URL", ""),
		},
		Auth: AuthConfig{
			JWTSecret:    getEnv("JWT_SECRET", ""),
			JWTAlgorithm: strings.ToUpper(getEnv("JWT_ALGORITHM", "HS256")),
			TokenTTL:     time.Duration(getEnvAsInt("JWT_TTL_MINUTES", 30)) * time.Minute,
		},
		GitHub: GitHubConfig{
			APIURL:        strings.TrimRight(getEnv("GITHUB_API_URL", "https://api.github.com"), "/"),
			Token:         getEnv("GITHUB_TOKEN", ""),
			Timeout:       time.Duration(getEnvAsInt("GITHUB_TIMEOUT_SECONDS", 5)) * time.Second,
			RatePerSecond: getEnvAsFloat("GITHUB_RATE_PER_SECOND", 5),
			RateBurst:     getEnvAsInt("GITHUB_RATE_BURST", 10),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: PORT %d out of range", c.Server.Port)
	}

	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("config: DB_PATH is required for the sqlite store")
		}
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.Store.Driver)
	}

	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("config: JWT_SECRET must be at least 16 characters")
	}
	switch c.Auth.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("config: unsupported JWT_ALGORITHM %q", c.Auth.JWTAlgorithm)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("config: JWT_TTL_MINUTES must be positive")
	}

	if c.GitHub.Timeout <= 0 {
		return fmt.Errorf("config: GITHUB_TIMEOUT_SECONDS must be positive")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		slog.Warn("invalid integer in environment, using default",
			slog.String("key", key),
			slog.Int("default", defaultValue),
		)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		slog.Warn("invalid number in environment, using default",
			slog.String("key", key),
			slog.Float64("default", defaultValue),
		)
		return defaultValue
	}

	return value
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
