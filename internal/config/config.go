package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config holds everything the server and CLI read from the environment.
type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	StorageBackend  string
	SQLitePath      string
	LocalUserID     int64
	LocalQuotaBytes int

	JWTSecret string
	TokenTTL  time.Duration

	LogLevel  string
	LogFormat string

	AchievementTZ *time.Location
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// Missing .env is fine; explicit env vars always win.
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "certprep_user"),
		DBPassword:     getEnv("DB_PASSWORD", "certprep_password"),
		DBName:         getEnv("DB_NAME", "certprep"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendPostgres)),
		SQLitePath:     getEnv("SQLITE_PATH", "data/certprep.db"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.LocalUserID, err = strconv.ParseInt(getEnv("LOCAL_USER_ID", "1"), 10, 64); err != nil {
		return nil, fmt.Errorf("parse LOCAL_USER_ID: %w", err)
	}
	// 5 MiB mirrors the usual browser local storage quota; 0 disables the check.
	if cfg.LocalQuotaBytes, err = strconv.Atoi(getEnv("LOCAL_QUOTA_BYTES", "5242880")); err != nil {
		return nil, fmt.Errorf("parse LOCAL_QUOTA_BYTES: %w", err)
	}
	if cfg.TokenTTL, err = time.ParseDuration(getEnv("TOKEN_TTL", "72h")); err != nil {
		return nil, fmt.Errorf("parse TOKEN_TTL: %w", err)
	}
	if cfg.AchievementTZ, err = time.LoadLocation(getEnv("ACHIEVEMENT_TZ", "UTC")); err != nil {
		return nil, fmt.Errorf("load ACHIEVEMENT_TZ: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendPostgres:
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when STORAGE_BACKEND=%s", BackendPostgres)
		}
	case BackendSQLite:
		if c.LocalUserID <= 0 {
			return fmt.Errorf("LOCAL_USER_ID must be positive")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q (want %s or %s)", c.StorageBackend, BackendPostgres, BackendSQLite)
	}
	return nil
}

// PostgresDSN returns the lib/pq keyword DSN.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
