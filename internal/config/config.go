package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var DefaultEnvConfig *EnvConfig

type EnvConfig struct {
	// server config
	APP_PORT          string
	PUBLIC_BASE_URL   string
	DEFAULT_PAGE_SIZE int
	// database config
	DB_DRIVER            string
	DB_HOST              string
	DB_PORT              int
	DB_USER              string
	DB_PASSWORD          string
	DB_NAME              string
	DB_SSL_MODE          string
	DB_CONN_MAX_LIFETIME time.Duration
	DB_MAX_IDLE_CONNS    int
	DB_MAX_OPEN_CONNS    int
	DB_AUTO_MIGRATE      bool
	SQLITE_PATH          string
	// logger config
	LOG_FILE_PATH string
	LOG_LEVEL     string
	LOG_FORMAT    string
	// auth config
	AUTH_JWT_SECRET string
	// optional integrations; empty disables them
	ELASTIC_URL          string
	DATASTORE_PROJECT_ID string
	// external endpoint directory
	ENDPOINTS_CONFIG_PATH string
}

// LoadEnvConfig reads .env when present, then the process environment, and
// stores the result in DefaultEnvConfig.
func LoadEnvConfig() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	DefaultEnvConfig = &EnvConfig{
		APP_PORT:              getEnvString("APP_PORT", "8080"),
		PUBLIC_BASE_URL:       strings.TrimRight(getEnvString("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		DEFAULT_PAGE_SIZE:     getEnvInt("DEFAULT_PAGE_SIZE", 5),
		DB_DRIVER:             getEnvString("DB_DRIVER", "postgres"),
		DB_HOST:               getEnvString("DB_HOST", "localhost"),
		DB_PORT:               getEnvInt("DB_PORT", 5432),
		DB_USER:               getEnvString("DB_USER", "postgres"),
		DB_PASSWORD:           getEnvString("DB_PASSWORD", "postgres"),
		DB_NAME:               getEnvString("DB_NAME", "postgres"),
		DB_SSL_MODE:           getEnvString("DB_SSL_MODE", "disable"),
		DB_CONN_MAX_LIFETIME:  getEnvDuration("DB_CONN_MAX_LIFETIME", 20*time.Minute),
		DB_MAX_IDLE_CONNS:     getEnvInt("DB_MAX_IDLE_CONNS", 10),
		DB_MAX_OPEN_CONNS:     getEnvInt("DB_MAX_OPEN_CONNS", 100),
		DB_AUTO_MIGRATE:       getEnvBool("DB_AUTO_MIGRATE", true),
		SQLITE_PATH:           getEnvString("SQLITE_PATH", "employee_records.db"),
		LOG_FILE_PATH:         getEnvString("LOG_FILE_PATH", ""),
		LOG_LEVEL:             getEnvString("LOG_LEVEL", "info"),
		LOG_FORMAT:            getEnvString("LOG_FORMAT", "json"),
		AUTH_JWT_SECRET:       getEnvString("AUTH_JWT_SECRET", ""),
		ELASTIC_URL:           getEnvString("ELASTIC_URL", ""),
		DATASTORE_PROJECT_ID:  getEnvString("DATASTORE_PROJECT_ID", ""),
		ENDPOINTS_CONFIG_PATH: getEnvString("ENDPOINTS_CONFIG_PATH", ""),
	}
	return nil
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}
