package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/nekogravitycat/room-booker/internal/db"
)

const PROD_STRING = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	HTTPAddr     string
	LogFile      string

	DBDialect db.Dialect
	DBDSN     string

	TelegramToken string
	BotAdminIDs   []int64
	BotTimezone   *time.Location

	UpcomingCount int
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	cfg := &Config{}

	// Production origin (default: empty)
	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")

	// Application environment (default: dev)
	appEnvStr := getEnv("APP_ENV", "dev")
	cfg.IsProduction = appEnvStr == PROD_STRING

	// HTTP listen address (default: :8080). DISPLAY_API_PORT takes precedence.
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")
	if port := getEnv("DISPLAY_API_PORT", ""); port != "" {
		if _, err := strconv.ParseUint(port, 10, 16); err != nil {
			return nil, fmt.Errorf("DISPLAY_API_PORT should be a port number, got %q", port)
		}
		cfg.HTTPAddr = ":" + port
	}

	// Optional log file in addition to stdout
	cfg.LogFile = getEnv("LOG_FILE", "")

	// Database driver (default: sqlite)
	cfg.DBDialect, err = db.ParseDialect(getEnv("DB_DRIVER", "sqlite"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_DRIVER: %w", err)
	}

	// Database DSN is required for postgres, sqlite falls back to a local file
	cfg.DBDSN = os.Getenv("DB_DSN")
	if cfg.DBDSN == "" {
		if cfg.DBDialect == db.DialectPostgres {
			return nil, fmt.Errorf("DB_DSN is required")
		}
		cfg.DBDSN = "room_bookings.db"
	}

	// Chat bot is disabled when no token is configured
	cfg.TelegramToken = getEnv("TELEGRAM_BOT_TOKEN", "")

	cfg.BotAdminIDs, err = getEnvAsInt64List("BOT_ADMIN_IDS")
	if err != nil {
		return nil, fmt.Errorf("invalid BOT_ADMIN_IDS: %w", err)
	}

	cfg.BotTimezone, err = time.LoadLocation(getEnv("BOT_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid BOT_TIMEZONE: %w", err)
	}

	// Number of upcoming bookings shown on displays (default: 3)
	cfg.UpcomingCount, err = getEnvAsInt("UPCOMING_COUNT", 3)
	if err != nil {
		return nil, fmt.Errorf("invalid UPCOMING_COUNT: %w", err)
	}
	if cfg.UpcomingCount < 1 {
		return nil, fmt.Errorf("UPCOMING_COUNT must be positive")
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}

	return val, nil
}

// getEnvAsInt64List parses a comma separated list of integers. Empty entries are skipped.
func getEnvAsInt64List(key string) ([]int64, error) {
	var out []int64
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("env %s value %q is not a valid integer: %w", key, part, err)
		}
		out = append(out, v)
	}
	return out, nil
}
