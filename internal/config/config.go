// Package config provides runtime configuration values for the bookshop service.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverMemory = "memory"
	DriverPGX    = "pgx"
	DriverSQLX   = "sqlx"
)

var ErrInvalidConfig = errors.New("config: invalid")

// Config holds the knobs for the HTTP server, the order store and the placement path.
type Config struct {
	ServiceName       string
	Env               string
	LogLevel          string
	HTTPAddr          string
	ShutdownTimeout   time.Duration
	StoreDriver       string
	DatabaseURL       string
	DBMaxConns        int
	// ApplySchema runs the embedded DDL on startup for the pgx and sqlx drivers.
	ApplySchema       bool
	TxTimeout         time.Duration
	LockTimeout       time.Duration
	LowStockThreshold int
	SeedData          bool
	MetricsNamespace  string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolenv(key string, def bool) bool {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func durenvms(key string, defMs int) time.Duration {
	return time.Duration(atoienv(key, defMs)) * time.Millisecond
}

func durenvs(key string, defSec int) time.Duration {
	return time.Duration(atoienv(key, defSec)) * time.Second
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		ServiceName:       getenv("SERVICE_NAME", "bookshop"),
		Env:               getenv("ENV", "dev"),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		ShutdownTimeout:   durenvs("SHUTDOWN_TIMEOUT", 10),
		StoreDriver:       strings.ToLower(getenv("STORE_DRIVER", DriverMemory)),
		DatabaseURL:       getenv("DATABASE_URL", ""),
		DBMaxConns:        atoienv("DB_MAX_CONNS", 10),
		ApplySchema:       boolenv("DB_APPLY_SCHEMA", false),
		TxTimeout:         durenvms("TX_TIMEOUT_MS", 5000),
		LockTimeout:       durenvms("LOCK_TIMEOUT_MS", 2000),
		LowStockThreshold: atoienv("LOW_STOCK_THRESHOLD", 2),
		SeedData:          boolenv("SEED_DATA", true),
		MetricsNamespace:  getenv("METRICS_NAMESPACE", ""),
	}
}

// Validate reports combinations Load cannot fix with a default.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory:
	case DriverPGX, DriverSQLX:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL is required for store driver %q", ErrInvalidConfig, c.StoreDriver)
		}
	default:
		return fmt.Errorf("%w: unknown store driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	if c.TxTimeout <= 0 {
		return fmt.Errorf("%w: TX_TIMEOUT_MS must be positive", ErrInvalidConfig)
	}
	if c.DBMaxConns < 0 || c.DBMaxConns > math.MaxInt32 {
		return fmt.Errorf("%w: DB_MAX_CONNS must be between 0 and %d", ErrInvalidConfig, math.MaxInt32)
	}
	if c.LowStockThreshold < 0 {
		return fmt.Errorf("%w: LOW_STOCK_THRESHOLD must not be negative", ErrInvalidConfig)
	}
	return nil
}
