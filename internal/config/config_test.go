package config

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"SERVICE_NAME", "ENV", "LOG_LEVEL", "HTTP_ADDR", "SHUTDOWN_TIMEOUT", "STORE_DRIVER",
	"DATABASE_URL", "DB_MAX_CONNS", "TX_TIMEOUT_MS", "LOCK_TIMEOUT_MS", "LOW_STOCK_THRESHOLD",
	"SEED_DATA", "METRICS_NAMESPACE", "DB_APPLY_SCHEMA",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	c := Load()

	assert.Equal(t, "bookshop", c.ServiceName)
	assert.Equal(t, "dev", c.Env)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, 10*time.Second, c.ShutdownTimeout)
	assert.Equal(t, DriverMemory, c.StoreDriver)
	assert.Equal(t, 5*time.Second, c.TxTimeout)
	assert.Equal(t, 2*time.Second, c.LockTimeout)
	assert.Equal(t, 2, c.LowStockThreshold)
	assert.True(t, c.SeedData)
	assert.Equal(t, 10, c.DBMaxConns)
	assert.False(t, c.ApplySchema)
	assert.NoError(t, c.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "PGX")
	t.Setenv("DATABASE_URL", "postgres://shop@localhost/bookshop")
	t.Setenv("TX_TIMEOUT_MS", "750")
	t.Setenv("LOCK_TIMEOUT_MS", "100")
	t.Setenv("LOW_STOCK_THRESHOLD", "5")
	t.Setenv("SEED_DATA", "false")
	t.Setenv("SHUTDOWN_TIMEOUT", "3")
	t.Setenv("METRICS_NAMESPACE", "bookshop")
	t.Setenv("DB_APPLY_SCHEMA", "true")

	c := Load()

	assert.Equal(t, DriverPGX, c.StoreDriver)
	assert.Equal(t, 750*time.Millisecond, c.TxTimeout)
	assert.Equal(t, 100*time.Millisecond, c.LockTimeout)
	assert.Equal(t, 5, c.LowStockThreshold)
	assert.False(t, c.SeedData)
	assert.Equal(t, 3*time.Second, c.ShutdownTimeout)
	assert.Equal(t, "bookshop", c.MetricsNamespace)
	assert.True(t, c.ApplySchema)
	assert.NoError(t, c.Validate())
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("TX_TIMEOUT_MS", "soon")
	t.Setenv("SEED_DATA", "maybe")

	c := Load()

	assert.Equal(t, 5*time.Second, c.TxTimeout)
	assert.True(t, c.SeedData)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.StoreDriver = "mysql" }},
		{"database driver without url", func(c *Config) { c.StoreDriver = DriverSQLX; c.DatabaseURL = "" }},
		{"zero tx timeout", func(c *Config) { c.TxTimeout = 0 }},
		{"negative threshold", func(c *Config) { c.LowStockThreshold = -1 }},
		{"negative max conns", func(c *Config) { c.DBMaxConns = -1 }},
		{"max conns beyond int32", func(c *Config) { c.DBMaxConns = math.MaxInt32 + 1 }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			c := Load()
			tc.mutate(&c)

			err := c.Validate()

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
