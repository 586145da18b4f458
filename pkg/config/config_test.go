package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Libasse27/erp-senegal-sub002/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.BackendPostgres, cfg.Stock.StoreBackend)
	assert.Equal(t, config.BackendMemory, cfg.Stock.LockBackend)
	assert.Equal(t, 5*time.Second, cfg.Stock.LockWaitTimeout)
	assert.Equal(t, 30*24*time.Hour, cfg.Stock.ExpiryHorizon())
	assert.Equal(t, time.Duration(0), cfg.Stock.AlertScanInterval)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestLoad_LeeVariablesDeEntorno(t *testing.T) {
	t.Setenv("STORE_BACKEND", "MEMORY")
	t.Setenv("LOCK_BACKEND", "redis")
	t.Setenv("LOCK_WAIT_TIMEOUT", "250ms")
	t.Setenv("LOCK_TTL", "10")
	t.Setenv("ALERT_EXPIRY_HORIZON_DAYS", "7")
	t.Setenv("ALERT_SCAN_INTERVAL", "1m")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("CATALOG_FILE", "catalogo.csv")
	t.Setenv("DB_AUTO_MIGRATE", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.BackendMemory, cfg.Stock.StoreBackend)
	assert.Equal(t, config.BackendRedis, cfg.Stock.LockBackend)
	assert.Equal(t, 250*time.Millisecond, cfg.Stock.LockWaitTimeout)
	assert.Equal(t, 10*time.Second, cfg.Stock.LockTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Stock.ExpiryHorizon())
	assert.Equal(t, time.Minute, cfg.Stock.AlertScanInterval)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "catalogo.csv", cfg.Stock.CatalogFile)
	assert.True(t, cfg.Stock.AutoMigrate)
}

func TestLoad_BackendInvalido(t *testing.T) {
	t.Setenv("STORE_BACKEND", "mongo")
	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_BACKEND")
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "erp", Password: "p@ss:w/rd", DBName: "stock", SSLMode: "disable"}
	dsn := c.ConnectionString()
	assert.Contains(t, dsn, "p%40ss%3Aw%2Frd")
	assert.Contains(t, dsn, "sslmode=disable")

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
