package storage

import (
	"testing"
	"time"

	"github.com/vault-analytics/internal/config"
)

func testRedisConfig() *config.RedisConfig {
	return &config.RedisConfig{
		Host:           "localhost",
		Port:           "6379",
		Password:       "",
		DB:             0,
		MaxConnections: 10,
		DocumentTTL:    10 * time.Minute,
	}
}

func TestNewRedisCache(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cache, err := NewRedisCache(testRedisConfig())
	if err != nil {
		t.Skipf("Skipping test - Redis not available: %v", err)
		return
	}
	defer func() {
		if err := cache.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	}()

	ctx := testContext(t)
	if err := cache.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}
