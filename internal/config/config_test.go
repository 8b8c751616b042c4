package config_test

import (
	"testing"
	"time"

	"catalogsearch/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(viper.New())

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "file", cfg.Cache.Backend)
	assert.Equal(t, "data/products-cache.json", cfg.Cache.File)
	assert.Equal(t, 24*time.Hour, cfg.Cache.StaleAfter)
	assert.Equal(t, 100, cfg.WooCommerce.PageSize)
	assert.Equal(t, 30*time.Second, cfg.WooCommerce.Timeout)
	assert.Equal(t, time.Duration(0), cfg.SyncInterval)
	assert.Equal(t, 5*time.Minute, cfg.RebuildTimeout)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/placeholder.png", cfg.PlaceholderImage)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_PORT", ":9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("CACHE_STALE_AFTER", "1h")
	t.Setenv("SYNC_INTERVAL", "6h")
	t.Setenv("WOOCOMMERCE_API_URL", "https://shop.example.com")
	t.Setenv("WOOCOMMERCE_CONSUMER_KEY", " ck_123 ")
	t.Setenv("REDIS_DB", "2")

	cfg, err := config.Load(viper.New())

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.AppPort)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, time.Hour, cfg.Cache.StaleAfter)
	assert.Equal(t, 6*time.Hour, cfg.SyncInterval)
	assert.Equal(t, "https://shop.example.com", cfg.WooCommerce.URL)
	assert.Equal(t, "ck_123", cfg.WooCommerce.ConsumerKey)
	assert.Equal(t, 2, cfg.Redis.DB)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown backend":   {"CACHE_BACKEND": "s3"},
		"page size too big": {"WOOCOMMERCE_PAGE_SIZE": "250"},
		"zero staleness":    {"CACHE_STALE_AFTER": "0s"},
		"bad log level":     {"LOG_LEVEL": "verbose"},
		"bad provider url":  {"WOOCOMMERCE_API_URL": "not a url"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := config.Load(viper.New())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}
