// Package config loads service settings from the environment and an optional
// .env file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all runtime settings.
type Config struct {
	AppPort     string `validate:"required"`
	Environment string
	LogLevel    string `validate:"oneof=debug info warn error"`

	WooCommerce WooCommerceConfig
	Cache       CacheConfig
	Redis       RedisConfig
	Database    DatabaseConfig

	SyncInterval     time.Duration `validate:"gte=0"`
	RebuildTimeout   time.Duration `validate:"gt=0"`
	CronSecret       string
	RabbitMQURL      string
	PlaceholderImage string
}

// WooCommerceConfig locates the catalog provider.
type WooCommerceConfig struct {
	URL            string `validate:"required,url"`
	ConsumerKey    string
	ConsumerSecret string
	PageSize       int           `validate:"min=1,max=100"`
	Timeout        time.Duration `validate:"gt=0"`
}

// CacheConfig selects and tunes the snapshot store.
type CacheConfig struct {
	Backend    string        `validate:"oneof=file redis memory"`
	File       string        `validate:"required_if=Backend file"`
	StaleAfter time.Duration `validate:"gt=0"`
}

// RedisConfig is used when Cache.Backend is "redis".
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// DatabaseConfig stores sync run history.
type DatabaseConfig struct {
	Driver string `validate:"oneof=sqlite postgres"`
	DSN    string `validate:"required"`
}

// Load reads configuration using the given viper instance. Pass nil to use
// the global viper.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.GetViper()
	}

	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("WOOCOMMERCE_API_URL", "http://localhost")
	v.SetDefault("WOOCOMMERCE_CONSUMER_KEY", "")
	v.SetDefault("WOOCOMMERCE_CONSUMER_SECRET", "")
	v.SetDefault("WOOCOMMERCE_PAGE_SIZE", 100)
	v.SetDefault("WOOCOMMERCE_TIMEOUT", "30s")
	v.SetDefault("CACHE_BACKEND", "file")
	v.SetDefault("CACHE_FILE", "data/products-cache.json")
	v.SetDefault("CACHE_STALE_AFTER", "24h")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_KEY", "catalog:snapshot")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "file:sync_runs.db")
	v.SetDefault("SYNC_INTERVAL", "0s")
	v.SetDefault("REBUILD_TIMEOUT", "5m")
	v.SetDefault("CRON_SECRET", "dev-secret-change-in-production")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("PLACEHOLDER_IMAGE", "/placeholder.png")

	v.AutomaticEnv()

	// A .env file is optional; environment variables win over it.
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		AppPort:     v.GetString("APP_PORT"),
		Environment: v.GetString("ENVIRONMENT"),
		LogLevel:    strings.ToLower(v.GetString("LOG_LEVEL")),
		WooCommerce: WooCommerceConfig{
			URL:            strings.TrimSpace(v.GetString("WOOCOMMERCE_API_URL")),
			ConsumerKey:    strings.TrimSpace(v.GetString("WOOCOMMERCE_CONSUMER_KEY")),
			ConsumerSecret: strings.TrimSpace(v.GetString("WOOCOMMERCE_CONSUMER_SECRET")),
			PageSize:       v.GetInt("WOOCOMMERCE_PAGE_SIZE"),
			Timeout:        v.GetDuration("WOOCOMMERCE_TIMEOUT"),
		},
		Cache: CacheConfig{
			Backend:    strings.ToLower(v.GetString("CACHE_BACKEND")),
			File:       v.GetString("CACHE_FILE"),
			StaleAfter: v.GetDuration("CACHE_STALE_AFTER"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			Key:      v.GetString("REDIS_KEY"),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("DATABASE_DRIVER")),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		SyncInterval:     v.GetDuration("SYNC_INTERVAL"),
		RebuildTimeout:   v.GetDuration("REBUILD_TIMEOUT"),
		CronSecret:       strings.TrimSpace(v.GetString("CRON_SECRET")),
		RabbitMQURL:      strings.TrimSpace(v.GetString("RABBITMQ_URL")),
		PlaceholderImage: v.GetString("PLACEHOLDER_IMAGE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tag rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
