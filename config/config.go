package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds every tunable of the delivery engine. Values come from the
// environment or an optional .env file, with defaults matching production.
type Config struct {
	Port        string `mapstructure:"PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	SQLitePath  string `mapstructure:"SQLITE_PATH"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	CacheTTLSeconds        int    `mapstructure:"CACHE_TTL_SECONDS"`
	DeliveryTimeoutSeconds int    `mapstructure:"DELIVERY_TIMEOUT_SECONDS"`
	MaxAttempts            int    `mapstructure:"MAX_ATTEMPTS"`
	BaseRetryDelaySeconds  int    `mapstructure:"BASE_RETRY_DELAY_SECONDS"`
	LogRetentionHours      int    `mapstructure:"LOG_RETENTION_HOURS"`
	WorkerCount            int    `mapstructure:"WORKER_COUNT"`
	SubscriptionSeedFile   string `mapstructure:"SUBSCRIPTION_SEED_FILE"`
}

func GetConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows, so every key
	// needs a default even when the default is empty.
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("SQLITE_PATH", "")
	viper.SetDefault("SUBSCRIPTION_SEED_FILE", "")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CACHE_TTL_SECONDS", 300)
	viper.SetDefault("DELIVERY_TIMEOUT_SECONDS", 10)
	viper.SetDefault("MAX_ATTEMPTS", 7)
	viper.SetDefault("BASE_RETRY_DELAY_SECONDS", 10)
	viper.SetDefault("LOG_RETENTION_HOURS", 72)
	viper.SetDefault("WORKER_COUNT", 4)

	// A missing .env file is fine, the environment alone is enough.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}
	return &config, nil
}

// CacheTTL returns the subscription cache lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// DeliveryTimeout returns the per-attempt HTTP timeout.
func (c *Config) DeliveryTimeout() time.Duration {
	return time.Duration(c.DeliveryTimeoutSeconds) * time.Second
}

// BaseRetryDelay returns the first retry delay; subsequent delays double.
func (c *Config) BaseRetryDelay() time.Duration {
	return time.Duration(c.BaseRetryDelaySeconds) * time.Second
}

// RetentionWindow returns how long terminal webhooks and their attempts are kept.
func (c *Config) RetentionWindow() time.Duration {
	return time.Duration(c.LogRetentionHours) * time.Hour
}
