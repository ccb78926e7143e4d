package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	PostgresURL        string `mapstructure:"POSTGRES_URL"`
	RedisAddr          string `mapstructure:"REDIS_ADDR"`
	ServerPort         string `mapstructure:"SERVER_PORT"`
	LogLevel           string `mapstructure:"LOG_LEVEL"`
	Headless           bool   `mapstructure:"HEADLESS"`
	CheckIntervalHours int    `mapstructure:"CHECK_INTERVAL_HOURS"`
	CacheTTLMinutes    int    `mapstructure:"CACHE_TTL_MINUTES"`
	SMTPHost           string `mapstructure:"SMTP_HOST"`
	SMTPPort           string `mapstructure:"SMTP_PORT"`
	EmailAddress       string `mapstructure:"EMAIL_ADDRESS"`
	EmailPassword      string `mapstructure:"EMAIL_PASSWORD"`
}

// CheckInterval returns the recurring alert recheck interval.
func (c *Config) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalHours) * time.Hour
}

// CacheTTL returns how long search results stay cached.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

// Load reads configuration from file or environment variables.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Attempt to read the .env file, but don't fail if it's not present
	// This allows configuration purely through environment variables in production
	_ = viper.ReadInConfig()

	viper.SetDefault("SERVER_PORT", "8000")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("HEADLESS", true)
	viper.SetDefault("CHECK_INTERVAL_HOURS", 6)
	viper.SetDefault("CACHE_TTL_MINUTES", 30)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("SMTP_HOST", "smtp.gmail.com")
	viper.SetDefault("SMTP_PORT", "587")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
