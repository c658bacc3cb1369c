package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env            string `mapstructure:"ENV"`
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	CTSBaseURL     string `mapstructure:"CTS_BASE_URL"`
	CTSTimeoutMS   int    `mapstructure:"CTS_TIMEOUT_MS"`
	TargetLanguage string `mapstructure:"TARGET_LANGUAGE"`
	MetricsAddr    string `mapstructure:"METRICS_ADDR"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CTS_BASE_URL", "") // empty disables gateway lookups
	v.SetDefault("CTS_TIMEOUT_MS", 5000)
	v.SetDefault("TARGET_LANGUAGE", "en-GB")
	v.SetDefault("METRICS_ADDR", "")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("ENV")
	v.BindEnv("LOG_LEVEL")
	v.BindEnv("CTS_BASE_URL")
	v.BindEnv("CTS_TIMEOUT_MS")
	v.BindEnv("TARGET_LANGUAGE")
	v.BindEnv("METRICS_ADDR")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// CTSTimeout returns the terminology gateway timeout as a duration.
func (c *Config) CTSTimeout() time.Duration {
	return time.Duration(c.CTSTimeoutMS) * time.Millisecond
}

// Validate checks that the configuration is usable before any work starts.
func (c *Config) Validate() error {
	if c.CTSTimeoutMS <= 0 {
		return fmt.Errorf("CTS_TIMEOUT_MS must be positive, got %d", c.CTSTimeoutMS)
	}
	if c.TargetLanguage == "" {
		return fmt.Errorf("TARGET_LANGUAGE must not be empty")
	}
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.LogLevel)
	}
	return nil
}
