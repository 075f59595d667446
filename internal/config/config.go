// Package config loads and validates process configuration via Viper.
// Settings come from environment variables with the ARTIC prefix (e.g.
// ARTIC_API_BASE_URL) or an optional config file; the result is an explicit
// struct handed to constructors, never global state.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Sternrassler/artic-report/pkg/client"
	"github.com/Sternrassler/artic-report/pkg/mail"
)

// Config captures all process configuration knobs loaded via Viper.
type Config struct {
	API               APIConfig   `mapstructure:"api"`
	Rate              RateConfig  `mapstructure:"rate"`
	Redis             RedisConfig `mapstructure:"redis"`
	SMTP              SMTPConfig  `mapstructure:"smtp"`
	Log               LogConfig   `mapstructure:"log"`
	MaxRuntimeSeconds int         `mapstructure:"max_runtime_seconds"`
}

// APIConfig configures the artworks API client and its retry behavior.
type APIConfig struct {
	BaseURL           string  `mapstructure:"base_url"`
	UserAgent         string  `mapstructure:"user_agent"`
	APIKey            string  `mapstructure:"api_key"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`
	MaxRetries        int     `mapstructure:"max_retries"`
	BackoffBase       float64 `mapstructure:"backoff_base"`
	BackoffCapSeconds float64 `mapstructure:"backoff_cap_seconds"`
}

// RateConfig configures the client-side courtesy rate limit.
type RateConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// RedisConfig enables the response cache when Addr is set.
type RedisConfig struct {
	Addr            string `mapstructure:"addr"`
	CacheTTLMinutes int    `mapstructure:"cache_ttl_minutes"`
}

// SMTPConfig configures report distribution.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// LogConfig configures zerolog output.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Load builds a Config from environment and an optional config file.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ARTIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "")
	v.SetDefault("api.user_agent", "artic-report/1.0")
	v.SetDefault("api.api_key", "")
	v.SetDefault("api.timeout_seconds", 20)
	v.SetDefault("api.max_retries", 4)
	v.SetDefault("api.backoff_base", 0.8)
	v.SetDefault("api.backoff_cap_seconds", 8)
	v.SetDefault("rate.requests_per_second", 5)
	v.SetDefault("rate.burst", 1)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.cache_ttl_minutes", 15)
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("max_runtime_seconds", 0)
}

// Validate checks invariants that would otherwise fail deep inside a run.
func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("api.timeout_seconds must be > 0")
	}
	if c.API.MaxRetries < 0 {
		return fmt.Errorf("api.max_retries must be >= 0")
	}
	if c.API.BackoffBase <= 0 {
		return fmt.Errorf("api.backoff_base must be > 0")
	}
	if c.API.BackoffCapSeconds <= 0 {
		return fmt.Errorf("api.backoff_cap_seconds must be > 0")
	}
	if c.Rate.RequestsPerSecond < 0 {
		return fmt.Errorf("rate.requests_per_second must be >= 0")
	}
	return nil
}

// ClientConfig converts the loaded settings into a client.Config. The Redis
// handle is attached separately by the caller when the cache is enabled.
func (c Config) ClientConfig() client.Config {
	return client.Config{
		BaseURL:   c.API.BaseURL,
		UserAgent: c.API.UserAgent,
		APIKey:    c.API.APIKey,
		Timeout:   time.Duration(c.API.TimeoutSeconds) * time.Second,
		Retry: client.RetryConfig{
			MaxRetries:  c.API.MaxRetries,
			BackoffBase: c.API.BackoffBase,
			BackoffCap:  time.Duration(c.API.BackoffCapSeconds * float64(time.Second)),
		},
		RequestsPerSecond: c.Rate.RequestsPerSecond,
		Burst:             c.Rate.Burst,
		CacheTTL:          time.Duration(c.Redis.CacheTTLMinutes) * time.Minute,
	}
}

// MailConfig converts the loaded SMTP settings into a mail.Config.
func (c Config) MailConfig() mail.Config {
	return mail.Config{
		Host:     c.SMTP.Host,
		Port:     c.SMTP.Port,
		Username: c.SMTP.Username,
		Password: c.SMTP.Password,
		From:     c.SMTP.From,
	}
}

// MaxRuntime returns the wall-clock budget for one batch run (0 = unlimited).
func (c Config) MaxRuntime() time.Duration {
	return time.Duration(c.MaxRuntimeSeconds) * time.Second
}
