package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported session drivers.
const (
	SessionDriverSQLite = "sqlite"
	SessionDriverRedis  = "redis"
	SessionDriverMemory = "memory"
)

// Config holds runtime configuration values for the CLI and its API client.
type Config struct {
	AppName           string
	AppEnv            string
	LogLevel          string
	APIBaseURL        string
	RequestTimeout    time.Duration
	UploadTimeout     time.Duration
	ReanalyzeTimeout  time.Duration
	RateLimitRPS      float64
	RetryAttempts     int
	RetryDelay        time.Duration
	MaxUploadMB       int
	SessionDriver     string
	SessionPath       string
	SessionTTL        time.Duration
	RedisURL          string
	CacheTTL          time.Duration
	OAuthCallbackAddr string
	MetricsAddr       string
}

// IsDevelopment reports whether request/response debug logging should be enabled.
func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

// MaxUploadBytes returns the archive size limit in bytes.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CODEMISSION")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "codemission")
	v.SetDefault("app.env", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("api.base_url", "http://localhost:3001/api")
	v.SetDefault("api.timeout", "60s")
	v.SetDefault("api.upload_timeout", "120s")
	v.SetDefault("api.reanalyze_timeout", "5m")
	v.SetDefault("api.rate_limit_rps", 10)
	v.SetDefault("retry.attempts", 3)
	v.SetDefault("retry.delay", "1s")
	v.SetDefault("upload.max_size_mb", 50)
	v.SetDefault("session.driver", SessionDriverSQLite)
	v.SetDefault("session.path", defaultSessionPath())
	v.SetDefault("session.ttl", "168h")
	v.SetDefault("cache.ttl", "30s")
	v.SetDefault("oauth.callback_addr", "127.0.0.1:8765")

	durations := map[string]*time.Duration{}
	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		LogLevel:          strings.ToLower(v.GetString("log.level")),
		APIBaseURL:        strings.TrimRight(v.GetString("api.base_url"), "/"),
		RateLimitRPS:      v.GetFloat64("api.rate_limit_rps"),
		RetryAttempts:     v.GetInt("retry.attempts"),
		MaxUploadMB:       v.GetInt("upload.max_size_mb"),
		SessionDriver:     strings.ToLower(v.GetString("session.driver")),
		SessionPath:       v.GetString("session.path"),
		RedisURL:          v.GetString("redis.url"),
		OAuthCallbackAddr: v.GetString("oauth.callback_addr"),
		MetricsAddr:       v.GetString("metrics.addr"),
	}
	durations["api.timeout"] = &cfg.RequestTimeout
	durations["api.upload_timeout"] = &cfg.UploadTimeout
	durations["api.reanalyze_timeout"] = &cfg.ReanalyzeTimeout
	durations["retry.delay"] = &cfg.RetryDelay
	durations["session.ttl"] = &cfg.SessionTTL
	durations["cache.ttl"] = &cfg.CacheTTL

	for key, target := range durations {
		parsed, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", key, err)
		}
		*target = parsed
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration for values the client cannot run with.
func (c Config) Validate() error {
	parsed, err := url.Parse(c.APIBaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("api base url must be an absolute url, got %q", c.APIBaseURL)
	}

	if c.RequestTimeout <= 0 || c.UploadTimeout <= 0 || c.ReanalyzeTimeout <= 0 {
		return fmt.Errorf("request timeouts must be positive")
	}

	if c.RetryAttempts < 0 || c.RetryDelay < 0 {
		return fmt.Errorf("retry settings must not be negative")
	}

	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("upload size limit must be positive")
	}

	switch c.SessionDriver {
	case SessionDriverSQLite:
		if strings.TrimSpace(c.SessionPath) == "" {
			return fmt.Errorf("session path must be provided for the sqlite driver")
		}
	case SessionDriverRedis:
		if strings.TrimSpace(c.RedisURL) == "" {
			return fmt.Errorf("redis url must be provided for the redis session driver")
		}
	case SessionDriverMemory:
	default:
		return fmt.Errorf("unknown session driver %q", c.SessionDriver)
	}

	return nil
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "codemission", "session.db")
	}
	return filepath.Join(home, ".codemission", "session.db")
}
