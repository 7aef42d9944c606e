package shared

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppEnv string `mapstructure:"app_env"`

	// Admin API client.
	APIBaseURL     string        `mapstructure:"api_base_url"`
	CredsFile      string        `mapstructure:"creds_file"`
	HTTPTimeout    time.Duration `mapstructure:"http_timeout"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`

	// Bulk document downloads.
	Workers int `mapstructure:"workers"`

	// Local sandbox API.
	SandboxAddr string        `mapstructure:"sandbox_addr"`
	SandboxSeed int64         `mapstructure:"sandbox_seed"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
}

// Load reads defaults, then an optional adminctl.yaml (cwd or
// ~/.config/sevasetu), then SEVA_* environment variables, in that order of
// precedence low to high.
func Load() (Config, error) {
	v := viper.New()
	v.SetDefault("app_env", "prod")
	v.SetDefault("api_base_url", "https://api.sevasetu.in")
	v.SetDefault("creds_file", defaultCredsFile())
	v.SetDefault("http_timeout", "30s")
	v.SetDefault("rate_limit_rps", 8.0)
	v.SetDefault("rate_limit_burst", 4)
	v.SetDefault("workers", 6)
	v.SetDefault("sandbox_addr", ":8585")
	v.SetDefault("sandbox_seed", 42)
	v.SetDefault("token_ttl", "15m")

	v.SetConfigName("adminctl")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "sevasetu"))
	}
	v.SetEnvPrefix("SEVA")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: api_base_url %q is not an absolute URL", c.APIBaseURL)
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("config: rate_limit_rps must be positive, got %v", c.RateLimitRPS)
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: workers must be at least 1, got %d", c.Workers)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("config: http_timeout must be positive, got %v", c.HTTPTimeout)
	}
	return nil
}

func defaultCredsFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".sevasetu-session.json"
	}
	return filepath.Join(dir, "sevasetu", "session.json")
}
