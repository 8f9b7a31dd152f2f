package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Yelp    YelpConfig    `mapstructure:"yelp"`
	Google  GoogleConfig  `mapstructure:"google"`
	GeoIP   GeoIPConfig   `mapstructure:"geoip"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Logging LoggingConfig `mapstructure:"logging"`

	CSVOutputPath string `mapstructure:"csv_output_path"`
}

type YelpConfig struct {
	APIKey          string `mapstructure:"api_key"`
	BaseURL         string `mapstructure:"base_url"`
	DefaultTerm     string `mapstructure:"default_term"`
	DefaultLocation string `mapstructure:"default_location"`
	Radius          int    `mapstructure:"radius"` // meters
	SearchLimit     int    `mapstructure:"search_limit"`
}

type GoogleConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type GeoIPConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url"`
}

type HTTPConfig struct {
	TimeoutMs        int `mapstructure:"timeout_ms"`
	MaxRetries       int `mapstructure:"max_retries"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms"`
	RateLimitMs      int `mapstructure:"rate_limit_ms"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const (
	MaxRadius      = 20000
	MaxSearchLimit = 500
)

var (
	ErrMissingYelpKey   = errors.New("yelp API key is not set (YELP_API_KEY)")
	ErrMissingGoogleKey = errors.New("google API key is not set (GOOGLE_API_KEY)")
)

// Load reads .env, an optional YAML file and the environment, in increasing
// order of precedence. configPath may be empty, in which case where2eat.yaml
// is looked up in the working directory and ~/.config/where2eat.
func Load(configPath string) (*Config, error) {
	// a missing .env is normal; variables may already be exported
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("yelp.api_key", "YELP_API_KEY", "POETRY_YELP_KEY")
	_ = v.BindEnv("google.api_key", "GOOGLE_API_KEY", "POETRY_GOOGLE_KEY")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configPath, err)
		}
	} else {
		v.SetConfigName("where2eat")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.config/where2eat")
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: read: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("yelp.api_key", "")
	v.SetDefault("yelp.base_url", "https://api.yelp.com")
	v.SetDefault("yelp.default_term", "restaurant")
	v.SetDefault("yelp.default_location", "Union Square, New York, NY 10003")
	v.SetDefault("yelp.radius", 15000)
	v.SetDefault("yelp.search_limit", 40)

	v.SetDefault("google.api_key", "")
	v.SetDefault("google.base_url", "https://maps.googleapis.com")

	v.SetDefault("geoip.enabled", true)
	v.SetDefault("geoip.base_url", "http://ip-api.com")

	v.SetDefault("http.timeout_ms", 10000)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.retry_base_delay_ms", 500)
	v.SetDefault("http.rate_limit_ms", 200)

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")

	v.SetDefault("csv_output_path", "")
}

// Validate checks value ranges. Credentials are checked separately by
// RequireYelp and RequireGoogle because not every command needs both.
func (c *Config) Validate() error {
	if c.Yelp.Radius <= 0 || c.Yelp.Radius > MaxRadius {
		return fmt.Errorf("yelp.radius must be between 1 and %d meters, got %d", MaxRadius, c.Yelp.Radius)
	}
	if c.Yelp.SearchLimit <= 0 || c.Yelp.SearchLimit > MaxSearchLimit {
		return fmt.Errorf("yelp.search_limit must be between 1 and %d, got %d", MaxSearchLimit, c.Yelp.SearchLimit)
	}
	if c.Yelp.BaseURL == "" {
		return fmt.Errorf("yelp.base_url is required")
	}
	if c.Google.BaseURL == "" {
		return fmt.Errorf("google.base_url is required")
	}
	if c.HTTP.TimeoutMs <= 0 {
		return fmt.Errorf("http.timeout_ms must be positive")
	}
	if c.HTTP.MaxRetries < 0 || c.HTTP.RetryBaseDelayMs < 0 || c.HTTP.RateLimitMs < 0 {
		return fmt.Errorf("http retry and rate limit settings must not be negative")
	}
	return nil
}

// RequireYelp fails when no Yelp key is configured.
func (c *Config) RequireYelp() error {
	if strings.TrimSpace(c.Yelp.APIKey) == "" {
		return ErrMissingYelpKey
	}
	return nil
}

// RequireGoogle fails when no Google key is configured.
func (c *Config) RequireGoogle() error {
	if strings.TrimSpace(c.Google.APIKey) == "" {
		return ErrMissingGoogleKey
	}
	return nil
}

// Timeout converts the configured HTTP timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutMs) * time.Millisecond
}

// RetryBaseDelay converts the configured retry delay.
func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.HTTP.RetryBaseDelayMs) * time.Millisecond
}
