package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Collision policies for downloads that resolve to the same destination.
const (
	CollisionOverwrite = "overwrite"
	CollisionSkip      = "skip"
	CollisionRename    = "rename"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config stores all configuration for the application.
type Config struct {
	LogLevel        string `mapstructure:"LOG_LEVEL"`
	LogFormat       string `mapstructure:"LOG_FORMAT"`
	ServerPort      string `mapstructure:"SERVER_PORT"`
	HTTPTimeout     int    `mapstructure:"HTTP_TIMEOUT"`
	ChunkSize       int    `mapstructure:"CHUNK_SIZE"`
	LinkCount       int    `mapstructure:"LINK_COUNT"`
	OutputDir       string `mapstructure:"OUTPUT_DIR"`
	FilePrefix      string `mapstructure:"FILE_PREFIX"`
	CollisionPolicy string `mapstructure:"COLLISION_POLICY"`
	Workers         int    `mapstructure:"WORKERS"`
	ImagesDir       string `mapstructure:"IMAGES_DIR"`
	RenderPages     bool   `mapstructure:"RENDER_PAGES"`
	Proxies         string `mapstructure:"PROXIES"`
	UserAgent       string `mapstructure:"USER_AGENT"`
}

// Load reads configuration from an optional .env file and the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// A missing .env is fine, the environment alone is enough.
	_ = v.ReadInConfig()

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("HTTP_TIMEOUT", 10) // in seconds
	v.SetDefault("CHUNK_SIZE", 8192)
	v.SetDefault("LINK_COUNT", 10)
	v.SetDefault("OUTPUT_DIR", "../audio_files")
	v.SetDefault("FILE_PREFIX", "audio_")
	v.SetDefault("COLLISION_POLICY", CollisionOverwrite)
	v.SetDefault("WORKERS", 1)
	v.SetDefault("IMAGES_DIR", "images")
	v.SetDefault("RENDER_PAGES", false)
	v.SetDefault("PROXIES", "")
	v.SetDefault("USER_AGENT", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges. Flags applied on top of a loaded config
// should be validated again.
func (c *Config) Validate() error {
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("%w: HTTP_TIMEOUT must be positive, got %d", ErrInvalidConfig, c.HTTPTimeout)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: CHUNK_SIZE must be positive, got %d", ErrInvalidConfig, c.ChunkSize)
	}
	if c.LinkCount < 0 {
		return fmt.Errorf("%w: LINK_COUNT must not be negative, got %d", ErrInvalidConfig, c.LinkCount)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: WORKERS must be at least 1, got %d", ErrInvalidConfig, c.Workers)
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("%w: OUTPUT_DIR is empty", ErrInvalidConfig)
	}
	switch c.CollisionPolicy {
	case CollisionOverwrite, CollisionSkip, CollisionRename:
	default:
		return fmt.Errorf("%w: unknown COLLISION_POLICY %q", ErrInvalidConfig, c.CollisionPolicy)
	}
	return nil
}

// Timeout returns the per-request network timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.HTTPTimeout) * time.Second
}

// ProxyList splits PROXIES on commas, dropping blanks.
func (c *Config) ProxyList() []string {
	var out []string
	for _, p := range strings.Split(c.Proxies, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
