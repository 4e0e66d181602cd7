// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port       int    `yaml:"port"`
	PublicURL  string `yaml:"public_url"`  // base for success/cancel redirects
	SuccessURL string `yaml:"success_url"` // defaults to public_url + /app
	CancelURL  string `yaml:"cancel_url"`  // defaults to public_url + /pricing
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int    `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AIConfig struct {
	OpenAIKey       string `yaml:"openai_key"`
	GeminiKey       string `yaml:"gemini_key"`
	GeminiURL       string `yaml:"gemini_url"`
	DefaultModel    string `yaml:"default_model"`
	MaxPromptTokens int    `yaml:"max_prompt_tokens"`
}

type PaymentConfig struct {
	Endpoint      string `yaml:"endpoint"`       // processor API base URL
	APIKey        string `yaml:"api_key"`        // outbound session creation
	WebhookSecret string `yaml:"webhook_secret"` // inbound HMAC verification
}

type StorageConfig struct {
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"` // optional custom endpoint (minio etc.)
}

type EmailConfig struct {
	Region string `yaml:"region"`
	From   string `yaml:"from"`
}

type SecurityConfig struct {
	DownloadSecret string        `yaml:"download_secret"` // signs download tokens
	DownloadTTL    time.Duration `yaml:"download_ttl"`
}

type SweeperConfig struct {
	Interval   time.Duration `yaml:"interval"`
	StaleAfter time.Duration `yaml:"stale_after"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	AI       AIConfig       `yaml:"ai"`
	Payment  PaymentConfig  `yaml:"payment"`
	Storage  StorageConfig  `yaml:"storage"`
	Email    EmailConfig    `yaml:"email"`
	Security SecurityConfig `yaml:"security"`
	Sweeper  SweeperConfig  `yaml:"sweeper"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.SuccessURL == "" {
		cfg.Server.SuccessURL = cfg.Server.PublicURL + "/app"
	}
	if cfg.Server.CancelURL == "" {
		cfg.Server.CancelURL = cfg.Server.PublicURL + "/pricing"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gpt-4o-mini"
	}
	if cfg.AI.MaxPromptTokens <= 0 {
		cfg.AI.MaxPromptTokens = 4096
	}
	if cfg.Security.DownloadTTL <= 0 {
		cfg.Security.DownloadTTL = 30 * 24 * time.Hour
	}
	if cfg.Sweeper.Interval <= 0 {
		cfg.Sweeper.Interval = 15 * time.Minute
	}
	if cfg.Sweeper.StaleAfter <= 0 {
		cfg.Sweeper.StaleAfter = 24 * time.Hour
	}

	// minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Payment.WebhookSecret == "" {
		return nil, errors.New("payment.webhook_secret is required")
	}
	if cfg.Storage.Bucket == "" {
		return nil, errors.New("storage.bucket is required")
	}
	if cfg.Security.DownloadSecret == "" {
		return nil, errors.New("security.download_secret is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
