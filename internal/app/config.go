package app

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/soukly/salla-relay/internal/observability"
	"github.com/soukly/salla-relay/internal/refresh"
	"github.com/soukly/salla-relay/internal/tokenstore"
	"github.com/soukly/salla-relay/internal/webhook"
)

// LogFormat represents the logging output format.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
	LogFormatOTel LogFormat = "otel"
)

// StoreBackend represents the token store backends supported.
type StoreBackend string

const (
	StoreBackendRedis  StoreBackend = "redis"
	StoreBackendMemory StoreBackend = "memory"
)

// Default configuration values
const (
	DefaultConfigServerHost      = "127.0.0.1"
	DefaultConfigServerPort      = 8080
	DefaultConfigShutdownTimeout = 5 * time.Second
	DefaultConfigStoreBackend    = StoreBackendRedis
	DefaultConfigRedisAddr       = "127.0.0.1:6379"
	DefaultConfigStoreKeyPrefix  = "store:"
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Host string `json:"host" validate:"hostname_rfc1123|ip"`
	Port uint16 `json:"port"` // Port range 0-65535 handled by uint16 type
}

// ShutdownConfig holds shutdown behavior configuration.
type ShutdownConfig struct {
	// Timeout for graceful shutdown.
	Timeout time.Duration `json:"timeout"`
}

// WebhookConfig holds the inbound webhook authentication secret.
type WebhookConfig struct {
	// Secret keys the HMAC-SHA256 signature of inbound webhook bodies.
	Secret string `json:"secret" validate:"required"`
}

// SchedulerConfig guards the bulk refresh endpoint.
type SchedulerConfig struct {
	// Secret is the bearer token the scheduler presents to trigger a refresh run.
	Secret string `json:"secret" validate:"required"`
}

// SallaConfig holds the OAuth application credentials for the Salla platform.
type SallaConfig struct {
	ClientID     string `json:"client_id" validate:"required"`
	ClientSecret string `json:"client_secret" validate:"required"`

	// TokenURL overrides the platform token endpoint (tests, staging).
	TokenURL string `json:"token_url" validate:"omitempty,url"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `json:"addr"`
	Username string `json:"username"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// StoreConfig describes which token store backend to construct.
type StoreConfig struct {
	Backend StoreBackend `json:"backend" validate:"required,oneof=redis memory"`

	// Backend-specific settings
	Redis RedisConfig `json:"redis"`

	// KeyPrefix namespaces merchant token keys.
	KeyPrefix string `json:"key_prefix"`
}

// NewStore creates a token store from the configuration.
func (s *StoreConfig) NewStore() (tokenstore.Store, error) {
	switch s.Backend {
	case StoreBackendRedis:
		return tokenstore.NewRedisStore(tokenstore.RedisOptions{
			Addr:      s.Redis.Addr,
			Username:  s.Redis.Username,
			Password:  s.Redis.Password,
			DB:        s.Redis.DB,
			KeyPrefix: s.KeyPrefix,
		})
	case StoreBackendMemory:
		return tokenstore.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", s.Backend)
	}
}

// RefreshConfig tunes the bulk refresh coordinator.
type RefreshConfig struct {
	// Interval between background refresh runs. Zero disables the background
	// scheduler; runs are then triggered through the HTTP endpoint only.
	Interval time.Duration `json:"interval"`

	// Concurrency bounds how many merchants refresh in parallel.
	Concurrency int `json:"concurrency" validate:"min=1"`

	// TenantTimeout bounds one merchant's read-refresh-write sequence.
	TenantTimeout time.Duration `json:"tenant_timeout"`
}

// NotifyConfig holds the downstream automation endpoints per event class.
type NotifyConfig struct {
	PaymentURL      string `json:"payment_url" validate:"omitempty,url"`
	CancellationURL string `json:"cancellation_url" validate:"omitempty,url"`
	LoggingURL      string `json:"logging_url" validate:"omitempty,url"`
	RefundURL       string `json:"refund_url" validate:"omitempty,url"`

	// Timeout bounds one downstream notification POST.
	Timeout time.Duration `json:"timeout"`
}

// Config holds the application's configuration.
type Config struct {
	// LogLevel for logging output (defaults to Info if unset).
	LogLevel  slog.Level      `json:"log_level"`
	LogFormat LogFormat       `json:"log_format" validate:"oneof=text json otel"`
	Server    ServerConfig    `json:"server"`
	Shutdown  ShutdownConfig  `json:"shutdown"`
	Webhook   WebhookConfig   `json:"webhook"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Salla     SallaConfig     `json:"salla"`
	Store     StoreConfig     `json:"store"`
	Refresh   RefreshConfig   `json:"refresh"`
	Notify    NotifyConfig    `json:"notify"`
}

// Default creates a new Config with default values applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills unset config fields with sensible defaults.
func (c *Config) ApplyDefaults() error {
	if c.LogFormat == "" {
		c.LogFormat = LogFormat(observability.DefaultFormat())
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultConfigServerHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultConfigServerPort
	}
	if c.Shutdown.Timeout == 0 {
		c.Shutdown.Timeout = DefaultConfigShutdownTimeout
	}
	if c.Store.Backend == "" {
		c.Store.Backend = DefaultConfigStoreBackend
	}
	if c.Store.KeyPrefix == "" {
		c.Store.KeyPrefix = DefaultConfigStoreKeyPrefix
	}
	if c.Store.Backend == StoreBackendRedis && c.Store.Redis.Addr == "" {
		c.Store.Redis.Addr = DefaultConfigRedisAddr
	}
	if c.Refresh.Concurrency == 0 {
		c.Refresh.Concurrency = refresh.DefaultConcurrency
	}
	if c.Refresh.TenantTimeout == 0 {
		c.Refresh.TenantTimeout = refresh.DefaultTenantTimeout
	}
	if c.Notify.Timeout == 0 {
		c.Notify.Timeout = webhook.DefaultNotifyTimeout
	}

	return nil
}

// Validate validates the configuration using struct tags and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if c.Store.Backend == StoreBackendRedis && c.Store.Redis.Addr == "" {
		return errors.New("redis address required for redis store backend")
	}

	return nil
}
