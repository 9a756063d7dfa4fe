package app

import (
	"testing"
	"time"

	"github.com/soukly/salla-relay/internal/tokenstore"
)

// validConfig returns a minimal configuration that passes validation.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := &Config{
		Webhook:   WebhookConfig{Secret: "webhook-secret"},
		Scheduler: SchedulerConfig{Secret: "cron-secret"},
		Salla:     SallaConfig{ClientID: "id", ClientSecret: "secret"},
	}
	if err := cfg.ApplyDefaults(); err != nil {
		t.Fatalf("ApplyDefaults: %v", err)
	}
	return cfg
}

func TestConfig_Defaults(t *testing.T) {
	cfg := validConfig(t)

	if cfg.Server.Host != DefaultConfigServerHost {
		t.Errorf("Server.Host = %q", cfg.Server.Host)
	}
	if cfg.Server.Port != DefaultConfigServerPort {
		t.Errorf("Server.Port = %d", cfg.Server.Port)
	}
	if cfg.Shutdown.Timeout != DefaultConfigShutdownTimeout {
		t.Errorf("Shutdown.Timeout = %v", cfg.Shutdown.Timeout)
	}
	if cfg.Store.Backend != StoreBackendRedis {
		t.Errorf("Store.Backend = %q", cfg.Store.Backend)
	}
	if cfg.Store.Redis.Addr != DefaultConfigRedisAddr {
		t.Errorf("Store.Redis.Addr = %q", cfg.Store.Redis.Addr)
	}
	if cfg.Store.KeyPrefix != "store:" {
		t.Errorf("Store.KeyPrefix = %q", cfg.Store.KeyPrefix)
	}
	if cfg.Refresh.Concurrency <= 0 {
		t.Errorf("Refresh.Concurrency = %d", cfg.Refresh.Concurrency)
	}
	if cfg.Refresh.TenantTimeout <= 0 {
		t.Errorf("Refresh.TenantTimeout = %v", cfg.Refresh.TenantTimeout)
	}
	if cfg.LogFormat == "" {
		t.Errorf("LogFormat not defaulted")
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestConfig_ValidateRejectsMissingSecrets(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing webhook secret", func(c *Config) { c.Webhook.Secret = "" }},
		{"missing scheduler secret", func(c *Config) { c.Scheduler.Secret = "" }},
		{"missing client id", func(c *Config) { c.Salla.ClientID = "" }},
		{"missing client secret", func(c *Config) { c.Salla.ClientSecret = "" }},
		{"bad store backend", func(c *Config) { c.Store.Backend = "postgres" }},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }},
		{"bad notify URL", func(c *Config) { c.Notify.PaymentURL = "not a url" }},
		{"zero refresh concurrency", func(c *Config) { c.Refresh.Concurrency = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestStoreConfig_NewStore(t *testing.T) {
	memory := StoreConfig{Backend: StoreBackendMemory}
	store, err := memory.NewStore()
	if err != nil {
		t.Fatalf("NewStore(memory): %v", err)
	}
	if _, ok := store.(*tokenstore.MemoryStore); !ok {
		t.Fatalf("store type = %T", store)
	}

	redis := StoreConfig{Backend: StoreBackendRedis, Redis: RedisConfig{Addr: "127.0.0.1:6379"}, KeyPrefix: "store:"}
	store, err = redis.NewStore()
	if err != nil {
		t.Fatalf("NewStore(redis): %v", err)
	}
	if _, ok := store.(*tokenstore.RedisStore); !ok {
		t.Fatalf("store type = %T", store)
	}

	unknown := StoreConfig{Backend: "postgres"}
	if _, err := unknown.NewStore(); err == nil {
		t.Fatalf("expected error for unsupported backend")
	}
}

func TestApp_NewWiresMemoryBackend(t *testing.T) {
	cfg := validConfig(t)
	cfg.Store.Backend = StoreBackendMemory
	cfg.Refresh.Interval = time.Minute

	application, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if application == nil {
		t.Fatal("nil app")
	}
}
