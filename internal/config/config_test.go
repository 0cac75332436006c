package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sentry.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	yaml := `
instance:
  id: test-sentry
providers:
  base_url: https://data.example.com/v1
  api_key: demo
database:
  postgres:
    host: localhost
    port: 5432
    name: test_db
    user: testuser
    password: testpass
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "test-sentry" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "test-sentry")
	}
	if cfg.Providers.BaseURL != "https://data.example.com/v1" {
		t.Errorf("Providers.BaseURL = %q, want %q", cfg.Providers.BaseURL, "https://data.example.com/v1")
	}
	if cfg.Database.Postgres.Host != "localhost" {
		t.Errorf("Database.Postgres.Host = %q, want %q", cfg.Database.Postgres.Host, "localhost")
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "secret123")

	yaml := `
instance:
  id: test-sentry
providers:
  base_url: https://data.example.com/v1
database:
  postgres:
    host: localhost
    name: test_db
    user: testuser
    password: ${TEST_DB_PASSWORD}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Postgres.Password != "secret123" {
		t.Errorf("Password = %q, want %q", cfg.Database.Postgres.Password, "secret123")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
instance:
  id: test-sentry
providers:
  base_url: https://data.example.com/v1
database:
  postgres:
    host: localhost
    name: test_db
    user: testuser
    password: testpass
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Universe.PriorityCap != DefaultPriorityCap {
		t.Errorf("PriorityCap = %d, want %d", cfg.Universe.PriorityCap, DefaultPriorityCap)
	}
	if cfg.Poller.PriorityInterval != DefaultPriorityInterval {
		t.Errorf("PriorityInterval = %v, want %v", cfg.Poller.PriorityInterval, DefaultPriorityInterval)
	}
	if cfg.Delivery.Capacity != DefaultQueueCapacity {
		t.Errorf("Delivery.Capacity = %d, want %d", cfg.Delivery.Capacity, DefaultQueueCapacity)
	}
	if cfg.Consensus.Threshold != DefaultThreshold {
		t.Errorf("Consensus.Threshold = %d, want %d", cfg.Consensus.Threshold, DefaultThreshold)
	}
	if cfg.Providers.ListingURL != cfg.Providers.BaseURL {
		t.Errorf("ListingURL = %q, want base URL fallback", cfg.Providers.ListingURL)
	}
}

func TestValidateErrors(t *testing.T) {
	base := func() *SentryConfig {
		cfg := &SentryConfig{}
		cfg.Instance.ID = "s1"
		cfg.Providers.BaseURL = "https://data.example.com/v1"
		cfg.Database.Postgres = DBConfig{
			Host: "localhost", Name: "db", User: "u", Password: "p",
		}
		cfg.applyDefaults()
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*SentryConfig)
	}{
		{"missing instance id", func(c *SentryConfig) { c.Instance.ID = "" }},
		{"missing base url", func(c *SentryConfig) { c.Providers.BaseURL = "" }},
		{"missing db host", func(c *SentryConfig) { c.Database.Postgres.Host = "" }},
		{"zero priority cap", func(c *SentryConfig) { c.Universe.PriorityCap = -1 }},
		{"bad fundamentals prob", func(c *SentryConfig) { c.Poller.FundamentalsProb = 1.5 }},
		{"zero threshold", func(c *SentryConfig) { c.Consensus.Threshold = -1 }},
		{"bad stream port", func(c *SentryConfig) { c.Stream.Port = 70000 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}

	if err := base().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}
