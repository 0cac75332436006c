package config

import "time"

// SentryConfig is the root configuration for a sentry instance.
type SentryConfig struct {
	Instance  InstanceConfig  `yaml:"instance"`
	Providers ProvidersConfig `yaml:"providers"`
	Database  DatabaseConfig  `yaml:"database"`
	Universe  UniverseConfig  `yaml:"universe"`
	Poller    PollerConfig    `yaml:"poller"`
	Dedup     DedupConfig     `yaml:"dedup"`
	Consensus ConsensusConfig `yaml:"consensus"`
	Delivery  DeliveryConfig  `yaml:"delivery"`
	Stream    StreamConfig    `yaml:"stream"`
	Health    HealthConfig    `yaml:"health"`
}

// InstanceConfig identifies this sentry.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// ProvidersConfig holds market-data provider settings.
type ProvidersConfig struct {
	BaseURL     string        `yaml:"base_url"`
	ListingURL  string        `yaml:"listing_url"`  // primary full-listing source
	FallbackURL string        `yaml:"fallback_url"` // secondary full-listing source
	APIKey      string        `yaml:"api_key"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`
}

// DatabaseConfig holds the Postgres connection for persisted state.
type DatabaseConfig struct {
	Postgres DBConfig `yaml:"postgres"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// UniverseConfig holds universe manager settings.
type UniverseConfig struct {
	PriorityCap  int           `yaml:"priority_cap"`
	SyncInterval time.Duration `yaml:"sync_interval"`
	Defaults     []string      `yaml:"defaults"` // monitored symbols seeded on first run
}

// PollerConfig holds the multi-rate poller settings.
type PollerConfig struct {
	PriorityInterval time.Duration `yaml:"priority_interval"`
	StandardInterval time.Duration `yaml:"standard_interval"`
	GlobalInterval   time.Duration `yaml:"global_interval"`
	Concurrency      int           `yaml:"concurrency"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
	PriorityNewsMax  int           `yaml:"priority_news_max"`
	StandardNewsMax  int           `yaml:"standard_news_max"`
	FundamentalsProb float64       `yaml:"fundamentals_prob"`
	PriceCacheMaxAge time.Duration `yaml:"price_cache_max_age"`
	PriceWindow      time.Duration `yaml:"price_window"`
}

// DedupConfig holds deduplication layer settings.
type DedupConfig struct {
	MemoryCapacity int           `yaml:"memory_capacity"`
	Retention      time.Duration `yaml:"retention"`
}

// ConsensusConfig holds truth-engine settings.
type ConsensusConfig struct {
	Threshold int           `yaml:"threshold"`
	TTL       time.Duration `yaml:"ttl"`
}

// DeliveryConfig holds delivery queue and flow-control settings.
type DeliveryConfig struct {
	Capacity     int           `yaml:"capacity"`
	AutoInterval time.Duration `yaml:"auto_interval"`
	FlushTimeout time.Duration `yaml:"flush_timeout"` // wait window before promoting unconfirmed stories
}

// StreamConfig holds the presentation stream settings.
type StreamConfig struct {
	Port int `yaml:"port"`
}

// HealthConfig holds the health endpoint settings.
type HealthConfig struct {
	Port int `yaml:"port"`
}
