package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultProviderTimeout  = 30 * time.Second
	DefaultMaxRetries       = 3
	DefaultDBPort           = 5432
	DefaultDBSSLMode        = "prefer"
	DefaultMaxConns         = 10
	DefaultMinConns         = 2
	DefaultPriorityCap      = 5
	DefaultSyncInterval     = 24 * time.Hour
	DefaultPriorityInterval = 10 * time.Second
	DefaultStandardInterval = 45 * time.Second
	DefaultGlobalInterval   = 60 * time.Second
	DefaultPollConcurrency  = 8
	DefaultRequestTimeout   = 10 * time.Second
	DefaultPriorityNewsMax  = 5
	DefaultStandardNewsMax  = 2
	DefaultFundamentalsProb = 0.05
	DefaultPriceCacheMaxAge = 5 * time.Minute
	DefaultPriceWindow      = 6 * time.Hour
	DefaultMemoryCapacity   = 2000
	DefaultRetention        = 24 * time.Hour
	DefaultThreshold        = 1
	DefaultTTL              = 30 * time.Second
	DefaultQueueCapacity    = 5
	DefaultAutoInterval     = 15 * time.Second
	DefaultFlushTimeout     = 45 * time.Second
	DefaultStreamPort       = 8090
	DefaultHealthPort       = 8080
)

func (c *SentryConfig) applyDefaults() {
	// Provider defaults
	if c.Providers.Timeout == 0 {
		c.Providers.Timeout = DefaultProviderTimeout
	}
	if c.Providers.MaxRetries == 0 {
		c.Providers.MaxRetries = DefaultMaxRetries
	}
	if c.Providers.ListingURL == "" {
		c.Providers.ListingURL = c.Providers.BaseURL
	}

	// Database defaults
	applyDBDefaults(&c.Database.Postgres)

	// Universe defaults
	if c.Universe.PriorityCap == 0 {
		c.Universe.PriorityCap = DefaultPriorityCap
	}
	if c.Universe.SyncInterval == 0 {
		c.Universe.SyncInterval = DefaultSyncInterval
	}

	// Poller defaults
	if c.Poller.PriorityInterval == 0 {
		c.Poller.PriorityInterval = DefaultPriorityInterval
	}
	if c.Poller.StandardInterval == 0 {
		c.Poller.StandardInterval = DefaultStandardInterval
	}
	if c.Poller.GlobalInterval == 0 {
		c.Poller.GlobalInterval = DefaultGlobalInterval
	}
	if c.Poller.Concurrency == 0 {
		c.Poller.Concurrency = DefaultPollConcurrency
	}
	if c.Poller.RequestTimeout == 0 {
		c.Poller.RequestTimeout = DefaultRequestTimeout
	}
	if c.Poller.PriorityNewsMax == 0 {
		c.Poller.PriorityNewsMax = DefaultPriorityNewsMax
	}
	if c.Poller.StandardNewsMax == 0 {
		c.Poller.StandardNewsMax = DefaultStandardNewsMax
	}
	if c.Poller.FundamentalsProb == 0 {
		c.Poller.FundamentalsProb = DefaultFundamentalsProb
	}
	if c.Poller.PriceCacheMaxAge == 0 {
		c.Poller.PriceCacheMaxAge = DefaultPriceCacheMaxAge
	}
	if c.Poller.PriceWindow == 0 {
		c.Poller.PriceWindow = DefaultPriceWindow
	}

	// Dedup defaults
	if c.Dedup.MemoryCapacity == 0 {
		c.Dedup.MemoryCapacity = DefaultMemoryCapacity
	}
	if c.Dedup.Retention == 0 {
		c.Dedup.Retention = DefaultRetention
	}

	// Consensus defaults
	if c.Consensus.Threshold == 0 {
		c.Consensus.Threshold = DefaultThreshold
	}
	if c.Consensus.TTL == 0 {
		c.Consensus.TTL = DefaultTTL
	}

	// Delivery defaults
	if c.Delivery.Capacity == 0 {
		c.Delivery.Capacity = DefaultQueueCapacity
	}
	if c.Delivery.AutoInterval == 0 {
		c.Delivery.AutoInterval = DefaultAutoInterval
	}
	if c.Delivery.FlushTimeout == 0 {
		c.Delivery.FlushTimeout = DefaultFlushTimeout
	}

	// Server defaults
	if c.Stream.Port == 0 {
		c.Stream.Port = DefaultStreamPort
	}
	if c.Health.Port == 0 {
		c.Health.Port = DefaultHealthPort
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
