package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *SentryConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.Providers.BaseURL == "" {
		return errors.New("providers.base_url is required")
	}

	if err := c.Database.Postgres.validate("database.postgres"); err != nil {
		return err
	}

	if c.Universe.PriorityCap < 1 {
		return errors.New("universe.priority_cap must be >= 1")
	}

	if c.Poller.Concurrency < 1 {
		return errors.New("poller.concurrency must be >= 1")
	}
	if c.Poller.FundamentalsProb < 0 || c.Poller.FundamentalsProb > 1 {
		return fmt.Errorf("poller.fundamentals_prob must be between 0 and 1, got %g", c.Poller.FundamentalsProb)
	}

	if c.Dedup.MemoryCapacity < 1 {
		return errors.New("dedup.memory_capacity must be >= 1")
	}

	if c.Consensus.Threshold < 1 {
		return errors.New("consensus.threshold must be >= 1")
	}

	if c.Delivery.Capacity < 1 {
		return errors.New("delivery.capacity must be >= 1")
	}

	if c.Stream.Port < 1 || c.Stream.Port > 65535 {
		return fmt.Errorf("stream.port must be between 1 and 65535, got %d", c.Stream.Port)
	}
	if c.Health.Port < 1 || c.Health.Port > 65535 {
		return fmt.Errorf("health.port must be between 1 and 65535, got %d", c.Health.Port)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
