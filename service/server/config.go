package server

import (
	"fmt"
	"time"
)

// Config represents server loop configuration
type Config struct {
	// PollTimeout bounds how long a tick waits for a request
	PollTimeout time.Duration
	// StatsInterval is how often statistics are logged and expired names pruned
	StatsInterval time.Duration
}

// DefaultConfig returns the default server loop configuration
func DefaultConfig() Config {
	return Config{
		PollTimeout:   50 * time.Millisecond,
		StatsInterval: time.Minute,
	}
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.PollTimeout <= 0 {
		return fmt.Errorf("pollTimeout must be positive, got %v", c.PollTimeout)
	}
	if c.StatsInterval <= 0 {
		return fmt.Errorf("statsInterval must be positive, got %v", c.StatsInterval)
	}
	return nil
}
