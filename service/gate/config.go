package gate

import (
	"fmt"
	"time"
)

// Config represents gate configuration
type Config struct {
	// Interval is how often the pool is probed when the last probe succeeded
	Interval time.Duration `json:"interval" yaml:"interval"`
	// MaxBackoff caps the exponential delay applied after failed probes
	MaxBackoff time.Duration `json:"maxBackoff" yaml:"maxBackoff"`
	// Timeout bounds a single probe
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	ComputeThreshold float64 `json:"computeThreshold" yaml:"computeThreshold"`
	MemoryThreshold  float64 `json:"memoryThreshold" yaml:"memoryThreshold"`
}

// DefaultConfig returns the default gpu gate configuration
func DefaultConfig() Config {
	return Config{
		Interval:         5 * time.Second,
		MaxBackoff:       2 * time.Minute,
		Timeout:          10 * time.Second,
		ComputeThreshold: 10,
		MemoryThreshold:  10,
	}
}

// DefaultCPUConfig returns the default host gate configuration
func DefaultCPUConfig() Config {
	ret := DefaultConfig()
	ret.ComputeThreshold = 50
	ret.MemoryThreshold = 90
	return ret
}

// Validate returns an error describing invalid settings or nil
func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be > 0")
	}
	if c.MaxBackoff < c.Interval {
		return fmt.Errorf("maxBackoff must be >= interval")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0")
	}
	return nil
}
