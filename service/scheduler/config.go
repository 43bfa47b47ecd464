package scheduler

import (
	"errors"
	"fmt"
	"time"
)

// Config represents scheduler configuration
type Config struct {
	// NumJobs caps the number of concurrently running tasks
	NumJobs int
	// Admission is either fifo or lifo
	Admission string
	// Retention evicts terminal task names older than the duration; zero keeps them forever
	Retention time.Duration
}

// DefaultConfig returns the default scheduler configuration
func DefaultConfig() Config {
	return Config{NumJobs: 4, Admission: FIFO}
}

// Validate checks the configuration
func (c *Config) Validate() error {
	var errs []error
	if c.NumJobs < 1 {
		errs = append(errs, fmt.Errorf("numJobs must be positive, got %d", c.NumJobs))
	}
	if c.Retention < 0 {
		errs = append(errs, fmt.Errorf("retention must not be negative, got %v", c.Retention))
	}
	if _, err := NewPending(c.Admission); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
