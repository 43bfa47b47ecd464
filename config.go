package boque

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/viant/afs/storage"
	"github.com/viant/boque/service/executor"
	"github.com/viant/boque/service/gate"
	"github.com/viant/boque/service/meta"
	"github.com/viant/boque/service/scheduler"
	"github.com/viant/boque/service/server"
)

// Config is a serialisable representation of the daemon configuration. It
// can be populated from YAML or JSON; missing fields keep their defaults.
type Config struct {
	Host      string `json:"host" yaml:"host"`
	Port      int    `json:"port" yaml:"port"`
	NumJobs   int    `json:"numJobs" yaml:"numJobs"`
	LogFolder string `json:"logFolder" yaml:"logFolder"`
	Admission string `json:"admission" yaml:"admission"`
	Shell     string `json:"shell" yaml:"shell"`

	PollTimeout   time.Duration `json:"pollTimeout" yaml:"pollTimeout"`
	StatsInterval time.Duration `json:"statsInterval" yaml:"statsInterval"`
	// NameRetention evicts names of completed tasks; zero keeps them forever
	NameRetention time.Duration `json:"nameRetention" yaml:"nameRetention"`

	MetricsPort int `json:"metricsPort" yaml:"metricsPort"`

	Gate GateConfig `json:"gate" yaml:"gate"`
}

// GateConfig groups resource gate settings
type GateConfig struct {
	GPU gate.Config `json:"gpu" yaml:"gpu"`
	CPU gate.Config `json:"cpu" yaml:"cpu"`
	// CPUSample is the window host cpu usage is averaged over
	CPUSample time.Duration `json:"cpuSample" yaml:"cpuSample"`
}

// DefaultConfig returns a Config populated with default values
func DefaultConfig() *Config {
	return &Config{
		Host:          "127.0.0.1",
		Port:          5555,
		NumJobs:       scheduler.DefaultConfig().NumJobs,
		LogFolder:     "./logs",
		Admission:     scheduler.FIFO,
		Shell:         executor.DefaultShell,
		PollTimeout:   server.DefaultConfig().PollTimeout,
		StatsInterval: server.DefaultConfig().StatsInterval,
		Gate: GateConfig{
			GPU:       gate.DefaultConfig(),
			CPU:       gate.DefaultCPUConfig(),
			CPUSample: time.Second,
		},
	}
}

// LoadConfig reads a YAML or JSON config from URL over defaults; options
// are passed to the afs download, e.g. an embed.FS
func LoadConfig(ctx context.Context, URL string, options ...storage.Option) (*Config, error) {
	ret := DefaultConfig()
	if err := meta.New(nil).Load(ctx, URL, ret, options...); err != nil {
		return nil, err
	}
	return ret, ret.Validate()
}

// Endpoint returns the listening endpoint, e.g. tcp://127.0.0.1:5555
func (c *Config) Endpoint() string {
	return "tcp://" + net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// MetricsAddr returns metrics listener address or empty when disabled
func (c *Config) MetricsAddr() string {
	if c.MetricsPort <= 0 {
		return ""
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(c.MetricsPort))
}

// SchedulerConfig returns scheduler settings
func (c *Config) SchedulerConfig() scheduler.Config {
	return scheduler.Config{NumJobs: c.NumJobs, Admission: c.Admission, Retention: c.NameRetention}
}

// ServerConfig returns server loop settings
func (c *Config) ServerConfig() server.Config {
	return server.Config{PollTimeout: c.PollTimeout, StatsInterval: c.StatsInterval}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be in 1..65535, got %d", c.Port))
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		errs = append(errs, fmt.Errorf("metricsPort must be in 0..65535, got %d", c.MetricsPort))
	}
	if c.LogFolder == "" {
		errs = append(errs, fmt.Errorf("logFolder was empty"))
	}
	if c.Shell == "" {
		errs = append(errs, fmt.Errorf("shell was empty"))
	}
	schedulerConfig := c.SchedulerConfig()
	if err := schedulerConfig.Validate(); err != nil {
		errs = append(errs, err)
	}
	serverConfig := c.ServerConfig()
	if err := serverConfig.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Gate.GPU.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("gate.gpu: %w", err))
	}
	if err := c.Gate.CPU.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("gate.cpu: %w", err))
	}
	if c.Gate.CPUSample <= 0 {
		errs = append(errs, fmt.Errorf("gate.cpuSample must be > 0"))
	}
	return errors.Join(errs...)
}
