package boque

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/viant/boque/model/task"
	"github.com/viant/boque/service/dao"
	"github.com/viant/boque/service/dao/task/memory"
	"github.com/viant/boque/service/executor"
	"github.com/viant/boque/service/gate"
	"github.com/viant/boque/service/messaging"
	"github.com/viant/boque/service/messaging/zmq"
	"github.com/viant/boque/service/metrics"
	"github.com/viant/boque/service/scheduler"
	"github.com/viant/boque/service/server"
)

// Service represents the boque daemon
type Service struct {
	config     *Config
	channel    messaging.Channel
	gates      *gate.Registry
	executor   scheduler.Executor
	tasks      dao.Service[string, task.Task]
	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer
	closers    []io.Closer

	scheduler *scheduler.Service
	server    *server.Service
	mux       sync.Mutex
}

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	s.ensureBaseSetup()
	var err error
	if s.scheduler, err = scheduler.New(s.config.SchedulerConfig(), s.tasks, s.executor, s.gates); err != nil {
		return err
	}
	if err = s.registerer.Register(metrics.NewCollector(s.scheduler)); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}
	return nil
}

func (s *Service) ensureBaseSetup() {
	if s.executor == nil {
		s.executor = executor.New(s.config.LogFolder, executor.WithShell(s.config.Shell))
	}
	if s.gates == nil {
		gpuProbe := gate.NewGPUProbe(s.config.Gate.GPU.Timeout)
		s.closers = append(s.closers, gpuProbe)
		s.gates = gate.NewRegistry(
			gate.New(gate.KindGPU, gpuProbe, s.config.Gate.GPU),
			gate.New(gate.KindCPU, gate.NewCPUProbe(s.config.Gate.CPUSample), s.config.Gate.CPU),
		)
	}
	if s.tasks == nil {
		s.tasks = memory.New()
	}
	if s.registerer == nil {
		registry := prometheus.NewRegistry()
		s.registerer = registry
		s.gatherer = registry
	} else if gatherer, ok := s.registerer.(prometheus.Gatherer); ok {
		s.gatherer = gatherer
	}
}

// Config returns the effective configuration
func (s *Service) Config() *Config {
	return s.config
}

// Scheduler returns the scheduler
func (s *Service) Scheduler() *scheduler.Service {
	return s.scheduler
}

// Gatherer returns the metrics gatherer or nil when the registerer cannot be gathered
func (s *Service) Gatherer() prometheus.Gatherer {
	return s.gatherer
}

// Serve prepares the log folder, starts the gates and runs the server loop
// until ctx is done or Shutdown is called. Running tasks are signalled on exit.
func (s *Service) Serve(ctx context.Context) error {
	if initializer, ok := s.executor.(interface{ Init(context.Context) error }); ok {
		if err := initializer.Init(ctx); err != nil {
			return err
		}
	}
	if s.channel == nil {
		channel, err := zmq.Listen(ctx, s.config.Endpoint())
		if err != nil {
			return err
		}
		s.channel = channel
	}
	s.gates.Start(ctx)
	if addr := s.config.MetricsAddr(); addr != "" && s.gatherer != nil {
		go func() {
			if err := metrics.Serve(ctx, addr, s.gatherer); err != nil {
				log.Printf("%v", err)
			}
		}()
	}

	s.mux.Lock()
	s.server = server.New(s.channel, s.scheduler, s.config.ServerConfig())
	aServer := s.server
	s.mux.Unlock()
	log.Printf("boque listening on %v with %d job slots", s.config.Endpoint(), s.config.NumJobs)

	err := aServer.Serve(ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return errors.Join(err, s.shutdown())
}

func (s *Service) shutdown() error {
	s.gates.Shutdown()
	var errs []error
	if err := s.scheduler.Shutdown(context.Background()); err != nil {
		errs = append(errs, err)
	}
	if err := s.channel.Close(); err != nil {
		errs = append(errs, err)
	}
	for _, closer := range s.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Shutdown stops a running server loop
func (s *Service) Shutdown() {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.server != nil {
		s.server.Shutdown()
	}
}

// New creates a daemon service
func New(options ...Option) (*Service, error) {
	ret := &Service{}
	if err := ret.init(options); err != nil {
		return nil, err
	}
	return ret, nil
}
