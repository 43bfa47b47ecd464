package boque

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/viant/boque/model/task"
	"github.com/viant/boque/service/dao"
	"github.com/viant/boque/service/gate"
	"github.com/viant/boque/service/messaging"
	"github.com/viant/boque/service/scheduler"
	"github.com/viant/boque/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the Service
type Option func(s *Service)

// WithConfig sets the configuration
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithChannel sets the request channel; by default a zmq REP socket is bound on Config.Endpoint
func WithChannel(channel messaging.Channel) Option {
	return func(s *Service) {
		s.channel = channel
	}
}

// WithGates registers resource gates replacing the default gpu and cpu gates
func WithGates(gates ...gate.Gate) Option {
	return func(s *Service) {
		s.gates = gate.NewRegistry(gates...)
	}
}

// WithExecutor sets the task executor
func WithExecutor(executor scheduler.Executor) Option {
	return func(s *Service) {
		s.executor = executor
	}
}

// WithTaskDAO sets the task registry
func WithTaskDAO(tasks dao.Service[string, task.Task]) Option {
	return func(s *Service) {
		s.tasks = tasks
	}
}

// WithMetricsRegisterer sets the registerer the scheduler collector is added to
func WithMetricsRegisterer(registerer prometheus.Registerer) Option {
	return func(s *Service) {
		s.registerer = registerer
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile is empty the
// stdout exporter is used; otherwise traces are written to the supplied file path.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
