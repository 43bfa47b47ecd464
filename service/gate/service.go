package gate

import (
	"context"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viant/boque/internal/clock"
)

// Snapshot represents the last probe result
type Snapshot struct {
	Units    []*Unit
	ProbedAt time.Time
	Err      error
}

// Service is an asynchronously refreshed Gate. A probe failure publishes an
// empty snapshot so that no unit is handed out until a probe succeeds again.
type Service struct {
	kind       string
	probe      Probe
	config     Config
	snapshot   atomic.Pointer[Snapshot]
	failures   int
	leases     map[string]bool
	mux        sync.Mutex
	shutdownCh chan struct{}
	once       sync.Once
}

// New creates a gate for the supplied resource kind
func New(kind string, probe Probe, config Config) *Service {
	ret := &Service{
		kind:       kind,
		probe:      probe,
		config:     config,
		leases:     make(map[string]bool),
		shutdownCh: make(chan struct{}),
	}
	ret.snapshot.Store(&Snapshot{})
	return ret
}

// Kind returns the resource kind
func (s *Service) Kind() string {
	return s.kind
}

// Start refreshes the snapshot until ctx is done or Shutdown is called
func (s *Service) Start(ctx context.Context) error {
	for {
		_ = s.Refresh(ctx)
		timer := time.NewTimer(s.nextDelay())
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-s.shutdownCh:
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// Refresh probes the pool once and publishes the result
func (s *Service) Refresh(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()
	units, err := s.probe.Probe(probeCtx)
	if err != nil {
		s.failures++
		if s.failures == 1 || s.failures%10 == 0 {
			log.Printf("%v gate probe failed (%d): %v", s.kind, s.failures, err)
		}
		s.snapshot.Store(&Snapshot{ProbedAt: clock.Now(), Err: err})
		return err
	}
	s.failures = 0
	s.snapshot.Store(&Snapshot{Units: units, ProbedAt: clock.Now()})
	return nil
}

// nextDelay returns the interval, growing exponentially with consecutive failures
func (s *Service) nextDelay() time.Duration {
	if s.failures == 0 {
		return s.config.Interval
	}
	delay := float64(s.config.Interval) * math.Pow(2, float64(s.failures))
	if max := float64(s.config.MaxBackoff); delay > max || math.IsInf(delay, 1) {
		delay = max
	}
	return time.Duration(delay)
}

// Snapshot returns the last published snapshot
func (s *Service) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// Acquire returns the first idle unit that is not leased
func (s *Service) Acquire() (*Unit, bool) {
	snapshot := s.snapshot.Load()
	s.mux.Lock()
	defer s.mux.Unlock()
	for _, unit := range snapshot.Units {
		if s.leases[unit.ID] {
			continue
		}
		if !unit.IsIdle(s.config.ComputeThreshold, s.config.MemoryThreshold) {
			continue
		}
		s.leases[unit.ID] = true
		return unit, true
	}
	return nil, false
}

// Release returns a leased unit
func (s *Service) Release(unitID string) {
	s.mux.Lock()
	defer s.mux.Unlock()
	delete(s.leases, unitID)
}

// Leased returns the number of leased units
func (s *Service) Leased() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return len(s.leases)
}

// Shutdown stops the refresh loop
func (s *Service) Shutdown() {
	s.once.Do(func() { close(s.shutdownCh) })
}
