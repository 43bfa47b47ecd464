package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"syscall"

	"github.com/viant/boque/internal/clock"
	"github.com/viant/boque/model/task"
	"github.com/viant/boque/model/types"
	"github.com/viant/boque/progress"
	"github.com/viant/boque/service/dao"
	"github.com/viant/boque/service/dao/criteria"
	"github.com/viant/boque/service/gate"
	"github.com/viant/boque/tracing"
)

// Executor launches a task with the assigned resource binding
type Executor interface {
	Execute(ctx context.Context, aTask *task.Task, binding *task.Binding) error
}

// Gates resolves a resource kind to its gate
type Gates interface {
	Lookup(kind string) (gate.Gate, bool)
}

// Stats represents scheduler counters
type Stats struct {
	Running   int
	Pending   int
	Finished  int
	Failed    int
	Cancelled int
}

// Service schedules tasks
type Service struct {
	config   Config
	executor Executor
	gates    Gates
	tasks    dao.Service[string, task.Task]
	progress *progress.Progress

	mux     sync.Mutex
	pending Pending
	running []*task.Task
}

// New creates a scheduler; gates may be nil when no resource is configured
func New(config Config, tasks dao.Service[string, task.Task], executor Executor, gates Gates) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	pending, err := NewPending(config.Admission)
	if err != nil {
		return nil, err
	}
	return &Service{
		config:   config,
		executor: executor,
		gates:    gates,
		tasks:    tasks,
		progress: progress.New(),
		pending:  pending,
	}, nil
}

// Schedule accepts a new task. Names are unique for the lifetime of the
// registry; a repeated name is rejected even after the first task finished.
func (s *Service) Schedule(ctx context.Context, aTask *task.Task) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	existing, err := s.tasks.Load(ctx, aTask.Name)
	if err != nil && !errors.Is(err, dao.ErrNotFound) {
		return err
	}
	if existing != nil {
		return types.NewAlreadyExistsError(aTask.Name)
	}
	if aTask.RequiresResource() {
		if _, ok := s.lookupGate(aTask.Resource); !ok {
			return types.NewUnknownResourceError(aTask.Resource)
		}
	}
	aTask.State = task.StatePending
	if err = s.tasks.Save(ctx, aTask); err != nil {
		return err
	}
	s.pending.Push(aTask)
	s.progress.Update(progress.Delta{Pending: 1})
	log.Printf("schedule new task %v", aTask.Name)
	return nil
}

func (s *Service) lookupGate(kind string) (gate.Gate, bool) {
	if s.gates == nil {
		return nil, false
	}
	return s.gates.Lookup(kind)
}

// Reconcile reaps the first exited task and admits at most one pending task
func (s *Service) Reconcile(ctx context.Context) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.reap()
	s.admit(ctx)
}

func (s *Service) reap() {
	for i, aTask := range s.running {
		exitCode, exited := aTask.Process().HasExited()
		if !exited {
			continue
		}
		s.running = append(s.running[:i], s.running[i+1:]...)
		aTask.Finish(exitCode)
		s.release(aTask.Resource, aTask.Unit)
		s.progress.Update(progress.Delta{Running: -1, Finished: 1})
		log.Printf("task %v finished with exit code %d", aTask.Name, exitCode)
		return
	}
}

func (s *Service) admit(ctx context.Context) {
	if len(s.running) >= s.config.NumJobs {
		return
	}
	candidate := s.head()
	if candidate == nil {
		return
	}
	binding := &task.Binding{}
	if candidate.RequiresResource() {
		aGate, ok := s.lookupGate(candidate.Resource)
		if !ok {
			s.pending.Pop()
			s.fail(candidate, types.NewUnknownResourceError(candidate.Resource))
			return
		}
		unit, ok := aGate.Acquire()
		if !ok {
			return
		}
		binding = unit.Binding()
	}
	s.pending.Pop()

	spanCtx, span := tracing.StartSpan(ctx, "scheduler.launch", "INTERNAL")
	span.WithAttributes(map[string]string{"task.name": candidate.Name, "task.unit": binding.Unit})
	err := s.executor.Execute(spanCtx, candidate, binding)
	tracing.EndSpan(span, err)
	if err != nil {
		s.release(candidate.Resource, binding.Unit)
		s.fail(candidate, err)
		return
	}
	if candidate.Process() == nil {
		s.release(candidate.Resource, binding.Unit)
		s.fail(candidate, fmt.Errorf("%w: no process for %v", types.ErrSpawn, candidate.Name))
		return
	}
	s.running = append(s.running, candidate)
	s.progress.Update(progress.Delta{Pending: -1, Running: 1})
	log.Printf("execute task %v", candidate.Name)
}

// head returns the next admissible task, dropping cancelled ones
func (s *Service) head() *task.Task {
	for s.pending.Len() > 0 {
		candidate := s.pending.Peek()
		if candidate.State == task.StatePending {
			return candidate
		}
		s.pending.Pop()
	}
	return nil
}

func (s *Service) fail(aTask *task.Task, err error) {
	aTask.Fail(err)
	s.progress.Update(progress.Delta{Pending: -1, Failed: 1})
	log.Printf("task %v failed: %v", aTask.Name, err)
}

func (s *Service) release(kind, unit string) {
	if kind == "" || unit == "" {
		return
	}
	if aGate, ok := s.lookupGate(kind); ok {
		aGate.Release(unit)
	}
}

// Stats returns the task counters
func (s *Service) Stats() Stats {
	snapshot := s.progress.Snapshot()
	return Stats{
		Running:   snapshot.Running,
		Pending:   snapshot.Pending,
		Finished:  snapshot.Finished,
		Failed:    snapshot.Failed,
		Cancelled: snapshot.Cancelled,
	}
}

// Lookup returns a copy of the named task
func (s *Service) Lookup(ctx context.Context, name string) (*task.Task, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	aTask, err := s.tasks.Load(ctx, name)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil, types.NewNotFoundError(name)
		}
		return nil, err
	}
	return aTask.Clone(), nil
}

// Cancel withdraws a pending task or sends SIGTERM to a running one. A
// signalled task is reaped as finished with the signal exit code.
func (s *Service) Cancel(ctx context.Context, name string) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	aTask, err := s.tasks.Load(ctx, name)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return types.NewNotFoundError(name)
		}
		return err
	}
	switch aTask.State {
	case task.StatePending:
		aTask.Cancel()
		s.progress.Update(progress.Delta{Pending: -1, Cancelled: 1})
		log.Printf("task %v cancelled", name)
	case task.StateRunning:
		if err = aTask.Process().Signal(syscall.SIGTERM); err != nil {
			return fmt.Errorf("failed to signal task %v: %w", name, err)
		}
		log.Printf("task %v signalled", name)
	}
	return nil
}

// Prune evicts terminal tasks older than the configured retention and
// returns the number of evicted names
func (s *Service) Prune(ctx context.Context) int {
	if s.config.Retention <= 0 {
		return 0
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	terminal, err := s.tasks.List(ctx, dao.NewParameter(criteria.StateParameter,
		string(task.StateFinished), string(task.StateFailed), string(task.StateCancelled)))
	if err != nil {
		log.Printf("failed to list tasks: %v", err)
		return 0
	}
	cutoff := clock.Now().Add(-s.config.Retention)
	evicted := 0
	for _, aTask := range terminal {
		if aTask.FinishedAt.After(cutoff) {
			continue
		}
		if err = s.tasks.Delete(ctx, aTask.Name); err == nil {
			evicted++
		}
	}
	return evicted
}

// Shutdown sends SIGTERM to every running task
func (s *Service) Shutdown(ctx context.Context) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	var errs []error
	for _, aTask := range s.running {
		if err := aTask.Process().Signal(syscall.SIGTERM); err != nil {
			errs = append(errs, fmt.Errorf("failed to signal task %v: %w", aTask.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Running returns the number of running tasks
func (s *Service) Running() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return len(s.running)
}
