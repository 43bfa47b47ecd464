package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/viant/boque/internal/clock"
	"github.com/viant/boque/model/task"
	"github.com/viant/boque/service/messaging"
	"github.com/viant/boque/service/scheduler"
	"github.com/viant/boque/tracing"
)

// ReplyOK is sent for an accepted task
const ReplyOK = "OK"

// Scheduler represents the scheduling operations the loop drives
type Scheduler interface {
	Schedule(ctx context.Context, aTask *task.Task) error
	Reconcile(ctx context.Context)
	Stats() scheduler.Stats
	Prune(ctx context.Context) int
}

// Service represents the server loop
type Service struct {
	config     Config
	channel    messaging.Channel
	scheduler  Scheduler
	lastStats  time.Time
	shutdownCh chan struct{}
	once       sync.Once
}

// New creates a server loop
func New(channel messaging.Channel, scheduler Scheduler, config Config) *Service {
	return &Service{
		config:     config,
		channel:    channel,
		scheduler:  scheduler,
		shutdownCh: make(chan struct{}),
	}
}

// Serve runs the loop until ctx is done, Shutdown is called or the channel is closed
func (s *Service) Serve(ctx context.Context) error {
	s.logStats(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.shutdownCh:
			return nil
		default:
		}
		if err := s.Tick(ctx); err != nil {
			if errors.Is(err, messaging.ErrClosed) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
	}
}

// Tick runs a single loop iteration
func (s *Service) Tick(ctx context.Context) error {
	request, err := s.channel.Poll(ctx, s.config.PollTimeout)
	if err != nil {
		return err
	}
	if request != nil {
		s.handle(ctx, request)
	}
	s.scheduler.Reconcile(ctx)
	if clock.Since(s.lastStats) >= s.config.StatsInterval {
		s.logStats(ctx)
	}
	return nil
}

// handle replies to request exactly once
func (s *Service) handle(ctx context.Context, request messaging.Request) {
	spanCtx, span := tracing.StartSpan(ctx, "server.handle", "SERVER")
	span.WithAttributes(map[string]string{"request.id": request.ID()})
	var err error
	reply := ReplyOK
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
			reply = err.Error()
		}
		if replyErr := request.Reply(ctx, reply); replyErr != nil {
			log.Printf("failed to reply to request %v: %v", request.ID(), replyErr)
		}
		tracing.EndSpan(span, err)
	}()
	if err = s.dispatch(spanCtx, request.Data()); err != nil {
		reply = err.Error()
	}
}

func (s *Service) dispatch(ctx context.Context, data []byte) error {
	aRequest, err := task.DecodeRequest(data)
	if err != nil {
		return err
	}
	return s.scheduler.Schedule(ctx, aRequest.Task())
}

func (s *Service) logStats(ctx context.Context) {
	s.lastStats = clock.Now()
	stats := s.scheduler.Stats()
	log.Printf("scheduler stats: running: %d - pending: %d - finished: %d - failed: %d",
		stats.Running, stats.Pending, stats.Finished, stats.Failed)
	if evicted := s.scheduler.Prune(ctx); evicted > 0 {
		log.Printf("evicted %d expired task names", evicted)
	}
}

// Shutdown stops the loop
func (s *Service) Shutdown() {
	s.once.Do(func() { close(s.shutdownCh) })
}
