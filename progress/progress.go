package progress

import (
	"sync"
	"time"
)

// Delta represents an incremental counter change emitted by the scheduler.
// The fields are signed and therefore can be either positive (increment) or
// negative (decrement).
type Delta struct {
	Pending   int
	Running   int
	Finished  int
	Failed    int
	Cancelled int
}

// Progress keeps aggregated task counters.  It is safe for concurrent use.
type Progress struct {
	StartedAt time.Time

	PendingTasks   int
	RunningTasks   int
	FinishedTasks  int
	FailedTasks    int
	CancelledTasks int

	mux sync.Mutex
}

// New creates a tracker
func New() *Progress {
	return &Progress{StartedAt: time.Now()}
}

// Update applies the supplied delta to the tracker.  It is safe to call from
// multiple goroutines.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}
	p.mux.Lock()
	defer p.mux.Unlock()
	p.PendingTasks += d.Pending
	p.RunningTasks += d.Running
	p.FinishedTasks += d.Finished
	p.FailedTasks += d.Failed
	p.CancelledTasks += d.Cancelled
}

// Snapshot returns a copy of the counters suitable for read-only inspection.
func (p *Progress) Snapshot() Snapshot {
	if p == nil {
		return Snapshot{}
	}
	p.mux.Lock()
	defer p.mux.Unlock()
	return Snapshot{
		StartedAt: p.StartedAt,
		Pending:   p.PendingTasks,
		Running:   p.RunningTasks,
		Finished:  p.FinishedTasks,
		Failed:    p.FailedTasks,
		Cancelled: p.CancelledTasks,
	}
}

// Snapshot represents a point-in-time copy of the counters
type Snapshot struct {
	StartedAt time.Time
	Pending   int
	Running   int
	Finished  int
	Failed    int
	Cancelled int
}
