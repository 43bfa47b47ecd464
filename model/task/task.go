package task

import (
	"os"
	"time"

	"github.com/viant/boque/internal/clock"
	"github.com/viant/boque/model/types"
)

// Process represents a launched child process. HasExited never blocks.
type Process interface {
	HasExited() (exitCode int, exited bool)
	Signal(sig os.Signal) error
	Pid() int
}

// Task represents a named shell command submitted to the daemon.
// Name, Command and Resource are immutable once the task is accepted; the
// remaining fields are mutated by the scheduler and executor only.
type Task struct {
	Name        string    `json:"name"`
	Command     string    `json:"cmd"`
	Resource    string    `json:"resource,omitempty"`
	State       State     `json:"state"`
	ExitCode    int       `json:"exitCode"`
	Error       string    `json:"error,omitempty"`
	Unit        string    `json:"unit,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
	StartedAt   time.Time `json:"startedAt,omitempty"`
	FinishedAt  time.Time `json:"finishedAt,omitempty"`

	process Process
}

// New creates a pending task
func New(name, command, resource string) *Task {
	return &Task{
		Name:        name,
		Command:     command,
		Resource:    resource,
		State:       StatePending,
		SubmittedAt: clock.Now(),
	}
}

// RequiresResource returns true if the task is gated on a named resource
func (t *Task) RequiresResource() bool {
	return t.Resource != ""
}

// Process returns the process handle or nil if the task was never launched
func (t *Task) Process() Process {
	return t.process
}

// Start records the process handle; a handle can be set only once.
func (t *Task) Start(process Process, unit string) error {
	if t.process != nil {
		return types.ErrAlreadyStarted
	}
	t.process = process
	t.Unit = unit
	t.State = StateRunning
	t.StartedAt = clock.Now()
	return nil
}

// Finish records the exit code of a reaped process
func (t *Task) Finish(exitCode int) {
	t.State = StateFinished
	t.ExitCode = exitCode
	t.FinishedAt = clock.Now()
}

// Fail marks the task as failed before or while launching
func (t *Task) Fail(err error) {
	t.State = StateFailed
	t.ExitCode = -1
	if err != nil {
		t.Error = err.Error()
	}
	t.FinishedAt = clock.Now()
}

// Cancel marks a pending task as cancelled
func (t *Task) Cancel() {
	t.State = StateCancelled
	t.FinishedAt = clock.Now()
}

// Clone returns a detached copy without the process handle
func (t *Task) Clone() *Task {
	ret := *t
	ret.process = nil
	return &ret
}
