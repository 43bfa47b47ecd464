package task

// State represents the lifecycle state of a task
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateFinished  State = "finished"  //process exited, see ExitCode
	StateFailed    State = "failed"    //process could not be spawned
	StateCancelled State = "cancelled" //removed before admission
)

// IsTerminal returns true when no further transition is possible
func (s State) IsTerminal() bool {
	switch s {
	case StateFinished, StateFailed, StateCancelled:
		return true
	}
	return false
}
