package gate

import "github.com/viant/boque/model/task"

// Unit represents one unit of a resource pool with its last observed utilization
type Unit struct {
	Kind    string            `json:"kind"`
	ID      string            `json:"id"`
	Compute float64           `json:"compute"` //utilization percent
	Memory  float64           `json:"memory"`  //utilization percent
	Env     map[string]string `json:"env,omitempty"`
}

// IsIdle returns true when both utilizations are strictly below the thresholds
func (u *Unit) IsIdle(computeThreshold, memoryThreshold float64) bool {
	return u.Compute < computeThreshold && u.Memory < memoryThreshold
}

// Binding returns the resource binding handed to the executor
func (u *Unit) Binding() *task.Binding {
	return &task.Binding{
		Kind:   u.Kind,
		Unit:   u.ID,
		Values: map[string]string{u.Kind: u.ID},
		Env:    u.Env,
	}
}
