package gate

import "context"

// Gate hands out units of one resource kind
type Gate interface {
	// Kind returns the resource kind, i.e. "gpu"
	Kind() string

	// Acquire returns an available unit and leases it, or false when none is available
	Acquire() (*Unit, bool)

	// Release returns a leased unit to the pool
	Release(unitID string)
}

// Probe queries the underlying resource pool
type Probe interface {
	Probe(ctx context.Context) ([]*Unit, error)
}

// ProbeFunc adapts a function to Probe
type ProbeFunc func(ctx context.Context) ([]*Unit, error)

// Probe calls f
func (f ProbeFunc) Probe(ctx context.Context) ([]*Unit, error) {
	return f(ctx)
}
