package gate

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// KindCPU identifies the host as a single exclusive unit
const KindCPU = "cpu"

// CPUProbe reports host cpu and memory utilization as one unit
type CPUProbe struct {
	sample time.Duration
}

// NewCPUProbe creates a host probe averaging cpu usage over sample
func NewCPUProbe(sample time.Duration) *CPUProbe {
	return &CPUProbe{sample: sample}
}

// Probe samples host utilization
func (p *CPUProbe) Probe(ctx context.Context) ([]*Unit, error) {
	percents, err := cpu.PercentWithContext(ctx, p.sample, false)
	if err != nil {
		return nil, fmt.Errorf("failed to read cpu usage: %w", err)
	}
	if len(percents) == 0 {
		return nil, fmt.Errorf("cpu usage was empty")
	}
	memory, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read memory usage: %w", err)
	}
	return []*Unit{{Kind: KindCPU, ID: "0", Compute: percents[0], Memory: memory.UsedPercent}}, nil
}
