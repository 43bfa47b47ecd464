package gate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/viant/gosh"
	"github.com/viant/gosh/runner"
	"github.com/viant/gosh/runner/local"
)

// KindGPU identifies accelerator devices
const KindGPU = "gpu"

// GPUProbe queries device utilization with nvidia-smi through a local shell session
type GPUProbe struct {
	query   string
	timeout time.Duration
	session *gosh.Service
	mux     sync.Mutex
}

// NewGPUProbe creates a gpu probe
func NewGPUProbe(timeout time.Duration) *GPUProbe {
	return &GPUProbe{query: GPUQuery, timeout: timeout}
}

// Probe runs the utilization query and parses the report
func (p *GPUProbe) Probe(ctx context.Context) ([]*Unit, error) {
	p.mux.Lock()
	defer p.mux.Unlock()
	session, err := p.ensureSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	output, status, err := session.Run(ctx, p.query, runner.WithTimeout(int(p.timeout.Milliseconds())))
	if err != nil {
		p.closeSession()
		return nil, fmt.Errorf("failed to run %v: %w", p.query, err)
	}
	if status != 0 {
		return nil, fmt.Errorf("%v exited with %d: %s", p.query, status, output)
	}
	return ParseGPUReport([]byte(output)), nil
}

func (p *GPUProbe) ensureSession(ctx context.Context) (*gosh.Service, error) {
	if p.session != nil {
		return p.session, nil
	}
	session, err := gosh.New(ctx, local.New())
	if err != nil {
		return nil, err
	}
	p.session = session
	return session, nil
}

func (p *GPUProbe) closeSession() {
	if p.session != nil {
		_ = p.session.Close()
		p.session = nil
	}
}

// Close releases the shell session
func (p *GPUProbe) Close() error {
	p.mux.Lock()
	defer p.mux.Unlock()
	p.closeSession()
	return nil
}
