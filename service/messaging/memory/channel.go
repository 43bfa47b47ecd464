package memory

import (
	"context"
	"sync"
	"time"

	"github.com/viant/boque/internal/idgen"
	"github.com/viant/boque/service/messaging"
)

// Config for memory channel implementation
type Config struct {
	Buffer int
}

// DefaultConfig returns a standard configuration for memory channel
func DefaultConfig() Config {
	return Config{Buffer: 100}
}

// Request implements messaging.Request for an in-process submitter
type Request struct {
	id      string
	data    []byte
	replyCh chan string
	mu      sync.Mutex
	replied bool
}

// ID returns request id
func (r *Request) ID() string {
	return r.id
}

// Data returns request payload
func (r *Request) Data() []byte {
	return r.data
}

// Reply hands the text to the waiting submitter
func (r *Request) Reply(ctx context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.replied {
		return messaging.ErrReplied
	}
	r.replied = true
	r.replyCh <- text
	return nil
}

// Channel implements an in-memory messaging.Channel
type Channel struct {
	requests chan *Request
	closed   chan struct{}
	once     sync.Once
}

// New creates a new in-memory channel
func New(config Config) *Channel {
	if config.Buffer <= 0 {
		config.Buffer = DefaultConfig().Buffer
	}
	return &Channel{
		requests: make(chan *Request, config.Buffer),
		closed:   make(chan struct{}),
	}
}

// Send submits data and waits for the reply
func (c *Channel) Send(ctx context.Context, data []byte) (string, error) {
	request := &Request{
		id:      idgen.New(),
		data:    data,
		replyCh: make(chan string, 1),
	}
	select {
	case <-c.closed:
		return "", messaging.ErrClosed
	default:
	}
	select {
	case <-c.closed:
		return "", messaging.ErrClosed
	case <-ctx.Done():
		return "", ctx.Err()
	case c.requests <- request:
	}
	select {
	case reply := <-request.replyCh:
		return reply, nil
	case <-c.closed:
		return "", messaging.ErrClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Poll retrieves a single request
func (c *Channel) Poll(ctx context.Context, timeout time.Duration) (messaging.Request, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case request := <-c.requests:
		return request, nil
	case <-c.closed:
		return nil, messaging.ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, nil
	}
}

// Size returns the number of requests waiting to be polled
func (c *Channel) Size() int {
	return len(c.requests)
}

// Close closes the channel
func (c *Channel) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

var _ messaging.Channel = (*Channel)(nil)
