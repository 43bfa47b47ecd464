package zmq

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-zeromq/zmq4"
	"github.com/viant/boque/internal/idgen"
	"github.com/viant/boque/service/messaging"
)

// Request implements messaging.Request over a REP socket
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

// Reply queues the reply for the socket
func (r *Request) Reply(ctx context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.replied {
		return messaging.ErrReplied
	}
	r.replied = true
	select {
	case r.replyCh <- text:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Channel implements messaging.Channel on a ZeroMQ REP socket. A single
// goroutine owns the socket: it receives one request, waits for its reply
// and sends it before receiving the next one.
type Channel struct {
	endpoint    string
	socket      zmq4.Socket
	requests    chan *Request
	closed      chan struct{}
	failed      chan struct{}
	err         error
	retryDelay  time.Duration
	maxFailures int
	cancel      context.CancelFunc
	once        sync.Once
	wg          sync.WaitGroup
}

const (
	defaultRetryDelay  = 10 * time.Millisecond
	maxRetryDelay      = time.Second
	defaultMaxFailures = 10
)

// Listen binds a REP socket on endpoint, e.g. tcp://127.0.0.1:5555
func Listen(ctx context.Context, endpoint string) (*Channel, error) {
	socketCtx, cancel := context.WithCancel(ctx)
	socket := zmq4.NewRep(socketCtx)
	if err := socket.Listen(endpoint); err != nil {
		cancel()
		_ = socket.Close()
		return nil, fmt.Errorf("failed to listen on %v: %w", endpoint, err)
	}
	return newChannel(socketCtx, cancel, endpoint, socket), nil
}

func newChannel(ctx context.Context, cancel context.CancelFunc, endpoint string, socket zmq4.Socket) *Channel {
	ret := &Channel{
		endpoint:    endpoint,
		socket:      socket,
		requests:    make(chan *Request),
		closed:      make(chan struct{}),
		failed:      make(chan struct{}),
		retryDelay:  defaultRetryDelay,
		maxFailures: defaultMaxFailures,
		cancel:      cancel,
	}
	ret.wg.Add(1)
	go ret.serve(ctx)
	return ret
}

// Endpoint returns the bound endpoint
func (c *Channel) Endpoint() string {
	return c.endpoint
}

func (c *Channel) serve(ctx context.Context) {
	defer c.wg.Done()
	failures := 0
	delay := c.retryDelay
	for {
		msg, err := c.socket.Recv()
		if err != nil {
			if ctx.Err() != nil || c.isClosed() {
				return
			}
			failures++
			log.Printf("failed to receive on %v (%d/%d): %v", c.endpoint, failures, c.maxFailures, err)
			if failures >= c.maxFailures {
				c.err = fmt.Errorf("failed to receive on %v: %w", c.endpoint, err)
				close(c.failed)
				return
			}
			if !c.sleep(ctx, delay) {
				return
			}
			if delay *= 2; delay > maxRetryDelay {
				delay = maxRetryDelay
			}
			continue
		}
		failures = 0
		delay = c.retryDelay
		request := &Request{
			id:      idgen.New(),
			data:    bytes.Join(msg.Frames, nil),
			replyCh: make(chan string, 1),
		}
		select {
		case c.requests <- request:
		case <-c.closed:
			return
		case <-ctx.Done():
			return
		}
		var reply string
		select {
		case reply = <-request.replyCh:
		case <-c.closed:
			return
		case <-ctx.Done():
			return
		}
		if err = c.socket.Send(zmq4.NewMsgString(reply)); err != nil {
			if ctx.Err() != nil || c.isClosed() {
				return
			}
			log.Printf("failed to reply on %v: %v", c.endpoint, err)
		}
	}
}

func (c *Channel) sleep(ctx context.Context, delay time.Duration) bool {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-c.closed:
		return false
	case <-ctx.Done():
		return false
	}
}

func (c *Channel) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// Poll retrieves a single request. Once the socket keeps failing to receive,
// Poll returns the receive error.
func (c *Channel) Poll(ctx context.Context, timeout time.Duration) (messaging.Request, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case request := <-c.requests:
		return request, nil
	case <-c.failed:
		return nil, c.err
	case <-c.closed:
		return nil, messaging.ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, nil
	}
}

// Close closes the socket
func (c *Channel) Close() error {
	var err error
	c.once.Do(func() {
		close(c.closed)
		c.cancel()
		err = c.socket.Close()
		c.wg.Wait()
	})
	return err
}

var _ messaging.Channel = (*Channel)(nil)
