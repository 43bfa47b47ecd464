package messaging

import (
	"context"
	"errors"
	"time"
)

// Vendor represents the name of a messaging vendor
type Vendor string

const (
	// VendorMemory is an in-process channel
	VendorMemory Vendor = "memory"
	// VendorZMQ is a ZeroMQ REP socket
	VendorZMQ Vendor = "zmq"
)

var (
	// ErrClosed is returned when polling or replying on a closed channel
	ErrClosed = errors.New("messaging: channel closed")

	// ErrReplied is returned when a request is replied to more than once
	ErrReplied = errors.New("messaging: request already replied")
)

// Channel represents a synchronous request/reply endpoint. A request that was
// returned by Poll blocks its submitter until Reply is called.
type Channel interface {
	// Poll waits up to timeout for the next request; it returns nil, nil on timeout
	Poll(ctx context.Context, timeout time.Duration) (Request, error)

	// Close releases the endpoint
	Close() error
}

// Request represents an inbound message awaiting exactly one reply
type Request interface {
	// ID returns the request correlation id
	ID() string

	// Data returns the raw payload
	Data() []byte

	// Reply sends the reply text back to the submitter
	Reply(ctx context.Context, text string) error
}
