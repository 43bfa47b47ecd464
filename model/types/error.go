package types

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the scheduler, executor and server. Callers
// detect conditions with errors.Is; the wrapped message is what a submitter
// sees in the reply.
var (
	// ErrAlreadyExists is returned when a task name is already known.
	ErrAlreadyExists = errors.New("already exists")

	// ErrMalformedRequest is returned when an inbound message cannot be decoded
	// into a task.
	ErrMalformedRequest = errors.New("invalid request")

	// ErrUnknownResource is returned when a task requests a resource kind no
	// gate is registered for.
	ErrUnknownResource = errors.New("unknown resource")

	// ErrSpawn is returned when the task process could not be created.
	ErrSpawn = errors.New("spawn failed")

	// ErrTemplate is returned when a command placeholder has no binding.
	ErrTemplate = errors.New("template error")

	// ErrAlreadyStarted is returned when a process handle is set twice.
	ErrAlreadyStarted = errors.New("already started")

	// ErrNotFound is returned when a task name is not known.
	ErrNotFound = errors.New("not found")
)

// NewAlreadyExistsError returns "<name> already exists".
func NewAlreadyExistsError(name string) error {
	return fmt.Errorf("%v %w", name, ErrAlreadyExists)
}

// NewMalformedRequestError wraps a decoding or validation failure.
func NewMalformedRequestError(cause error) error {
	return fmt.Errorf("%w: %v", ErrMalformedRequest, cause)
}

// NewUnknownResourceError returns "unknown resource <kind>".
func NewUnknownResourceError(kind string) error {
	return fmt.Errorf("%w %v", ErrUnknownResource, kind)
}

// NewNotFoundError returns "task <name> not found".
func NewNotFoundError(name string) error {
	return fmt.Errorf("task %v %w", name, ErrNotFound)
}
