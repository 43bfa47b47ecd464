package scheduler

import (
	"fmt"

	"github.com/golang-collections/collections/queue"
	"github.com/golang-collections/collections/stack"
	"github.com/viant/boque/model/task"
)

const (
	// FIFO admits the oldest pending task first
	FIFO = "fifo"
	// LIFO admits the most recently scheduled task first
	LIFO = "lifo"
)

// Pending represents the ordered set of tasks waiting for admission
type Pending interface {
	Push(t *task.Task)
	Peek() *task.Task
	Pop() *task.Task
	Len() int
}

// NewPending creates a pending set for the admission policy
func NewPending(admission string) (Pending, error) {
	switch admission {
	case FIFO, "":
		return &fifo{queue: queue.New()}, nil
	case LIFO:
		return &lifo{stack: stack.New()}, nil
	}
	return nil, fmt.Errorf("unsupported admission policy: %v", admission)
}

type fifo struct {
	queue *queue.Queue
}

func (f *fifo) Push(t *task.Task) { f.queue.Enqueue(t) }

func (f *fifo) Peek() *task.Task { return asTask(f.queue.Peek()) }

func (f *fifo) Pop() *task.Task { return asTask(f.queue.Dequeue()) }

func (f *fifo) Len() int { return f.queue.Len() }

type lifo struct {
	stack *stack.Stack
}

func (l *lifo) Push(t *task.Task) { l.stack.Push(t) }

func (l *lifo) Peek() *task.Task { return asTask(l.stack.Peek()) }

func (l *lifo) Pop() *task.Task { return asTask(l.stack.Pop()) }

func (l *lifo) Len() int { return l.stack.Len() }

func asTask(v interface{}) *task.Task {
	if v == nil {
		return nil
	}
	return v.(*task.Task)
}
