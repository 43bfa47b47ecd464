package memory

import (
	"github.com/viant/boque/model/task"
	"github.com/viant/boque/service/dao"
	"github.com/viant/boque/service/dao/criteria"
	"github.com/viant/boque/service/dao/store"
)

// Service implements an in-memory, thread-safe task registry keyed by name.
type Service struct {
	*store.MemoryStore[string, task.Task]
}

var _ dao.Service[string, task.Task] = (*Service)(nil)

// New creates a task registry
func New() *Service {
	memoryStore := store.NewMemoryStore[string, task.Task](func(t *task.Task) string {
		return t.Name
	}).WithFilter(func(t *task.Task, parameters []*dao.Parameter) bool {
		return criteria.FilterByState(string(t.State), parameters)
	})
	return &Service{MemoryStore: memoryStore}
}
