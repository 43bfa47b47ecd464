package progress

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgress_Update(t *testing.T) {
	p := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Update(Delta{Pending: 1})
			p.Update(Delta{Pending: -1, Running: 1})
			p.Update(Delta{Running: -1, Finished: 1})
		}()
	}
	wg.Wait()
	snapshot := p.Snapshot()
	assert.Equal(t, 0, snapshot.Pending)
	assert.Equal(t, 0, snapshot.Running)
	assert.Equal(t, 50, snapshot.Finished)

	var nilProgress *Progress
	nilProgress.Update(Delta{Pending: 1})
	assert.Equal(t, Snapshot{}, nilProgress.Snapshot())
}
