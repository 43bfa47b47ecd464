package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/boque/internal/clock"
	"github.com/viant/boque/model/task"
	"github.com/viant/boque/model/types"
	"github.com/viant/boque/service/dao/task/memory"
	"github.com/viant/boque/service/executor"
	"github.com/viant/boque/service/gate"
)

type fakeProcess struct {
	mux      sync.Mutex
	exitCode int
	exited   bool
	signals  []os.Signal
}

func (p *fakeProcess) HasExited() (int, bool) {
	p.mux.Lock()
	defer p.mux.Unlock()
	return p.exitCode, p.exited
}

func (p *fakeProcess) Signal(sig os.Signal) error {
	p.mux.Lock()
	defer p.mux.Unlock()
	p.signals = append(p.signals, sig)
	return nil
}

func (p *fakeProcess) Pid() int { return 1 }

func (p *fakeProcess) exit(code int) {
	p.mux.Lock()
	defer p.mux.Unlock()
	p.exitCode = code
	p.exited = true
}

type fakeExecutor struct {
	processes map[string]*fakeProcess
	bindings  map[string]*task.Binding
	launched  []string
	err       error
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{processes: map[string]*fakeProcess{}, bindings: map[string]*task.Binding{}}
}

func (e *fakeExecutor) Execute(ctx context.Context, aTask *task.Task, binding *task.Binding) error {
	if e.err != nil {
		return e.err
	}
	process := &fakeProcess{}
	e.processes[aTask.Name] = process
	e.bindings[aTask.Name] = binding
	e.launched = append(e.launched, aTask.Name)
	return aTask.Start(process, binding.Unit)
}

func newScheduler(t *testing.T, config Config, executor Executor, gates ...gate.Gate) *Service {
	srv, err := New(config, memory.New(), executor, gate.NewRegistry(gates...))
	require.NoError(t, err)
	return srv
}

func newGate(t *testing.T, kind string, units ...*gate.Unit) *gate.Service {
	config := gate.DefaultConfig()
	srv := gate.New(kind, gate.ProbeFunc(func(ctx context.Context) ([]*gate.Unit, error) {
		return units, nil
	}), config)
	require.NoError(t, srv.Refresh(context.Background()))
	return srv
}

func TestService_Schedule(t *testing.T) {
	ctx := context.Background()
	srv := newScheduler(t, DefaultConfig(), newFakeExecutor(), newGate(t, gate.KindGPU))

	testCases := []struct {
		description string
		task        *task.Task
		expectErr   error
		expectText  string
	}{
		{description: "accepted", task: task.New("t1", "true", "")},
		{description: "duplicate", task: task.New("t1", "false", ""), expectErr: types.ErrAlreadyExists, expectText: "t1 already exists"},
		{description: "known resource", task: task.New("t2", "true", gate.KindGPU)},
		{description: "unknown resource", task: task.New("t3", "true", "fpga"), expectErr: types.ErrUnknownResource, expectText: "unknown resource fpga"},
		{description: "rejected name stays free", task: task.New("t3", "true", "")},
	}
	for _, testCase := range testCases {
		err := srv.Schedule(ctx, testCase.task)
		if testCase.expectErr == nil {
			assert.NoError(t, err, testCase.description)
			continue
		}
		assert.ErrorIs(t, err, testCase.expectErr, testCase.description)
		assert.EqualValues(t, testCase.expectText, err.Error(), testCase.description)
	}
	assert.Equal(t, Stats{Pending: 3}, srv.Stats())
}

func TestService_Reconcile_ConcurrencyCap(t *testing.T) {
	ctx := context.Background()
	exec := newFakeExecutor()
	srv := newScheduler(t, Config{NumJobs: 2, Admission: FIFO}, exec)
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, srv.Schedule(ctx, task.New(name, "sleep 1", "")))
	}
	for i := 0; i < 5; i++ {
		srv.Reconcile(ctx)
	}
	assert.Equal(t, []string{"a", "b"}, exec.launched)
	assert.Equal(t, Stats{Running: 2, Pending: 1}, srv.Stats())

	exec.processes["b"].exit(7)
	srv.Reconcile(ctx)
	assert.Equal(t, []string{"a", "b", "c"}, exec.launched)
	assert.Equal(t, Stats{Running: 2, Finished: 1}, srv.Stats())

	b, err := srv.Lookup(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, task.StateFinished, b.State)
	assert.Equal(t, 7, b.ExitCode)

	err = srv.Schedule(ctx, task.New("b", "true", ""))
	assert.ErrorIs(t, err, types.ErrAlreadyExists, "finished names stay reserved")
}

func TestService_Reconcile_Admission(t *testing.T) {
	testCases := []struct {
		description string
		admission   string
		expected    []string
	}{
		{description: "fifo", admission: FIFO, expected: []string{"a", "b", "c"}},
		{description: "lifo", admission: LIFO, expected: []string{"c", "b", "a"}},
	}
	for _, testCase := range testCases {
		ctx := context.Background()
		exec := newFakeExecutor()
		srv := newScheduler(t, Config{NumJobs: 1, Admission: testCase.admission}, exec)
		for _, name := range []string{"a", "b", "c"} {
			require.NoError(t, srv.Schedule(ctx, task.New(name, "true", "")))
		}
		for len(exec.launched) < 3 {
			srv.Reconcile(ctx)
			exec.processes[exec.launched[len(exec.launched)-1]].exit(0)
		}
		srv.Reconcile(ctx)
		assert.Equal(t, testCase.expected, exec.launched, testCase.description)
		assert.Equal(t, Stats{Finished: 3}, srv.Stats(), testCase.description)
	}
}

func TestService_Reconcile_Gated(t *testing.T) {
	ctx := context.Background()
	exec := newFakeExecutor()
	gpu := newGate(t, gate.KindGPU,
		&gate.Unit{Kind: gate.KindGPU, ID: "0", Compute: 90, Memory: 50},
		&gate.Unit{Kind: gate.KindGPU, ID: "1", Compute: 0, Memory: 1, Env: map[string]string{"CUDA_VISIBLE_DEVICES": "1"}},
	)
	srv := newScheduler(t, Config{NumJobs: 4, Admission: FIFO}, exec, gpu)
	require.NoError(t, srv.Schedule(ctx, task.New("g1", "train --gpu {{gpu}}", gate.KindGPU)))
	require.NoError(t, srv.Schedule(ctx, task.New("g2", "train --gpu {{gpu}}", gate.KindGPU)))
	require.NoError(t, srv.Schedule(ctx, task.New("plain", "true", "")))

	srv.Reconcile(ctx)
	assert.Equal(t, []string{"g1"}, exec.launched)
	assert.EqualValues(t, "1", exec.bindings["g1"].Unit)
	assert.EqualValues(t, map[string]string{"gpu": "1"}, exec.bindings["g1"].Values)

	for i := 0; i < 3; i++ {
		srv.Reconcile(ctx)
	}
	assert.Equal(t, []string{"g1"}, exec.launched, "head of line waits for an idle unit")
	assert.Equal(t, Stats{Running: 1, Pending: 2}, srv.Stats())

	exec.processes["g1"].exit(0)
	srv.Reconcile(ctx)
	assert.Equal(t, []string{"g1", "g2"}, exec.launched)
	assert.Equal(t, 1, gpu.Leased())
	srv.Reconcile(ctx)
	assert.Equal(t, []string{"g1", "g2", "plain"}, exec.launched)
}

func TestService_Reconcile_SpawnFailure(t *testing.T) {
	ctx := context.Background()
	exec := newFakeExecutor()
	exec.err = types.ErrSpawn
	gpu := newGate(t, gate.KindGPU, &gate.Unit{Kind: gate.KindGPU, ID: "0"})
	srv := newScheduler(t, DefaultConfig(), exec, gpu)
	require.NoError(t, srv.Schedule(ctx, task.New("x", "true", gate.KindGPU)))

	srv.Reconcile(ctx)
	assert.Equal(t, Stats{Failed: 1}, srv.Stats())
	assert.Equal(t, 0, gpu.Leased(), "unit is returned on spawn failure")
	x, err := srv.Lookup(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, task.StateFailed, x.State)
	assert.True(t, errors.Is(srv.Schedule(ctx, task.New("x", "true", "")), types.ErrAlreadyExists))
}

func TestService_Cancel(t *testing.T) {
	ctx := context.Background()
	exec := newFakeExecutor()
	srv := newScheduler(t, Config{NumJobs: 1, Admission: FIFO}, exec)
	require.NoError(t, srv.Schedule(ctx, task.New("a", "sleep 10", "")))
	require.NoError(t, srv.Schedule(ctx, task.New("b", "sleep 10", "")))
	srv.Reconcile(ctx)

	require.NoError(t, srv.Cancel(ctx, "b"))
	require.NoError(t, srv.Cancel(ctx, "a"))
	assert.Len(t, exec.processes["a"].signals, 1)
	assert.ErrorIs(t, srv.Cancel(ctx, "z"), types.ErrNotFound)

	exec.processes["a"].exit(143)
	srv.Reconcile(ctx)
	srv.Reconcile(ctx)
	assert.Equal(t, []string{"a"}, exec.launched, "cancelled pending task is never launched")
	assert.Equal(t, Stats{Finished: 1, Cancelled: 1}, srv.Stats())
}

func TestService_Prune(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock.NowFunc = func() time.Time { return now }
	defer func() { clock.NowFunc = time.Now }()

	exec := newFakeExecutor()
	srv := newScheduler(t, Config{NumJobs: 1, Admission: FIFO, Retention: time.Hour}, exec)
	require.NoError(t, srv.Schedule(ctx, task.New("old", "true", "")))
	srv.Reconcile(ctx)
	exec.processes["old"].exit(0)
	srv.Reconcile(ctx)

	now = now.Add(30 * time.Minute)
	assert.Equal(t, 0, srv.Prune(ctx))
	now = now.Add(31 * time.Minute)
	assert.Equal(t, 1, srv.Prune(ctx))
	assert.NoError(t, srv.Schedule(ctx, task.New("old", "true", "")), "evicted name can be reused")
}

func TestService_Shutdown(t *testing.T) {
	ctx := context.Background()
	exec := newFakeExecutor()
	srv := newScheduler(t, DefaultConfig(), exec)
	require.NoError(t, srv.Schedule(ctx, task.New("a", "sleep 10", "")))
	srv.Reconcile(ctx)
	require.NoError(t, srv.Shutdown(ctx))
	assert.Len(t, exec.processes["a"].signals, 1)
}

func TestService_Example(t *testing.T) {
	ctx := context.Background()
	logFolder := filepath.Join(t.TempDir(), "logs")
	exec := executor.New(logFolder)
	require.NoError(t, exec.Init(ctx))
	srv := newScheduler(t, Config{NumJobs: 2, Admission: FIFO}, exec)

	require.NoError(t, srv.Schedule(ctx, task.New("hello", "echo hi", "")))
	require.NoError(t, srv.Schedule(ctx, task.New("fail", "echo oops >&2; exit 3", "")))
	require.NoError(t, srv.Schedule(ctx, task.New("third", "echo third", "")))

	assert.Eventually(t, func() bool {
		srv.Reconcile(ctx)
		return srv.Stats().Finished == 3
	}, 5*time.Second, 10*time.Millisecond)

	fail, err := srv.Lookup(ctx, "fail")
	require.NoError(t, err)
	assert.Equal(t, 3, fail.ExitCode)
	data, err := os.ReadFile(filepath.Join(logFolder, "hello"))
	require.NoError(t, err)
	assert.Equal(t, "hi\n", string(data))
	data, err = os.ReadFile(filepath.Join(logFolder, "fail"))
	require.NoError(t, err)
	assert.Equal(t, "oops\n", string(data))
}

func TestService_SingleSlot(t *testing.T) {
	ctx := context.Background()
	logFolder := t.TempDir()
	srv := newScheduler(t, Config{NumJobs: 1, Admission: FIFO}, executor.New(logFolder))
	require.NoError(t, srv.Schedule(ctx, task.New("A", "sleep 1", "")))
	require.NoError(t, srv.Schedule(ctx, task.New("B", "echo hi", "")))
	assert.Equal(t, Stats{Pending: 2}, srv.Stats())

	srv.Reconcile(ctx)
	assert.Equal(t, Stats{Pending: 1, Running: 1}, srv.Stats())
	for i := 0; i < 3; i++ {
		srv.Reconcile(ctx)
		assert.LessOrEqual(t, srv.Running(), 1)
	}

	assert.Eventually(t, func() bool {
		srv.Reconcile(ctx)
		assert.LessOrEqual(t, srv.Running(), 1)
		return srv.Stats() == Stats{Finished: 2}
	}, 5*time.Second, 10*time.Millisecond)
	data, err := os.ReadFile(filepath.Join(logFolder, "B"))
	require.NoError(t, err)
	assert.Equal(t, "hi\n", string(data))
}
