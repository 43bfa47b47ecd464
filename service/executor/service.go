package executor

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/boque/model/task"
	"github.com/viant/boque/model/types"
	"github.com/viant/boque/tracing"
)

// DefaultShell is used when no shell is configured
const DefaultShell = "/bin/bash"

// Service launches task commands as shell child processes
type Service struct {
	logFolder string
	shell     string
	fs        afs.Service
}

// New creates an executor writing task logs under logFolder
func New(logFolder string, options ...Option) *Service {
	if abs, err := filepath.Abs(logFolder); err == nil {
		logFolder = abs
	}
	ret := &Service{logFolder: logFolder, shell: DefaultShell}
	for _, option := range options {
		option(ret)
	}
	if ret.fs == nil {
		ret.fs = afs.New()
	}
	return ret
}

// Init ensures the log folder exists
func (s *Service) Init(ctx context.Context) error {
	exists, _ := s.fs.Exists(ctx, s.logFolder)
	if exists {
		return nil
	}
	if err := s.fs.Create(ctx, s.logFolder, file.DefaultDirOsMode, true); err != nil {
		return fmt.Errorf("failed to create log folder %s: %w", s.logFolder, err)
	}
	return nil
}

// LogPath returns the log file location of the named task
func (s *Service) LogPath(name string) string {
	return filepath.Join(s.logFolder, name)
}

// Execute expands the task command with the binding and spawns it. A task
// that already has a process is left untouched.
func (s *Service) Execute(ctx context.Context, aTask *task.Task, binding *task.Binding) (err error) {
	if aTask.Process() != nil {
		log.Printf("[WARNING] task %v is executed twice", aTask.Name)
		return nil
	}
	_, span := tracing.StartSpan(ctx, "executor.Execute", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()
	span.WithAttributes(map[string]string{"task.name": aTask.Name, "task.resource": aTask.Resource})

	template, err := ParseTemplate(aTask.Command)
	if err != nil {
		return err
	}
	command, err := template.Expand(binding)
	if err != nil {
		return err
	}
	handle, err := s.spawn(aTask.Name, command, binding.Environ())
	if err != nil {
		return err
	}
	unit := ""
	if binding != nil {
		unit = binding.Unit
	}
	return aTask.Start(handle, unit)
}

func (s *Service) spawn(name, command string, env []string) (*Handle, error) {
	logPath := s.LogPath(name)
	output, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create log %v: %v", types.ErrSpawn, logPath, err)
	}
	cmd := exec.Command(s.shell, "-c", command)
	cmd.Stdout = output
	cmd.Stderr = output
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	if err = cmd.Start(); err != nil {
		_ = output.Close()
		return nil, fmt.Errorf("%w: %v", types.ErrSpawn, err)
	}
	handle := newHandle(cmd, output)
	go handle.wait()
	return handle, nil
}
