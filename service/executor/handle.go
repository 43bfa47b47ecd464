package executor

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// Handle tracks a spawned child process. The log file stays open for the
// lifetime of the process and is closed once the process has been waited for.
type Handle struct {
	cmd      *exec.Cmd
	output   *os.File
	done     chan struct{}
	exitCode int
}

func newHandle(cmd *exec.Cmd, output *os.File) *Handle {
	return &Handle{cmd: cmd, output: output, done: make(chan struct{})}
}

func (h *Handle) wait() {
	err := h.cmd.Wait()
	h.exitCode = exitCode(h.cmd.ProcessState, err)
	_ = h.output.Close()
	close(h.done)
}

// HasExited returns the exit code once the process has terminated; it never blocks
func (h *Handle) HasExited() (int, bool) {
	select {
	case <-h.done:
		return h.exitCode, true
	default:
		return 0, false
	}
}

// Done returns a channel closed when the process has exited
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Signal sends sig to the process group of the child, so processes started
// by the shell are signalled too. Signalling an exited group is a no-op.
func (h *Handle) Signal(sig os.Signal) error {
	if sysSig, ok := sig.(syscall.Signal); ok {
		err := syscall.Kill(-h.cmd.Process.Pid, sysSig)
		if errors.Is(err, syscall.ESRCH) {
			return nil
		}
		return err
	}
	if _, exited := h.HasExited(); exited {
		return nil
	}
	err := h.cmd.Process.Signal(sig)
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

// Pid returns the process id
func (h *Handle) Pid() int {
	return h.cmd.Process.Pid
}

// exitCode follows the shell convention of 128+signal for signalled processes
func exitCode(state *os.ProcessState, err error) int {
	if state == nil {
		if err != nil {
			return -1
		}
		return 0
	}
	if status, ok := state.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal())
	}
	return state.ExitCode()
}
