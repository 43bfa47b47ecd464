// Package executor launches task commands as child processes. The command
// template is expanded with the resource binding, the process runs through a
// shell with merged stdout/stderr redirected to a per-task log file, and the
// returned Handle exposes non-blocking liveness to the scheduler.
package executor
