package executor

import "github.com/viant/afs"

// Option is used to customise the executor instance.
type Option func(*Service)

// WithShell overrides the shell used to run commands
func WithShell(shell string) Option {
	return func(s *Service) {
		s.shell = shell
	}
}

// WithFs sets the file system service used to prepare the log folder
func WithFs(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}
