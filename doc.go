// Package boque provides a local job-scheduling daemon.
//
// Clients submit named shell commands over a ZeroMQ request/reply socket;
// the daemon runs at most a configured number of them concurrently, each
// with its combined output written to a per-task log file. A task may
// require a resource (gpu or cpu) and is then launched only when a gate
// reports an idle unit, whose id is substituted into {{gpu}} style
// placeholders of the command.
//
//	srv, _ := boque.New(boque.WithConfig(config))
//	err := srv.Serve(ctx)
//
// Names are unique: a second submission with a known name is rejected.
package boque
