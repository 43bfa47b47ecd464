// Package scheduler tracks pending and running tasks and decides, on every
// Reconcile call, which exited task to reap and which pending task to launch.
//
// Reconcile reaps at most one exited task and admits at most one pending task
// per call; the server loop calls it continuously so throughput is bounded by
// the poll cadence rather than by a batch size. A task gated on a resource is
// admitted only when its gate hands out an idle unit; otherwise it stays at
// the head of the pending set.
package scheduler
