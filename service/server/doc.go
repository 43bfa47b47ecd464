// Package server runs the daemon loop: poll the request channel, dispatch a
// decoded task to the scheduler, reply, reconcile, and periodically log
// scheduler statistics.
package server
