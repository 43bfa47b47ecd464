// Package progress keeps the aggregate task counters reported by the
// scheduler. Per-task records are not retained here; only running, pending
// and terminal tallies.
package progress
