// Package gate decides whether a unit of a scarce resource (an idle GPU, an
// idle host) is currently available. Probing runs on its own cadence and
// publishes a snapshot; Acquire only reads the last published snapshot so it
// never stalls the scheduler tick.
package gate
