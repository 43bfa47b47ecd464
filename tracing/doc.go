// Package tracing integrates OpenTelemetry with the daemon. Requests handled
// by the server loop and task launches are recorded as spans; when no
// provider is installed spans are no-ops.
package tracing
