// Package idgen wraps the UUID generator used to correlate inbound requests
// with their tracing spans. It lives under `internal` because callers should
// treat identifiers as opaque strings.
package idgen
