// Package telemetry instruments outgoing portal traffic.
//
// InstrumentResty hooks a resty client so that each request runs inside an
// OpenTelemetry client span and leaves a debug log line with method, URL,
// status and duration. StartStep wraps a named step of an update (login,
// counter discovery, month fetch) in its own span.
//
// No exporter is configured here. Without a registered TracerProvider the
// global otel tracer is a no-op and only the log lines remain.
package telemetry
