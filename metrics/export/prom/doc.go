// Package prom provides a prometheus/client_golang collector for parkgate counters and
// histograms.
//
// [NewCollector] returns a [prometheus.Collector] that reads
// [parkgate.Client.MetricsSnapshot] on every scrape and emits const metrics. Register it
// with a caller-owned registry; [Handler] is a convenience that does so on a fresh one.
//
// # What this package must NOT do
//
//   - Own a global registry — callers decide where the collector is registered.
//   - Mutate client state.
package prom
