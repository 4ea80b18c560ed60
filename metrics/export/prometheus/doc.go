// Package prometheus provides Prometheus collectors for credkit metrics.
//
// [NewPrometheusExporter] accepts a [credkit.Engine] and exposes an [http.Handler]
// that renders all credkit counters and histograms in Prometheus text exposition
// format. Counter names are prefixed credkit_*_total; the latency histograms are
// credkit_hash_duration_seconds and credkit_verify_duration_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
