// Package prometheus renders Grip metrics in Prometheus text exposition format.
//
// [NewPrometheusExporter] wraps a [tokengrip.Grip] and exposes an [http.Handler].
// Counter names are tokengrip_*_total; the single histogram is
// tokengrip_verify_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the Handler.
//   - Mutate Grip state.
package prometheus
