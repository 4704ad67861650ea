// Package metrics records analysis outcomes as Prometheus metrics.
//
// The CLI is short-lived, so nothing is served over HTTP. The Recorder is
// attached to the upload controller as an observer and its registry is
// written to a textfile at exit, where a node exporter textfile collector
// can pick it up.
package metrics
