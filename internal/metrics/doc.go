// Package metrics records build and deploy metrics.
//
// Components receive a Recorder and default to NoopRecorder, so metrics
// never need nil checks at call sites. When a textfile path is configured
// the CLI installs a PrometheusRecorder and writes its registry at the end
// of the run, for pickup by the node exporter textfile collector.
package metrics
