// Package metrics records relay activity as OpenCensus measurements and manages the optional
// exporters (Prometheus, Datadog, Stackdriver) that publish them.
package metrics
