package metrics

import (
	"github.com/relaymesh/relayd/config"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	datadog "github.com/DataDog/opencensus-go-exporter-datadog"
)

var datadogExporterType exporterType = viewBackend{name: "Datadog", build: newDatadogExporter} //nolint:gochecknoglobals

func newDatadogExporter(mc config.MetricsConfig, loggers ldlog.Loggers) (*viewExporter, error) {
	dc := mc.Datadog
	if !dc.Enabled {
		return nil, nil
	}
	prefix := getPrefix(dc.Prefix)
	dd, err := datadog.NewExporter(datadog.Options{
		Namespace: prefix,
		Service:   prefix,
		TraceAddr: dc.TraceAddr,
		StatsAddr: dc.StatsAddr,
		Tags:      dc.Tag,
		OnError:   backendErrorLogger("Datadog", loggers),
	})
	if err != nil {
		return nil, err
	}
	// Stop flushes whatever is still buffered for the agent.
	return &viewExporter{exporter: dd, stop: func() error { dd.Stop(); return nil }}, nil
}
