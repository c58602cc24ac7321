package metrics

import (
	"github.com/relaymesh/relayd/config"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	stackdriver "github.com/launchdarkly/opencensus-go-exporter-stackdriver"
)

var stackdriverExporterType exporterType = viewBackend{name: "Stackdriver", build: newStackdriverExporter} //nolint:gochecknoglobals

func newStackdriverExporter(mc config.MetricsConfig, loggers ldlog.Loggers) (*viewExporter, error) {
	sc := mc.Stackdriver
	if !sc.Enabled {
		return nil, nil
	}
	sd, err := stackdriver.NewExporter(stackdriver.Options{
		ProjectID:    sc.ProjectID,
		MetricPrefix: getPrefix(sc.Prefix),
		OnError:      backendErrorLogger("Stackdriver", loggers),
	})
	if err != nil {
		return nil, err
	}
	return &viewExporter{exporter: sd, stop: func() error { sd.Flush(); return nil }}, nil
}
