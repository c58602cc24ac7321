package metrics

import (
	"github.com/relaymesh/relayd/config"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	"go.opencensus.io/stats/view"
)

// viewBackend is an exporterType for any backend that receives data through an OpenCensus view exporter.
type viewBackend struct {
	name string
	// build returns nil, nil when the backend is turned off in the configuration.
	build func(config.MetricsConfig, ldlog.Loggers) (*viewExporter, error)
}

// viewExporter wraps a view exporter together with the optional hooks that start and stop whatever
// the backend runs alongside it.
type viewExporter struct {
	exporter view.Exporter
	start    func()
	stop     func() error
}

func (b viewBackend) getName() string { return b.name }

func (b viewBackend) createExporterIfEnabled(mc config.MetricsConfig, loggers ldlog.Loggers) (exporter, error) {
	ve, err := b.build(mc, loggers)
	if err != nil || ve == nil {
		return nil, err
	}
	return ve, nil
}

func (v *viewExporter) register() error {
	if v.start != nil {
		v.start()
	}
	view.RegisterExporter(v.exporter)
	return nil
}

func (v *viewExporter) close() error {
	view.UnregisterExporter(v.exporter)
	if v.stop == nil {
		return nil
	}
	return v.stop()
}

func backendErrorLogger(name string, loggers ldlog.Loggers) func(error) {
	return func(err error) {
		loggers.Errorf("%s metrics exporter error: %s", name, err)
	}
}
