package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/relaymesh/relayd/config"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	"contrib.go.opencensus.io/exporter/prometheus"
)

var prometheusExporterType exporterType = viewBackend{name: "Prometheus", build: newPrometheusExporter} //nolint:gochecknoglobals

const prometheusScrapePath = "/metrics"

// newPrometheusExporter creates the exporter and the HTTP listener that serves it. The listener is
// only started when the exporter is registered.
func newPrometheusExporter(mc config.MetricsConfig, loggers ldlog.Loggers) (*viewExporter, error) {
	pc := mc.Prometheus
	if !pc.Enabled {
		return nil, nil
	}
	pe, err := prometheus.NewExporter(prometheus.Options{
		Namespace: getPrefix(pc.Prefix),
		OnError:   backendErrorLogger("Prometheus", loggers),
	})
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle(prometheusScrapePath, pe)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", pc.Port.GetOrElse(config.DefaultPrometheusPort)),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return &viewExporter{
		exporter: pe,
		start:    func() { go servePrometheus(server, loggers) },
		stop:     server.Close,
	}, nil
}

func servePrometheus(server *http.Server, loggers ldlog.Loggers) {
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		loggers.Errorf("Prometheus listener on %s failed: %s", server.Addr, err)
	}
}
