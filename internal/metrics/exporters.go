package metrics

import (
	"github.com/relaymesh/relayd/config"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

// exporterType is one metrics backend that can be enabled in the configuration.
type exporterType interface {
	getName() string
	// createExporterIfEnabled returns nil, nil if the backend is not enabled.
	createExporterIfEnabled(config.MetricsConfig, ldlog.Loggers) (exporter, error)
}

type exporter interface {
	register() error
	close() error
}

type namedExporter struct {
	name     string
	exporter exporter
}

// exportersSet holds the running exporters in the order they were started.
type exportersSet []namedExporter

func allExporterTypes() []exporterType {
	return []exporterType{datadogExporterType, prometheusExporterType, stackdriverExporterType}
}

// registerExporters starts every enabled exporter. If any of them fails, the ones already started
// are stopped again and the error is returned.
func registerExporters(
	exporterTypes []exporterType,
	c config.MetricsConfig,
	loggers ldlog.Loggers,
) (exportersSet, error) {
	var started exportersSet
	for _, t := range exporterTypes {
		e, err := t.createExporterIfEnabled(c, loggers)
		if err == nil && e != nil {
			if err = e.register(); err != nil {
				loggers.Errorf("Unable to register %s metrics exporter: %s", t.getName(), err)
			}
		} else if err != nil {
			loggers.Errorf("Unable to create %s metrics exporter: %s", t.getName(), err)
		}
		if err != nil {
			closeExporters(started, loggers)
			return nil, err
		}
		if e != nil {
			loggers.Infof("Started %s metrics exporter", t.getName())
			started = append(started, namedExporter{name: t.getName(), exporter: e})
		}
	}
	return started, nil
}

// closeExporters stops exporters in reverse order, logging and skipping over any that fail.
func closeExporters(exporters exportersSet, loggers ldlog.Loggers) {
	for i := len(exporters) - 1; i >= 0; i-- {
		if err := exporters[i].exporter.close(); err != nil {
			loggers.Errorf("Unable to stop %s metrics exporter: %s", exporters[i].name, err)
		}
	}
}

func getPrefix(configuredPrefix string) string {
	if configuredPrefix != "" {
		return configuredPrefix
	}
	return defaultMetricsPrefix
}
