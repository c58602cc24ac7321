package metrics

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/relaymesh/relayd/config"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	"github.com/pborman/uuid"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

// Manager owns the metrics of one relay process: the OpenCensus tag contexts its measurements are
// recorded under, and whichever exporters the configuration turned on. Close it when the relay closes.
//
// A Manager can be passed to the forwarder directly as its Observer.
type Manager struct {
	baseCtx   context.Context
	relayID   string
	exporters exportersSet
	routes    map[string]context.Context
	loggers   ldlog.Loggers
	closeOnce sync.Once
	lock      sync.Mutex
}

// NewManager creates a Manager for a relay component, such as "broker". Measurements are tagged with
// the component name and with a random ID generated for this process.
func NewManager(
	metricsConfig config.MetricsConfig,
	component string,
	loggers ldlog.Loggers,
) (*Manager, error) {
	var err error
	registerViewsOnce.Do(func() {
		err = view.Register(getViews()...)
	})
	if err != nil {
		return nil, fmt.Errorf("error registering metrics views: %w", err)
	}

	exporters, err := registerExporters(allExporterTypes(), metricsConfig, loggers)
	if err != nil {
		return nil, err
	}

	relayID := uuid.New()
	ctx, _ := tag.New(context.Background(),
		tag.Insert(relayIDTagKey, relayID),
		tag.Insert(componentTagKey, sanitizeTagValue(component)),
	)
	return &Manager{
		baseCtx:   ctx,
		relayID:   relayID,
		exporters: exporters,
		routes:    make(map[string]context.Context),
		loggers:   loggers,
	}, nil
}

// RelayID returns the unique identifier that is attached to all measurements from this process.
func (m *Manager) RelayID() string {
	return m.relayID
}

// MessageForwarded records a message that was passed to the destination endpoint.
func (m *Manager) MessageForwarded(route string, size int) {
	stats.Record(m.routeContext(route), forwardedMessagesMeasure.M(1), forwardedBytesMeasure.M(int64(size)))
}

// MessageDropped records a message that was lost because of a receive or send failure.
func (m *Manager) MessageDropped(route string) {
	stats.Record(m.routeContext(route), droppedMessagesMeasure.M(1))
}

// MessageUnrouted records a message that the destination could not accept immediately.
func (m *Manager) MessageUnrouted(route string) {
	stats.Record(m.routeContext(route), unroutedMessagesMeasure.M(1))
}

// Close unregisters and shuts down all exporters. It is safe to call more than once.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		m.lock.Lock()
		exporters := m.exporters
		m.exporters = nil
		m.lock.Unlock()

		closeExporters(exporters, m.loggers)
	})
}

func (m *Manager) routeContext(route string) context.Context {
	m.lock.Lock()
	defer m.lock.Unlock()
	if ctx, ok := m.routes[route]; ok {
		return ctx
	}
	ctx, err := tag.New(m.baseCtx, tag.Insert(routeTagKey, sanitizeTagValue(route)))
	if err != nil {
		m.loggers.Errorf("Failed to create metrics tag for route %q: %s", route, err)
		ctx = m.baseCtx
	}
	m.routes[route] = ctx
	return ctx
}

// OpenCensus drops empty tag values, which would leave a row with fewer tags than its view expects.
func sanitizeTagValue(v string) string {
	if strings.TrimSpace(v) == "" {
		return "_"
	}
	return strings.Replace(v, "/", "_", -1)
}
