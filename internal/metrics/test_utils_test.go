package metrics

import (
	"testing"

	"github.com/pborman/uuid"
	"github.com/stretchr/testify/require"

	"github.com/relaymesh/relayd/config"
	st "github.com/relaymesh/relayd/internal/sharedtest"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldlogtest"
)

type managerTestParams struct {
	recorder  *st.ViewRecorder
	manager   *Manager
	component string
}

// managerTest gives each test its own component name, since OpenCensus aggregates globally across tests.
func managerTest(t *testing.T, action func(managerTestParams)) {
	mockLog := ldlogtest.NewMockLog()
	defer mockLog.DumpIfTestFailed(t)

	component := "component-" + uuid.New()
	manager, err := NewManager(config.MetricsConfig{}, component, mockLog.Loggers)
	require.NoError(t, err)
	defer manager.Close()

	recorder := st.NewViewRecorder()
	recorder.Record(func() {
		action(managerTestParams{recorder: recorder, manager: manager, component: component})
	})
}

// fakeBackend is an exporterType whose exporters only record what was done to them.
type fakeBackend struct {
	name         string
	enabledIf    func(config.MetricsConfig) bool
	failCreate   error
	failRegister error
	failClose    error
	instances    []*fakeExporter
}

type fakeExporter struct {
	backend    *fakeBackend
	registered bool
	closed     bool
}

func (b *fakeBackend) getName() string { return b.name }

func (b *fakeBackend) createExporterIfEnabled(mc config.MetricsConfig, _ ldlog.Loggers) (exporter, error) {
	switch {
	case b.failCreate != nil:
		return nil, b.failCreate
	case b.enabledIf != nil && !b.enabledIf(mc):
		return nil, nil
	}
	e := &fakeExporter{backend: b}
	b.instances = append(b.instances, e)
	return e, nil
}

func (e *fakeExporter) register() error {
	e.registered = e.backend.failRegister == nil
	return e.backend.failRegister
}

func (e *fakeExporter) close() error {
	e.closed = e.backend.failClose == nil
	return e.backend.failClose
}
