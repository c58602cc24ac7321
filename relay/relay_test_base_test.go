package relay

import (
	"context"
	"testing"
	"time"

	"github.com/relaymesh/relayd/config"
	"github.com/relaymesh/relayd/internal/frames"
	"github.com/relaymesh/relayd/internal/sharedtest"
	"github.com/relaymesh/relayd/internal/transport"

	ct "github.com/launchdarkly/go-configtypes"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldlogtest"
	helpers "github.com/launchdarkly/go-test-helpers/v3"

	"github.com/stretchr/testify/require"
)

const testTimeout = time.Second

type relayConstructor func(config.Config, ldlog.Loggers, transport.Binder) (*Relay, error)

type relayTestParams struct {
	t       *testing.T
	relay   *Relay
	binder  *sharedtest.MemoryBinder
	mockLog *ldlogtest.MockLog
	first   *sharedtest.MemoryEndpoint
	second  *sharedtest.MemoryEndpoint
}

// makeTestConfig returns a configuration that keeps the loop responsive and skips the settle delay.
func makeTestConfig() config.Config {
	var c config.Config
	c.Main.PollTimeout = ct.NewOptDuration(time.Millisecond * 10)
	c.Main.SettleDelay = ct.NewOptDuration(0)
	return c
}

func relayTest(t *testing.T, constructor relayConstructor, c config.Config, action func(p relayTestParams)) {
	mockLog := ldlogtest.NewMockLog()
	mockLog.Loggers.SetMinLevel(ldlog.Debug)
	defer mockLog.DumpIfTestFailed(t)

	binder := sharedtest.NewMemoryBinder()
	r, err := constructor(c, mockLog.Loggers, binder)
	require.NoError(t, err)
	defer r.Close() //nolint:errcheck

	action(relayTestParams{
		t:       t,
		relay:   r,
		binder:  binder,
		mockLog: mockLog,
		first:   binder.Endpoint(r.first.address),
		second:  binder.Endpoint(r.second.address),
	})
}

// run starts the relay's loop and returns a function that stops it and waits for it to return.
func (p relayTestParams) run() func() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- p.relay.Run(ctx)
	}()
	return func() {
		cancel()
		err := helpers.RequireValue(p.t, done, testTimeout, "timed out waiting for relay to stop")
		require.NoError(p.t, err)
	}
}

func (p relayTestParams) requireSent(e *sharedtest.MemoryEndpoint) frames.Message {
	return helpers.RequireValue(p.t, e.SentMessages(), testTimeout, "timed out waiting for message to be forwarded")
}

func (p relayTestParams) requireLogged(level ldlog.LogLevel, pattern string) {
	require.Eventually(p.t, func() bool {
		return p.mockLog.HasMessageMatch(level, pattern)
	}, testTimeout, time.Millisecond*10, "expected log message matching %q", pattern)
}
