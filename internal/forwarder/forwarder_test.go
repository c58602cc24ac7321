package forwarder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldlogtest"
	helpers "github.com/launchdarkly/go-test-helpers/v3"
	"golang.org/x/time/rate"

	"github.com/relaymesh/relayd/internal/frames"
	"github.com/relaymesh/relayd/internal/sharedtest"
	"github.com/relaymesh/relayd/internal/transport"
)

const (
	testForwardRoute  = "first->second"
	testBackwardRoute = "second->first"
	testTimeout       = time.Second
)

type recordingObserver struct {
	events chan string
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{events: make(chan string, 100)}
}

func (o *recordingObserver) MessageForwarded(route string, size int) { o.events <- "forwarded " + route }
func (o *recordingObserver) MessageDropped(route string)             { o.events <- "dropped " + route }
func (o *recordingObserver) MessageUnrouted(route string)            { o.events <- "unrouted " + route }

func (o *recordingObserver) requireEvents(t *testing.T, expected ...string) {
	t.Helper()
	for _, e := range expected {
		assert.Equal(t, e, helpers.RequireValue(t, o.events, testTimeout, "timed out waiting for %q", e))
	}
}

type forwarderFixture struct {
	first     *sharedtest.MemoryEndpoint
	second    *sharedtest.MemoryEndpoint
	forwarder *Forwarder
	observer  *recordingObserver
	mockLog   *ldlogtest.MockLog
}

func newForwarderFixture(t *testing.T, options Options) *forwarderFixture {
	mockLog := ldlogtest.NewMockLog()
	mockLog.Loggers.SetMinLevel(ldlog.Debug)
	t.Cleanup(func() { mockLog.DumpIfTestFailed(t) })

	binder := sharedtest.NewMemoryBinder()
	first, err := binder.Bind(transport.Router, "inproc://first")
	require.NoError(t, err)
	second, err := binder.Bind(transport.Dealer, "inproc://second")
	require.NoError(t, err)
	poller, err := binder.NewPoller(first, second)
	require.NoError(t, err)

	observer := newRecordingObserver()
	if options.PollTimeout == 0 {
		options.PollTimeout = time.Millisecond * 10
	}
	if options.Forward.Name == "" {
		options.Forward.Name = testForwardRoute
	}
	if options.Backward.Name == "" {
		options.Backward.Name = testBackwardRoute
	}
	options.Observer = observer

	return &forwarderFixture{
		first:     first.(*sharedtest.MemoryEndpoint),
		second:    second.(*sharedtest.MemoryEndpoint),
		forwarder: New(first, second, poller, options, mockLog.Loggers),
		observer:  observer,
		mockLog:   mockLog,
	}
}

// start runs the forwarder on a goroutine and returns a function that stops it and returns its result.
func (fx *forwarderFixture) start(t *testing.T) func() error {
	ctx, cancel := context.WithCancel(context.Background())
	resultCh := make(chan error, 1)
	go func() {
		resultCh <- fx.forwarder.Run(ctx)
	}()
	var once sync.Once
	var result error
	stop := func() error {
		once.Do(func() {
			cancel()
			result = helpers.RequireValue(t, resultCh, testTimeout, "timed out waiting for forwarder to stop")
		})
		return result
	}
	t.Cleanup(func() { _ = stop() })
	return stop
}

func TestForwarderPreservesFramesInBothDirections(t *testing.T) {
	fx := newForwarderFixture(t, Options{})
	stop := fx.start(t)

	request := frames.Message{[]byte("client-1"), []byte{}, []byte("PING")}
	reply := frames.Message{[]byte("client-1"), []byte{}, []byte("PONG")}

	fx.first.Deliver(request)
	received := helpers.RequireValue(t, fx.second.SentMessages(), testTimeout, "timed out waiting for request")
	assert.Equal(t, request, received)

	fx.second.Deliver(reply)
	received = helpers.RequireValue(t, fx.first.SentMessages(), testTimeout, "timed out waiting for reply")
	assert.Equal(t, reply, received)

	fx.observer.requireEvents(t, "forwarded "+testForwardRoute, "forwarded "+testBackwardRoute)
	require.NoError(t, stop())

	snapshot := fx.forwarder.Stats().Snapshot()
	assert.Equal(t, RouteSnapshot{Route: testForwardRoute, Forwarded: 1, Bytes: uint64(request.Size())}, snapshot.Forward)
	assert.Equal(t, RouteSnapshot{Route: testBackwardRoute, Forwarded: 1, Bytes: uint64(reply.Size())}, snapshot.Backward)
}

func TestForwarderPreservesMessageOrderOnARoute(t *testing.T) {
	fx := newForwarderFixture(t, Options{})
	fx.start(t)

	var expected []frames.Message
	for _, body := range []string{"a", "b", "c", "d", "e"} {
		msg := frames.Strings("topic", body)
		expected = append(expected, msg)
		fx.first.Deliver(msg)
	}
	for _, msg := range expected {
		assert.Equal(t, msg, helpers.RequireValue(t, fx.second.SentMessages(), testTimeout))
	}
}

func TestForwarderAlternatesBetweenEndpoints(t *testing.T) {
	fx := newForwarderFixture(t, Options{})
	for i := 0; i < 3; i++ {
		fx.first.Deliver(frames.Strings("from-first"))
		fx.second.Deliver(frames.Strings("from-second"))
	}
	fx.start(t)
	for i := 0; i < 3; i++ {
		fx.observer.requireEvents(t, "forwarded "+testForwardRoute, "forwarded "+testBackwardRoute)
	}
}

func TestForwarderDrainsUpToMaxPerPoll(t *testing.T) {
	fx := newForwarderFixture(t, Options{MaxPerPoll: 3})
	for i := 0; i < 3; i++ {
		fx.first.Deliver(frames.Strings("from-first"))
		fx.second.Deliver(frames.Strings("from-second"))
	}
	fx.start(t)
	fx.observer.requireEvents(t,
		"forwarded "+testForwardRoute, "forwarded "+testForwardRoute, "forwarded "+testForwardRoute,
		"forwarded "+testBackwardRoute, "forwarded "+testBackwardRoute, "forwarded "+testBackwardRoute,
	)
}

func TestForwarderDropsMessageOnSendFailureAndContinues(t *testing.T) {
	fx := newForwarderFixture(t, Options{})
	fx.second.FailNextSend(errors.New("host unreachable"))
	fx.start(t)

	fx.first.Deliver(frames.Strings("lost"))
	fx.first.Deliver(frames.Strings("kept"))

	assert.Equal(t, frames.Strings("kept"), helpers.RequireValue(t, fx.second.SentMessages(), testTimeout))
	fx.observer.requireEvents(t, "dropped "+testForwardRoute, "forwarded "+testForwardRoute)

	fx.mockLog.AssertMessageMatch(t, true, ldlog.Error,
		"Dropped message: send failed on route first->second \\(1 frames\\): host unreachable")
	snapshot := fx.forwarder.Stats().Snapshot().Forward
	assert.Equal(t, uint64(1), snapshot.Dropped)
	assert.Equal(t, uint64(1), snapshot.Forwarded)
}

func TestForwarderThrottlesDropReports(t *testing.T) {
	fx := newForwarderFixture(t, Options{})
	fx.forwarder.dropLog.limiter = rate.NewLimiter(rate.Every(time.Hour), 2)
	for i := 0; i < 4; i++ {
		fx.second.FailNextSend(errors.New("host unreachable"))
	}
	fx.start(t)

	for i := 0; i < 4; i++ {
		fx.first.Deliver(frames.Strings("lost"))
	}
	for i := 0; i < 4; i++ {
		fx.observer.requireEvents(t, "dropped "+testForwardRoute)
	}
	assert.Len(t, fx.mockLog.GetOutput(ldlog.Error), 2)
	assert.Equal(t, uint64(4), fx.forwarder.Stats().Snapshot().Forward.Dropped)

	fx.forwarder.dropLog.limiter.SetLimit(rate.Inf)
	fx.second.FailNextSend(errors.New("host unreachable"))
	fx.first.Deliver(frames.Strings("lost"))
	fx.observer.requireEvents(t, "dropped "+testForwardRoute)
	require.Eventually(t, func() bool {
		return fx.mockLog.HasMessageMatch(ldlog.Error, "host unreachable \\(2 similar messages suppressed\\)")
	}, testTimeout, time.Millisecond*5)
}

func TestForwarderDropsEmptyMessage(t *testing.T) {
	fx := newForwarderFixture(t, Options{})
	fx.start(t)

	fx.second.Deliver(frames.Message{})
	fx.second.Deliver(frames.Strings("after"))

	assert.Equal(t, frames.Strings("after"), helpers.RequireValue(t, fx.first.SentMessages(), testTimeout))
	fx.observer.requireEvents(t, "dropped "+testBackwardRoute, "forwarded "+testBackwardRoute)
	fx.mockLog.AssertMessageMatch(t, true, ldlog.Error, "received a message with no frames")
}

func TestForwarderWithBlockedDestination(t *testing.T) {
	t.Run("holds message until destination can accept it", func(t *testing.T) {
		fx := newForwarderFixture(t, Options{Forward: Route{DropWhenBlocked: true}})
		fx.second.SetBlocked(true)
		fx.start(t)

		fx.first.Deliver(frames.Strings("client", "", "PING"))
		helpers.AssertNoMoreValues(t, fx.second.SentMessages(), time.Millisecond*50)
		assert.Len(t, fx.observer.events, 0)
		assert.Equal(t, RouteSnapshot{Route: testForwardRoute}, fx.forwarder.Stats().Snapshot().Forward)

		fx.second.SetBlocked(false)
		assert.Equal(t, frames.Strings("client", "", "PING"),
			helpers.RequireValue(t, fx.second.SentMessages(), testTimeout))
		fx.observer.requireEvents(t, "forwarded "+testForwardRoute)

		snapshot := fx.forwarder.Stats().Snapshot().Forward
		assert.Equal(t, uint64(0), snapshot.Dropped)
		assert.Equal(t, uint64(1), snapshot.Forwarded)
		assert.Len(t, fx.mockLog.GetOutput(ldlog.Warn), 0)
		fx.mockLog.AssertMessageMatch(t, true, ldlog.Debug, "Route first->second is waiting for its destination")
	})

	t.Run("keeps the other direction flowing while one route is held", func(t *testing.T) {
		fx := newForwarderFixture(t, Options{})
		fx.second.SetBlocked(true)
		fx.start(t)

		fx.first.Deliver(frames.Strings("client", "", "PING"))
		fx.second.Deliver(frames.Strings("client", "", "PONG"))
		assert.Equal(t, frames.Strings("client", "", "PONG"),
			helpers.RequireValue(t, fx.first.SentMessages(), testTimeout))
		helpers.AssertNoMoreValues(t, fx.second.SentMessages(), time.Millisecond*50)

		fx.second.SetBlocked(false)
		assert.Equal(t, frames.Strings("client", "", "PING"),
			helpers.RequireValue(t, fx.second.SentMessages(), testTimeout))
	})

	t.Run("drops message when send still fails and route is configured to drop", func(t *testing.T) {
		fx := newForwarderFixture(t, Options{Forward: Route{DropWhenBlocked: true}})
		fx.second.FailNextSend(transport.ErrWouldBlock)
		fx.start(t)

		fx.first.Deliver(frames.Strings("client", "", "PING"))
		fx.observer.requireEvents(t, "dropped "+testForwardRoute)

		fx.first.Deliver(frames.Strings("client", "", "PING again"))
		assert.Equal(t, frames.Strings("client", "", "PING again"),
			helpers.RequireValue(t, fx.second.SentMessages(), testTimeout))

		fx.mockLog.AssertMessageMatch(t, true, ldlog.Warn, "Dropped message, destination not ready")
		snapshot := fx.forwarder.Stats().Snapshot().Forward
		assert.Equal(t, uint64(1), snapshot.Dropped)
		assert.Equal(t, uint64(1), snapshot.Forwarded)
	})

	t.Run("counts message as unrouted when route is not configured to drop", func(t *testing.T) {
		fx := newForwarderFixture(t, Options{})
		fx.second.FailNextSend(transport.ErrWouldBlock)
		fx.start(t)

		fx.first.Deliver(frames.Strings("news", "headline"))
		fx.observer.requireEvents(t, "unrouted "+testForwardRoute, "forwarded "+testForwardRoute)

		helpers.AssertNoMoreValues(t, fx.second.SentMessages(), time.Millisecond*50)
		snapshot := fx.forwarder.Stats().Snapshot().Forward
		assert.Equal(t, uint64(0), snapshot.Dropped)
		assert.Equal(t, uint64(1), snapshot.Unrouted)
		assert.Equal(t, uint64(1), snapshot.Forwarded)
		assert.Len(t, fx.mockLog.GetOutput(ldlog.Error), 0)
		assert.Len(t, fx.mockLog.GetOutput(ldlog.Warn), 0)
	})
}

func TestForwarderInspector(t *testing.T) {
	t.Run("receives each message with its sequence number", func(t *testing.T) {
		seqCh := make(chan uint64, 10)
		fx := newForwarderFixture(t, Options{
			Backward: Route{Inspect: func(msg frames.Message, seq uint64) error {
				seqCh <- seq
				return nil
			}},
		})
		fx.start(t)

		for i := 0; i < 3; i++ {
			fx.second.Deliver(frames.Strings("x"))
		}
		for i := uint64(1); i <= 3; i++ {
			assert.Equal(t, i, helpers.RequireValue(t, seqCh, testTimeout))
		}
	})

	t.Run("error does not affect delivery", func(t *testing.T) {
		fx := newForwarderFixture(t, Options{
			Forward: Route{Inspect: func(msg frames.Message, seq uint64) error {
				return errors.New("not valid JSON")
			}},
		})
		fx.start(t)

		fx.first.Deliver(frames.Strings("topic", "{"))
		fx.first.Deliver(frames.Strings("topic", "}"))
		assert.Equal(t, frames.Strings("topic", "{"), helpers.RequireValue(t, fx.second.SentMessages(), testTimeout))
		assert.Equal(t, frames.Strings("topic", "}"), helpers.RequireValue(t, fx.second.SentMessages(), testTimeout))

		fx.mockLog.AssertMessageMatch(t, true, ldlog.Warn, "Could not describe message #1: .*not valid JSON")
		assert.Equal(t, uint64(0), fx.forwarder.Stats().Snapshot().Forward.Dropped)
	})

	t.Run("panic does not stop the loop", func(t *testing.T) {
		fx := newForwarderFixture(t, Options{
			Forward: Route{Inspect: func(msg frames.Message, seq uint64) error {
				_ = msg[5]
				return nil
			}},
		})
		fx.start(t)

		fx.first.Deliver(frames.Strings("short"))
		fx.first.Deliver(frames.Strings("also short"))
		helpers.RequireValue(t, fx.second.SentMessages(), testTimeout)
		helpers.RequireValue(t, fx.second.SentMessages(), testTimeout)

		fx.mockLog.AssertMessageMatch(t, true, ldlog.Warn, "panic in inspector")
	})
}

func TestForwarderStopsWhenContextIsCancelled(t *testing.T) {
	fx := newForwarderFixture(t, Options{PollTimeout: time.Millisecond * 5})
	stop := fx.start(t)
	assert.NoError(t, stop())
}

func TestForwarderReturnsFatalErrorWhenEndpointIsClosed(t *testing.T) {
	fx := newForwarderFixture(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resultCh := make(chan error, 1)
	go func() {
		resultCh <- fx.forwarder.Run(ctx)
	}()
	_ = fx.first.Close()

	err := helpers.RequireValue(t, resultCh, testTimeout, "timed out waiting for forwarder to stop")
	require.Error(t, err)
	assert.Equal(t, ClassFatal, ClassOf(err))
	assert.True(t, errors.Is(err, transport.ErrClosed))
}

func TestForwarderReturnsFatalErrorWhenSendReportsClosed(t *testing.T) {
	fx := newForwarderFixture(t, Options{})
	fx.second.FailNextSend(transport.ErrClosed)
	fx.first.Deliver(frames.Strings("x"))

	err := fx.forwarder.Run(context.Background())
	require.Error(t, err)
	var te *TransferError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, OpSend, te.Op)
	assert.Equal(t, testForwardRoute, te.Route)
	assert.Equal(t, uint64(0), fx.forwarder.Stats().Snapshot().Forward.Dropped)
}
