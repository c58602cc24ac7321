package forwarder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"golang.org/x/time/rate"

	"github.com/relaymesh/relayd/internal/frames"
	"github.com/relaymesh/relayd/internal/transport"
)

const (
	// DefaultPollTimeout is the readiness wait used when Options.PollTimeout is not set.
	DefaultPollTimeout = time.Second

	// DefaultMaxPerPoll is the number of messages taken from each ready endpoint per loop iteration
	// when Options.MaxPerPoll is not set. One message per endpoint per iteration gives strict
	// alternation between the two directions.
	DefaultMaxPerPoll = 1

	// Drop reports are logged at most this often after an initial burst; the rest are counted and
	// mentioned in the next report.
	dropLogInterval = time.Second
	dropLogBurst    = 10
)

// Inspector is called after a message has been forwarded along a route, with the message and its
// 1-based sequence number on that route. It is used for diagnostics only: it must not modify the
// message, and an error it returns is logged without affecting delivery.
type Inspector func(msg frames.Message, seq uint64) error

// Route configures one direction of a relay.
type Route struct {
	// Name identifies the route in logs, counters and metrics, such as "ingress->egress".
	Name string

	// Inspect is optional.
	Inspect Inspector

	// DropWhenBlocked determines what happens when the destination reported that it was writable but
	// the send still could not be queued. If true the message is dropped and logged as a failure; if
	// false the send is considered complete, the message is counted as unrouted, and delivery is left
	// to the transport. A destination that reports it is not writable is never sent to: the route
	// stops receiving until the destination can accept a message again.
	DropWhenBlocked bool
}

// Observer receives a notification for every message outcome. It is called on the forwarding
// goroutine and should not block.
type Observer interface {
	MessageForwarded(route string, size int)
	MessageDropped(route string)
	MessageUnrouted(route string)
}

// Options configures a Forwarder.
type Options struct {
	PollTimeout time.Duration
	MaxPerPoll  int

	// Forward is the route from the first endpoint to the second, Backward the reverse.
	Forward  Route
	Backward Route

	// Observer is optional.
	Observer Observer
}

// Forwarder relays messages between two endpoints.
type Forwarder struct {
	poller      transport.Poller
	forward     route
	backward    route
	pollTimeout time.Duration
	maxPerPoll  int
	stats       *Stats
	observer    Observer
	dropLog     dropLogThrottle
	loggers     ldlog.Loggers
}

// dropLogThrottle limits how many drop reports are logged. It is only used by the Run goroutine.
type dropLogThrottle struct {
	limiter    *rate.Limiter
	suppressed int
}

type route struct {
	Route
	from  transport.Endpoint
	to    transport.Endpoint
	stats *RouteStats
	held  bool // waiting for the destination to become writable
}

// New creates a Forwarder for two endpoints. The poller must have been created for the same two
// endpoints in the same order.
func New(
	first, second transport.Endpoint,
	poller transport.Poller,
	options Options,
	loggers ldlog.Loggers,
) *Forwarder {
	stats := newStats(options.Forward.Name, options.Backward.Name)
	f := &Forwarder{
		poller:      poller,
		forward:     route{Route: options.Forward, from: first, to: second, stats: &stats.Forward},
		backward:    route{Route: options.Backward, from: second, to: first, stats: &stats.Backward},
		pollTimeout: options.PollTimeout,
		maxPerPoll:  options.MaxPerPoll,
		stats:       stats,
		observer:    options.Observer,
		dropLog:     dropLogThrottle{limiter: rate.NewLimiter(rate.Every(dropLogInterval), dropLogBurst)},
		loggers:     loggers,
	}
	if f.pollTimeout <= 0 {
		f.pollTimeout = DefaultPollTimeout
	}
	if f.maxPerPoll <= 0 {
		f.maxPerPoll = DefaultMaxPerPoll
	}
	if f.observer == nil {
		f.observer = nullObserver{}
	}
	return f
}

// Stats returns the counters owned by this Forwarder. They are safe to read while Run is active.
func (f *Forwarder) Stats() *Stats {
	return f.stats
}

// Run polls and forwards until the context is cancelled, in which case it returns nil, or until an
// endpoint reports a fatal error, which it returns.
//
// Run must not be called concurrently with itself; the endpoints are used only by the calling
// goroutine.
func (f *Forwarder) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		ready, err := f.poller.Poll(f.pollTimeout, f.wanted())
		if err != nil {
			pollErr := &TransferError{Class: ClassOf(err), Op: OpPoll, Err: err}
			switch pollErr.Class {
			case ClassTransient:
				continue
			case ClassFatal:
				return pollErr
			default:
				f.loggers.Errorf("Unexpected error while waiting for messages: %s", pollErr)
				f.pause(ctx)
				continue
			}
		}
		if ready.FirstIn || ready.SecondOut {
			if err := f.drain(&f.forward); err != nil {
				return err
			}
		}
		if ready.SecondIn || ready.FirstOut {
			if err := f.drain(&f.backward); err != nil {
				return err
			}
		}
	}
	return nil
}

// wanted returns the conditions to wait for: a message on the source of each route that can flow,
// and writability of the destination of each route that is held.
func (f *Forwarder) wanted() transport.Events {
	return transport.Events{
		FirstIn:   !f.forward.held,
		SecondOut: f.forward.held,
		SecondIn:  !f.backward.held,
		FirstOut:  f.backward.held,
	}
}

// drain moves up to maxPerPoll messages along a route, stopping early when the source is empty or the
// destination cannot accept another message. A message is only received once the destination has
// reported that it can be sent.
func (f *Forwarder) drain(r *route) error {
	r.held = false
	for i := 0; i < f.maxPerPoll; i++ {
		writable, err := r.to.Writable()
		if err != nil {
			checkErr := newTransferError(OpSend, r, nil, err)
			if checkErr.Class == ClassFatal {
				return checkErr
			}
			f.loggers.Debugf("Could not check destination, will wait: %s", checkErr)
		}
		if !writable {
			r.held = true
			f.loggers.Debugf("Route %s is waiting for its destination to accept messages", r.Name)
			return nil
		}
		err = f.transfer(r)
		if err == nil {
			continue
		}
		switch ClassOf(err) {
		case ClassTransient:
			return nil
		case ClassFatal:
			return err
		default:
			f.drop(r, err)
		}
	}
	return nil
}

func (f *Forwarder) transfer(r *route) error {
	msg, err := r.from.Receive()
	if err != nil {
		return newTransferError(OpReceive, r, nil, err)
	}
	if len(msg) == 0 {
		return newTransferError(OpReceive, r, msg, errEmptyMessage)
	}

	if err := r.to.Send(msg); err != nil {
		if !errors.Is(err, transport.ErrWouldBlock) {
			return newTransferError(OpSend, r, msg, err)
		}
		if r.DropWhenBlocked {
			return &TransferError{Class: ClassMessage, Op: OpSend, Route: r.Name, Frames: len(msg), Err: err}
		}
		r.stats.unrouted.Add(1)
		f.observer.MessageUnrouted(r.Name)
	}

	seq := r.stats.recordForwarded(msg.Size())
	f.observer.MessageForwarded(r.Name, msg.Size())

	if r.Inspect != nil {
		if err := inspect(r.Inspect, msg, seq); err != nil {
			f.loggers.Warnf("Could not describe message #%d: %s", seq,
				&TransferError{Class: ClassMessage, Op: OpInspect, Route: r.Name, Frames: len(msg), Err: err})
		}
	}
	return nil
}

func (f *Forwarder) drop(r *route, err error) {
	r.stats.dropped.Add(1)
	f.observer.MessageDropped(r.Name)
	if !f.dropLog.limiter.Allow() {
		f.dropLog.suppressed++
		return
	}
	suffix := ""
	if f.dropLog.suppressed > 0 {
		suffix = fmt.Sprintf(" (%d similar messages suppressed)", f.dropLog.suppressed)
		f.dropLog.suppressed = 0
	}
	if errors.Is(err, transport.ErrWouldBlock) {
		f.loggers.Warnf("Dropped message, destination not ready: %s%s", err, suffix)
		return
	}
	f.loggers.Errorf("Dropped message: %s%s", err, suffix)
}

func (f *Forwarder) pause(ctx context.Context) {
	timer := time.NewTimer(f.pollTimeout)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// inspect runs an Inspector, turning a panic into an error so that diagnostics can never stop the loop.
func inspect(fn Inspector, msg frames.Message, seq uint64) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic in inspector: %v", p)
		}
	}()
	return fn(msg, seq)
}

type nullObserver struct{}

func (nullObserver) MessageForwarded(string, int) {}
func (nullObserver) MessageDropped(string)        {}
func (nullObserver) MessageUnrouted(string)       {}
