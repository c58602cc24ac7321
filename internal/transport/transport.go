package transport

import (
	"errors"
	"fmt"
	"time"

	"github.com/relaymesh/relayd/internal/frames"
)

var (
	// ErrWouldBlock means that a non-blocking receive found nothing to read, or a non-blocking send
	// could not be queued.
	ErrWouldBlock = errors.New("operation would block")

	// ErrInterrupted means that a wait was interrupted by a signal before anything became ready.
	ErrInterrupted = errors.New("operation interrupted")

	// ErrClosed means that the endpoint, or the transport context that owns it, has been shut down.
	ErrClosed = errors.New("endpoint closed")
)

// Kind identifies the messaging pattern of an endpoint.
type Kind int

const (
	// Router is an identity-tracking endpoint: every received message is prefixed with the routing
	// token of the connection it came from, and every sent message is addressed by its first frame.
	Router Kind = iota + 1
	// Dealer is an anonymous endpoint that load-balances outbound messages across its peers.
	Dealer
	// XPub is the fanout side of a pub/sub relay. Receiving from it yields subscription-control frames.
	XPub
	// XSub is the aggregation side of a pub/sub relay. Sending subscription-control frames to it
	// propagates them upstream to publishers.
	XSub
	// Req, Rep, Pub and Sub are the plain client patterns. The relays never bind them; they exist for
	// peers and tests.
	Req
	Rep
	Pub
	Sub
)

func (k Kind) String() string {
	switch k {
	case Router:
		return "ROUTER"
	case Dealer:
		return "DEALER"
	case XPub:
		return "XPUB"
	case XSub:
		return "XSUB"
	case Req:
		return "REQ"
	case Rep:
		return "REP"
	case Pub:
		return "PUB"
	case Sub:
		return "SUB"
	default:
		return "UNKNOWN"
	}
}

// Endpoint is one bound side of a relay.
//
// Receive and Send never block. Receive returns ErrWouldBlock if no complete message is available;
// Send returns ErrWouldBlock if the message cannot be queued right now. A message is always received
// or sent as a whole.
type Endpoint interface {
	// Name returns a human-readable description such as "XPUB tcp://*:5558".
	Name() string
	Receive() (frames.Message, error)
	Send(msg frames.Message) error
	// Writable reports whether at least one message could be queued by Send right now. ROUTER, XPUB
	// and XSUB endpoints discard what they cannot deliver, so they always report true.
	Writable() (bool, error)
	Close() error
}

// Events is a set of readiness conditions on the two endpoints of a Poller: In means a message is
// ready to receive, Out means a message could be sent.
type Events struct {
	FirstIn   bool
	FirstOut  bool
	SecondIn  bool
	SecondOut bool
}

// Any reports whether any condition is set.
func (e Events) Any() bool {
	return e.FirstIn || e.FirstOut || e.SecondIn || e.SecondOut
}

// Poller waits for readiness on the two endpoints it was created with.
type Poller interface {
	// Poll waits up to timeout until at least one of the wanted conditions holds on the first or
	// second endpoint, in the order they were given to Binder.NewPoller, and reports which of the
	// wanted conditions hold. Conditions that were not wanted are never reported. A timeout is not an
	// error and reports no events.
	Poll(timeout time.Duration, want Events) (Events, error)
}

// Binder creates bound endpoints and owns whatever transport-level resources they share.
type Binder interface {
	Bind(kind Kind, address string) (Endpoint, error)
	NewPoller(first, second Endpoint) (Poller, error)
	// Close releases the shared transport resources. Endpoints must be closed first.
	Close() error
}

// TCPAddress builds a transport address for binding on the given host and port. A host of "" or "*"
// means all interfaces.
func TCPAddress(host string, port int) string {
	if host == "" {
		host = "*"
	}
	return fmt.Sprintf("tcp://%s:%d", host, port)
}
