package zmq

import (
	"fmt"
	"sync"
	"time"

	"github.com/pebbe/zmq4"

	"github.com/relaymesh/relayd/internal/transport"
)

// SocketOptions are applied to every socket created by a Binder. Zero values leave the libzmq
// default in place, except for Linger, which is always applied.
type SocketOptions struct {
	// Linger is how long a closed socket may keep trying to deliver queued messages.
	Linger     time.Duration
	SendHWM    int
	ReceiveHWM int
}

// Binder creates bound ZeroMQ sockets that share one zmq4.Context.
type Binder struct {
	context *zmq4.Context
	options SocketOptions
	sockets []*Socket
	closed  bool
	lock    sync.Mutex
}

var socketTypes = map[transport.Kind]zmq4.Type{ //nolint:gochecknoglobals
	transport.Router: zmq4.ROUTER,
	transport.Dealer: zmq4.DEALER,
	transport.XPub:   zmq4.XPUB,
	transport.XSub:   zmq4.XSUB,
	transport.Req:    zmq4.REQ,
	transport.Rep:    zmq4.REP,
	transport.Pub:    zmq4.PUB,
	transport.Sub:    zmq4.SUB,
}

// NewBinder creates a ZeroMQ context.
func NewBinder(options SocketOptions) (*Binder, error) {
	context, err := zmq4.NewContext()
	if err != nil {
		return nil, fmt.Errorf("could not create ZeroMQ context: %w", err)
	}
	return &Binder{context: context, options: options}, nil
}

// Bind implements transport.Binder.
func (b *Binder) Bind(kind transport.Kind, address string) (transport.Endpoint, error) {
	zmqType, ok := socketTypes[kind]
	if !ok {
		return nil, fmt.Errorf("unsupported socket kind %d", int(kind))
	}

	b.lock.Lock()
	defer b.lock.Unlock()
	if b.closed {
		return nil, transport.ErrClosed
	}

	zs, err := b.context.NewSocket(zmqType)
	if err != nil {
		return nil, fmt.Errorf("could not create %s socket: %w", kind, mapError(err))
	}
	if err := b.applyOptions(zs); err != nil {
		_ = zs.Close()
		return nil, fmt.Errorf("could not configure %s socket: %w", kind, err)
	}
	if err := zs.Bind(address); err != nil {
		_ = zs.Close()
		return nil, fmt.Errorf("could not bind %s socket to %s: %w", kind, address, err)
	}

	s := &Socket{name: kind.String() + " " + address, socket: zs}
	b.sockets = append(b.sockets, s)
	return s, nil
}

func (b *Binder) applyOptions(zs *zmq4.Socket) error {
	if err := zs.SetLinger(b.options.Linger); err != nil {
		return err
	}
	if b.options.SendHWM > 0 {
		if err := zs.SetSndhwm(b.options.SendHWM); err != nil {
			return err
		}
	}
	if b.options.ReceiveHWM > 0 {
		if err := zs.SetRcvhwm(b.options.ReceiveHWM); err != nil {
			return err
		}
	}
	return nil
}

// NewPoller implements transport.Binder. Both endpoints must have been created by this package.
func (b *Binder) NewPoller(first, second transport.Endpoint) (transport.Poller, error) {
	s1, ok1 := first.(*Socket)
	s2, ok2 := second.(*Socket)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("can only poll ZeroMQ sockets")
	}
	p := &poller{poller: zmq4.NewPoller(), first: s1.socket, second: s2.socket}
	p.firstID = p.poller.Add(s1.socket, 0)
	p.secondID = p.poller.Add(s2.socket, 0)
	return p, nil
}

// Close closes any sockets that are still open and terminates the context. It is safe to call more
// than once.
func (b *Binder) Close() error {
	b.lock.Lock()
	if b.closed {
		b.lock.Unlock()
		return nil
	}
	b.closed = true
	sockets := b.sockets
	b.sockets = nil
	b.lock.Unlock()

	for _, s := range sockets {
		_ = s.Close()
	}
	return b.context.Term()
}
