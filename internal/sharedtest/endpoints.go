package sharedtest

import (
	"fmt"
	"sync"
	"time"

	"github.com/relaymesh/relayd/internal/frames"
	"github.com/relaymesh/relayd/internal/transport"
)

const memoryEndpointCapacity = 100

// MemoryBinder is an in-memory implementation of transport.Binder. Each bound address gets a
// MemoryEndpoint that tests can feed with inbound messages and read outbound messages from.
type MemoryBinder struct {
	endpoints  map[string]*MemoryEndpoint
	bindErrors map[string]error
	closed     bool
	lock       sync.Mutex
}

// MemoryEndpoint is an in-memory transport.Endpoint.
//
// Messages passed to Deliver are what the relay will Receive; messages the relay Sends can be read
// from SentMessages.
type MemoryEndpoint struct {
	Kind       transport.Kind
	Address    string
	sent       chan frames.Message
	inbound    chan frames.Message
	sendFaults []error
	blocked    bool
	closed     bool
	lock       sync.Mutex
}

type memoryPoller struct {
	first, second *MemoryEndpoint
}

// NewMemoryBinder creates a MemoryBinder with no endpoints.
func NewMemoryBinder() *MemoryBinder {
	return &MemoryBinder{
		endpoints:  make(map[string]*MemoryEndpoint),
		bindErrors: make(map[string]error),
	}
}

// FailBind causes a future Bind for this address to return the given error.
func (b *MemoryBinder) FailBind(address string, err error) {
	b.lock.Lock()
	b.bindErrors[address] = err
	b.lock.Unlock()
}

// Bind implements transport.Binder.
func (b *MemoryBinder) Bind(kind transport.Kind, address string) (transport.Endpoint, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if err := b.bindErrors[address]; err != nil {
		return nil, err
	}
	if _, exists := b.endpoints[address]; exists {
		return nil, fmt.Errorf("address already in use: %s", address)
	}
	e := &MemoryEndpoint{
		Kind:    kind,
		Address: address,
		sent:    make(chan frames.Message, memoryEndpointCapacity),
		inbound: make(chan frames.Message, memoryEndpointCapacity),
	}
	b.endpoints[address] = e
	return e, nil
}

// Endpoint returns the endpoint bound to an address, or nil.
func (b *MemoryBinder) Endpoint(address string) *MemoryEndpoint {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.endpoints[address]
}

// NewPoller implements transport.Binder.
func (b *MemoryBinder) NewPoller(first, second transport.Endpoint) (transport.Poller, error) {
	e1, ok1 := first.(*MemoryEndpoint)
	e2, ok2 := second.(*MemoryEndpoint)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("MemoryBinder can only poll MemoryEndpoints")
	}
	return &memoryPoller{first: e1, second: e2}, nil
}

// Close implements transport.Binder.
func (b *MemoryBinder) Close() error {
	b.lock.Lock()
	b.closed = true
	b.lock.Unlock()
	return nil
}

// IsClosed returns true if Close has been called.
func (b *MemoryBinder) IsClosed() bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.closed
}

// Name implements transport.Endpoint.
func (e *MemoryEndpoint) Name() string {
	return e.Kind.String() + " " + e.Address
}

// Deliver queues a message as if a connected peer had sent it to this endpoint.
func (e *MemoryEndpoint) Deliver(msg frames.Message) {
	e.inbound <- msg
}

// SentMessages returns the channel of messages that have been sent through this endpoint.
func (e *MemoryEndpoint) SentMessages() <-chan frames.Message {
	return e.sent
}

// FailNextSend causes the next call to Send to return the given error without sending anything.
// Calls accumulate, so each one affects one more send.
func (e *MemoryEndpoint) FailNextSend(err error) {
	e.lock.Lock()
	e.sendFaults = append(e.sendFaults, err)
	e.lock.Unlock()
}

// SetBlocked makes every Send return transport.ErrWouldBlock until it is called again with false.
// Endpoints of a kind that can apply backpressure, such as DEALER, also report that they are not
// writable while blocked; ROUTER, XPUB and XSUB endpoints keep reporting that they are writable.
func (e *MemoryEndpoint) SetBlocked(blocked bool) {
	e.lock.Lock()
	e.blocked = blocked
	e.lock.Unlock()
}

// Receive implements transport.Endpoint.
func (e *MemoryEndpoint) Receive() (frames.Message, error) {
	if e.IsClosed() {
		return nil, transport.ErrClosed
	}
	select {
	case msg := <-e.inbound:
		return msg, nil
	default:
		return nil, transport.ErrWouldBlock
	}
}

// Send implements transport.Endpoint.
func (e *MemoryEndpoint) Send(msg frames.Message) error {
	e.lock.Lock()
	if e.closed {
		e.lock.Unlock()
		return transport.ErrClosed
	}
	if len(e.sendFaults) > 0 {
		err := e.sendFaults[0]
		e.sendFaults = e.sendFaults[1:]
		e.lock.Unlock()
		return err
	}
	blocked := e.blocked
	e.lock.Unlock()
	if blocked {
		return transport.ErrWouldBlock
	}
	select {
	case e.sent <- msg:
		return nil
	default:
		return transport.ErrWouldBlock
	}
}

// Writable implements transport.Endpoint.
func (e *MemoryEndpoint) Writable() (bool, error) {
	e.lock.Lock()
	defer e.lock.Unlock()
	if e.closed {
		return false, transport.ErrClosed
	}
	return e.writableLocked(), nil
}

func (e *MemoryEndpoint) writableLocked() bool {
	switch e.Kind {
	case transport.Router, transport.XPub, transport.XSub:
		return true
	default:
		return !e.blocked && len(e.sent) < cap(e.sent)
	}
}

// Close implements transport.Endpoint.
func (e *MemoryEndpoint) Close() error {
	e.lock.Lock()
	e.closed = true
	e.lock.Unlock()
	return nil
}

// IsClosed returns true if Close has been called.
func (e *MemoryEndpoint) IsClosed() bool {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.closed
}

func (e *MemoryEndpoint) ready() bool {
	return len(e.inbound) > 0
}

func (e *MemoryEndpoint) writable() bool {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.writableLocked()
}

func (p *memoryPoller) Poll(timeout time.Duration, want transport.Events) (transport.Events, error) {
	deadline := time.Now().Add(timeout)
	for {
		if p.first.IsClosed() || p.second.IsClosed() {
			return transport.Events{}, transport.ErrClosed
		}
		ready := transport.Events{
			FirstIn:   want.FirstIn && p.first.ready(),
			FirstOut:  want.FirstOut && p.first.writable(),
			SecondIn:  want.SecondIn && p.second.ready(),
			SecondOut: want.SecondOut && p.second.writable(),
		}
		if ready.Any() || !time.Now().Before(deadline) {
			return ready, nil
		}
		time.Sleep(time.Millisecond)
	}
}
