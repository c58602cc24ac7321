package zmq

import (
	"errors"
	"fmt"
	"sync"
	"syscall"
	"time"

	"github.com/pebbe/zmq4"

	"github.com/relaymesh/relayd/internal/frames"
	"github.com/relaymesh/relayd/internal/transport"
)

// Socket is a bound ZeroMQ socket. Receive and Send never block.
type Socket struct {
	name   string
	socket *zmq4.Socket
	closed bool
	lock   sync.Mutex
}

type poller struct {
	poller            *zmq4.Poller
	first, second     *zmq4.Socket
	firstID, secondID int
}

// Name implements transport.Endpoint.
func (s *Socket) Name() string {
	return s.name
}

// Receive implements transport.Endpoint.
func (s *Socket) Receive() (frames.Message, error) {
	parts, err := s.socket.RecvMessageBytes(zmq4.DONTWAIT)
	if err != nil {
		return nil, mapError(err)
	}
	return frames.Message(parts), nil
}

// Send implements transport.Endpoint.
func (s *Socket) Send(msg frames.Message) error {
	if _, err := s.socket.SendMessageDontwait([][]byte(msg)); err != nil {
		return mapError(err)
	}
	return nil
}

// Writable implements transport.Endpoint.
func (s *Socket) Writable() (bool, error) {
	events, err := s.socket.GetEvents()
	if err != nil {
		return false, mapError(err)
	}
	return events&zmq4.POLLOUT != 0, nil
}

// Close implements transport.Endpoint. It is safe to call more than once.
func (s *Socket) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.socket.Close()
}

func (p *poller) Poll(timeout time.Duration, want transport.Events) (transport.Events, error) {
	var ready transport.Events
	if _, err := p.poller.Update(p.firstID, pollState(want.FirstIn, want.FirstOut)); err != nil {
		return ready, mapError(err)
	}
	if _, err := p.poller.Update(p.secondID, pollState(want.SecondIn, want.SecondOut)); err != nil {
		return ready, mapError(err)
	}
	polled, err := p.poller.Poll(timeout)
	if err != nil {
		return ready, mapError(err)
	}
	for _, item := range polled {
		in, out := item.Events&zmq4.POLLIN != 0, item.Events&zmq4.POLLOUT != 0
		switch item.Socket {
		case p.first:
			ready.FirstIn = in && want.FirstIn
			ready.FirstOut = out && want.FirstOut
		case p.second:
			ready.SecondIn = in && want.SecondIn
			ready.SecondOut = out && want.SecondOut
		}
	}
	return ready, nil
}

func pollState(in, out bool) zmq4.State {
	var state zmq4.State
	if in {
		state |= zmq4.POLLIN
	}
	if out {
		state |= zmq4.POLLOUT
	}
	return state
}

// mapError translates libzmq errors into the transport package's error values, so that callers can
// classify them with errors.Is.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, zmq4.ErrorSocketClosed) || errors.Is(err, zmq4.ErrorContextClosed) {
		return fmt.Errorf("%w: %s", transport.ErrClosed, err)
	}
	switch zmq4.AsErrno(err) {
	case zmq4.Errno(syscall.EAGAIN):
		return transport.ErrWouldBlock
	case zmq4.Errno(syscall.EINTR):
		return transport.ErrInterrupted
	case zmq4.ETERM, zmq4.Errno(syscall.ENOTSOCK):
		return fmt.Errorf("%w: %s", transport.ErrClosed, err)
	default:
		return err
	}
}
