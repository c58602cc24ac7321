package forwarder

import (
	"context"
	"errors"
	"fmt"

	"github.com/relaymesh/relayd/internal/frames"
	"github.com/relaymesh/relayd/internal/transport"
)

// Class is the handling category of an error seen by the forwarding loop.
type Class int

const (
	// ClassTransient errors mean there was nothing to do right now. They are not logged.
	ClassTransient Class = iota
	// ClassMessage errors affect a single message, which is logged and dropped. The loop continues.
	ClassMessage
	// ClassFatal errors mean the endpoints can no longer be used. The loop returns the error.
	ClassFatal
)

func (c Class) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassMessage:
		return "message"
	case ClassFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Op is the step of a transfer during which an error occurred.
type Op string

const (
	OpPoll    Op = "poll"
	OpReceive Op = "receive"
	OpSend    Op = "send"
	OpInspect Op = "inspect"
)

var errEmptyMessage = errors.New("received a message with no frames")

// TransferError describes a failure while moving one message along a route.
type TransferError struct {
	Class Class
	Op    Op
	// Route is the name of the route, such as "frontend->backend". It is empty for poll errors.
	Route string
	// Frames is the number of frames in the affected message, or zero if none had been received.
	Frames int
	Err    error
}

func (e *TransferError) Error() string {
	if e.Route == "" {
		return fmt.Sprintf("%s failed: %s", e.Op, e.Err)
	}
	if e.Frames == 0 {
		return fmt.Sprintf("%s failed on route %s: %s", e.Op, e.Route, e.Err)
	}
	return fmt.Sprintf("%s failed on route %s (%d frames): %s", e.Op, e.Route, e.Frames, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// ClassOf returns the handling category of any error. A *TransferError anywhere in the chain carries
// its own class; otherwise transport and context errors are recognized, and everything else is
// treated as affecting a single message.
func ClassOf(err error) Class {
	if err == nil {
		return ClassTransient
	}
	var te *TransferError
	if errors.As(err, &te) {
		return te.Class
	}
	switch {
	case errors.Is(err, transport.ErrWouldBlock), errors.Is(err, transport.ErrInterrupted):
		return ClassTransient
	case errors.Is(err, transport.ErrClosed), errors.Is(err, context.Canceled):
		return ClassFatal
	default:
		return ClassMessage
	}
}

func newTransferError(op Op, r *route, msg frames.Message, err error) *TransferError {
	return &TransferError{Class: ClassOf(err), Op: op, Route: r.Name, Frames: len(msg), Err: err}
}
