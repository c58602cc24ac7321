// Package transport defines the contract between the forwarding loop and the messaging transport:
// bound endpoints that exchange whole multipart messages, a readiness poller over a pair of them,
// and the small set of errors that the loop needs to tell apart.
//
// This package has no dependency on any particular messaging library, so that the forwarding logic
// can be tested with in-memory endpoints. The ZeroMQ implementation is in the zmq subpackage.
package transport
