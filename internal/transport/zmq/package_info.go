// Package zmq implements the transport interfaces on ZeroMQ sockets, using github.com/pebbe/zmq4.
//
// This is the only package in the relay that requires cgo and libzmq.
package zmq
