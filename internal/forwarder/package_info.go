// Package forwarder implements the bidirectional frame relay that all three relay processes are built
// on: a single-goroutine loop that polls two endpoints with a bounded timeout and, for each readable
// endpoint, moves whole multipart messages to the other endpoint without modifying them.
//
// The loop never exits because of a single message. Failures are classified (see Class) so that
// "nothing to read" is silent, a bad message is logged and dropped, and only a closed transport or
// a cancelled context ends the loop.
package forwarder
