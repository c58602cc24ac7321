package frames

import (
	"strings"
	"unicode/utf8"
)

// Message is an ordered, non-empty sequence of opaque frames that is delivered as a unit.
//
// Relays pass a Message from one endpoint to another exactly as received; they never copy, split,
// merge or reorder its frames.
type Message [][]byte

// Size returns the total number of payload bytes across all frames.
func (m Message) Size() int {
	n := 0
	for _, f := range m {
		n += len(f)
	}
	return n
}

// Frame returns the frame at index i, or nil if there is no such frame.
func (m Message) Frame(i int) []byte {
	if i < 0 || i >= len(m) {
		return nil
	}
	return m[i]
}

// Equal reports whether two messages have the same frame count and identical frame contents.
func (m Message) Equal(other Message) bool {
	if len(m) != len(other) {
		return false
	}
	for i := range m {
		if string(m[i]) != string(other[i]) {
			return false
		}
	}
	return true
}

// Strings builds a Message from string frames. It is mostly a convenience for tests and peers.
func Strings(parts ...string) Message {
	m := make(Message, len(parts))
	for i, p := range parts {
		m[i] = []byte(p)
	}
	return m
}

// Text renders a frame for a log line. Invalid UTF-8 sequences are replaced rather than rejected.
func Text(frame []byte) string {
	if utf8.Valid(frame) {
		return string(frame)
	}
	return strings.ToValidUTF8(string(frame), "�")
}

// PublisherID returns the part of a publication topic frame before the first ':' separator. The
// second return value is false if the frame is not valid UTF-8 or has no separator.
//
// Publishers tag posts as "<user>:<payload>" (and private messages as "<user>:PM:<payload>"), so the
// prefix identifies the user the post belongs to.
func PublisherID(frame []byte) (string, bool) {
	if !utf8.Valid(frame) {
		return "", false
	}
	s := string(frame)
	i := strings.IndexByte(s, ':')
	if i < 0 {
		return "", false
	}
	return s[:i], true
}
