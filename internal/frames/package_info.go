// Package frames contains the multipart message model shared by all relays, and the best-effort
// decoders used to describe messages in logs: subscription-control frames, publisher prefixes and
// replication envelopes.
//
// Nothing in this package is allowed to influence whether or how a message is forwarded. Every
// decoder is side-effect free and only reads the frames it is given.
package frames
