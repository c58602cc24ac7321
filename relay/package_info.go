// Package relay contains the three forwarding relays (the request/reply broker, the publication proxy
// and the replication proxy) and the HTTP status endpoint they share.
//
// Each relay binds two endpoints and runs a forwarder.Forwarder between them. The relays differ only
// in their endpoint kinds, their ports and the diagnostics they log for each message.
//
// This package is not in internal/ so that a relay can be embedded in another application.
package relay
