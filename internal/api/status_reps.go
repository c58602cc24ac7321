// Package api contains JSON representations that are part of the relays' HTTP interface.
package api

import (
	"github.com/launchdarkly/go-sdk-common/v3/ldtime"

	"github.com/relaymesh/relayd/internal/forwarder"
)

const (
	// StatusRunning means the forwarding loop is active.
	StatusRunning = "running"

	// StatusStopped means the forwarding loop has not started yet or has exited.
	StatusStopped = "stopped"
)

// StatusRep is the JSON representation returned by the status endpoint.
//
// This is exported for use in integration test code.
type StatusRep struct {
	Component     string                     `json:"component"`
	Status        string                     `json:"status"`
	Version       string                     `json:"version"`
	RelayID       string                     `json:"relayId,omitempty"`
	StartTime     ldtime.UnixMillisecondTime `json:"startTime"`
	UptimeSeconds int64                      `json:"uptimeSeconds"`
	Endpoints     []EndpointStatusRep        `json:"endpoints"`
	Routes        []RouteStatusRep           `json:"routes"`
}

// EndpointStatusRep describes one bound endpoint of a relay.
//
// This is exported for use in integration test code.
type EndpointStatusRep struct {
	Role    string `json:"role"`
	Kind    string `json:"kind"`
	Address string `json:"address"`
}

// RouteStatusRep is the counter representation for one direction of a relay.
//
// This is exported for use in integration test code.
type RouteStatusRep struct {
	Name      string `json:"name"`
	Forwarded uint64 `json:"forwarded"`
	Dropped   uint64 `json:"dropped"`
	Unrouted  uint64 `json:"unrouted"`
	Bytes     uint64 `json:"bytes"`
}

// MakeRouteStatusReps converts a counter snapshot into its JSON representation, forward route first.
func MakeRouteStatusReps(snapshot forwarder.StatsSnapshot) []RouteStatusRep {
	return []RouteStatusRep{makeRouteStatusRep(snapshot.Forward), makeRouteStatusRep(snapshot.Backward)}
}

func makeRouteStatusRep(s forwarder.RouteSnapshot) RouteStatusRep {
	return RouteStatusRep{
		Name:      s.Route,
		Forwarded: s.Forwarded,
		Dropped:   s.Dropped,
		Unrouted:  s.Unrouted,
		Bytes:     s.Bytes,
	}
}
