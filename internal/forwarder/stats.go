package forwarder

import "sync/atomic"

// RouteStats holds the process-lifetime counters for one direction of a relay. The forwarding loop
// is the only writer; readers such as the status endpoint may load values at any time.
type RouteStats struct {
	name      string
	forwarded atomic.Uint64
	dropped   atomic.Uint64
	unrouted  atomic.Uint64
	bytes     atomic.Uint64
}

// RouteSnapshot is a point-in-time copy of RouteStats.
type RouteSnapshot struct {
	Route     string `json:"route"`
	Forwarded uint64 `json:"forwarded"`
	Dropped   uint64 `json:"dropped"`
	Unrouted  uint64 `json:"unrouted"`
	Bytes     uint64 `json:"bytes"`
}

// Stats holds the counters for both directions of a relay.
type Stats struct {
	Forward  RouteStats
	Backward RouteStats
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Forward  RouteSnapshot `json:"forward"`
	Backward RouteSnapshot `json:"backward"`
}

func newStats(forwardName, backwardName string) *Stats {
	s := &Stats{}
	s.Forward.name = forwardName
	s.Backward.name = backwardName
	return s
}

// Snapshot returns the current counter values. The two routes are read independently, so the result
// is not an atomic view of both.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{Forward: s.Forward.Snapshot(), Backward: s.Backward.Snapshot()}
}

// Snapshot returns the current counter values for this route.
func (rs *RouteStats) Snapshot() RouteSnapshot {
	return RouteSnapshot{
		Route:     rs.name,
		Forwarded: rs.forwarded.Load(),
		Dropped:   rs.dropped.Load(),
		Unrouted:  rs.unrouted.Load(),
		Bytes:     rs.bytes.Load(),
	}
}

func (rs *RouteStats) recordForwarded(size int) uint64 {
	rs.bytes.Add(uint64(size))
	return rs.forwarded.Add(1)
}
