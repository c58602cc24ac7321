package metrics

import (
	"go.opencensus.io/stats"
)

var (
	forwardedMessagesMeasure = stats.Int64( //nolint:gochecknoglobals
		"forwarded_messages", "messages forwarded", stats.UnitDimensionless)
	forwardedBytesMeasure = stats.Int64( //nolint:gochecknoglobals
		"forwarded_bytes", "total size of forwarded messages", stats.UnitBytes)
	droppedMessagesMeasure = stats.Int64( //nolint:gochecknoglobals
		"dropped_messages", "messages dropped because of a receive or send failure", stats.UnitDimensionless)
	unroutedMessagesMeasure = stats.Int64( //nolint:gochecknoglobals
		"unrouted_messages", "messages the destination could not accept immediately", stats.UnitDimensionless)
)
