package metrics

import (
	"go.opencensus.io/tag"
)

const (
	defaultMetricsPrefix = "relayd"
)

var (
	relayIDTagKey, _   = tag.NewKey("relayId")   //nolint:gochecknoglobals
	componentTagKey, _ = tag.NewKey("component") //nolint:gochecknoglobals
	routeTagKey, _     = tag.NewKey("route")     //nolint:gochecknoglobals

	relayTags = []tag.Key{componentTagKey, routeTagKey, relayIDTagKey} //nolint:gochecknoglobals
)
