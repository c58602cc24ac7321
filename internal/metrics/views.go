package metrics

import (
	"sync"

	"go.opencensus.io/stats/view"
)

var (
	forwardedMessagesView = &view.View{ //nolint:gochecknoglobals
		Measure:     forwardedMessagesMeasure,
		Aggregation: view.Count(),
		TagKeys:     relayTags,
	}
	forwardedBytesView = &view.View{ //nolint:gochecknoglobals
		Measure:     forwardedBytesMeasure,
		Aggregation: view.Sum(),
		TagKeys:     relayTags,
	}
	droppedMessagesView = &view.View{ //nolint:gochecknoglobals
		Measure:     droppedMessagesMeasure,
		Aggregation: view.Count(),
		TagKeys:     relayTags,
	}
	unroutedMessagesView = &view.View{ //nolint:gochecknoglobals
		Measure:     unroutedMessagesMeasure,
		Aggregation: view.Count(),
		TagKeys:     relayTags,
	}

	registerViewsOnce sync.Once //nolint:gochecknoglobals
)

func getViews() []*view.View {
	return []*view.View{forwardedMessagesView, forwardedBytesView, droppedMessagesView, unroutedMessagesView}
}
