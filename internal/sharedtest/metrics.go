package sharedtest

import (
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opencensus.io/stats/view"
)

// ViewRow is one flattened row of OpenCensus view data. Only the field matching the view's
// aggregation is filled in.
type ViewRow struct {
	View  string
	Tags  map[string]string
	Count int64
	Sum   float64
}

// ViewRecorder is an OpenCensus exporter that remembers the latest rows reported for every view.
//
// OpenCensus state is global, so tests should tag their measurements with something unique and match
// on those tags rather than on whole views.
type ViewRecorder struct {
	mu    sync.Mutex
	views map[string][]ViewRow
}

func NewViewRecorder() *ViewRecorder {
	return &ViewRecorder{views: make(map[string][]ViewRow)}
}

// Record registers the recorder for the duration of fn, with a reporting period short enough for
// tests to see data promptly.
func (r *ViewRecorder) Record(fn func()) {
	view.SetReportingPeriod(10 * time.Millisecond)
	view.RegisterExporter(r)
	defer view.UnregisterExporter(r)
	fn()
}

// ExportView implements view.Exporter.
func (r *ViewRecorder) ExportView(data *view.Data) {
	rows := make([]ViewRow, 0, len(data.Rows))
	for _, in := range data.Rows {
		row := ViewRow{View: data.View.Name, Tags: make(map[string]string, len(in.Tags))}
		for _, tag := range in.Tags {
			row.Tags[tag.Key.Name()] = tag.Value
		}
		switch agg := in.Data.(type) {
		case *view.CountData:
			row.Count = agg.Value
		case *view.SumData:
			row.Sum = agg.Value
		}
		rows = append(rows, row)
	}
	r.mu.Lock()
	r.views[data.View.Name] = rows
	r.mu.Unlock()
}

// HasRow reports whether the most recent export of row.View contained exactly this row.
func (r *ViewRecorder) HasRow(row ViewRow) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, have := range r.views[row.View] {
		if reflect.DeepEqual(have, row) {
			return true
		}
	}
	return false
}

// RequireRows fails the test unless all of the given rows show up within the timeout.
func (r *ViewRecorder) RequireRows(t *testing.T, timeout time.Duration, rows ...ViewRow) {
	t.Helper()
	allPresent := func() bool {
		for _, row := range rows {
			if !r.HasRow(row) {
				return false
			}
		}
		return true
	}
	if !assert.Eventually(t, allPresent, timeout, 10*time.Millisecond) {
		t.Fatalf("wanted rows %+v\nlast exported: %s", rows, r.dump())
	}
}

func (r *ViewRecorder) dump() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fmt.Sprintf("%+v", r.views)
}
