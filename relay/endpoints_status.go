package relay

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/relaymesh/relayd/internal/api"
	"github.com/relaymesh/relayd/internal/version"

	"github.com/launchdarkly/go-sdk-common/v3/ldtime"
)

func statusHandler(r *Relay) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		resp := api.StatusRep{
			Component:     r.spec.name,
			Status:        api.StatusStopped,
			Version:       version.Version,
			RelayID:       r.metricsManager.RelayID(),
			StartTime:     ldtime.UnixMillisFromTime(r.startTime),
			UptimeSeconds: int64(time.Since(r.startTime) / time.Second),
			Endpoints:     r.endpointStatusReps(),
			Routes:        api.MakeRouteStatusReps(r.Stats().Snapshot()),
		}
		if r.isRunning() {
			resp.Status = api.StatusRunning
		}

		data, _ := json.Marshal(resp)
		_, _ = w.Write(data)
	})
}
