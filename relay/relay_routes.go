package relay

import (
	"net/http"

	"github.com/relaymesh/relayd/internal/logging"
	"github.com/relaymesh/relayd/internal/util"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	"github.com/gorilla/mux"
)

// makeRouter creates the Router for the status port.
func (r *Relay) makeRouter() *mux.Router {
	router := mux.NewRouter()
	if r.loggers.GetMinLevel() == ldlog.Debug {
		router.Use(logging.RequestLoggerMiddleware(r.loggers))
	}
	router.Handle("/status", statusHandler(r)).Methods("GET")
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write(util.ErrorJSON("no such endpoint: %s", req.URL.Path))
	})
	return router
}
