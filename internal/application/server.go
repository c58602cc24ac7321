package application

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

const readHeaderTimeout = 10 * time.Second

// StartHTTPServer starts the server. It returns immediately, starting the server on a separate
// goroutine; if the server fails to start up or stops unexpectedly, it sends an error to the error
// channel. Stopping it with Shutdown or Close does not produce an error.
func StartHTTPServer(
	port int,
	handler http.Handler,
	loggers ldlog.Loggers,
) (*http.Server, <-chan error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		loggers.Infof("Starting server listening on port %d", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	return srv, errCh
}
