package application

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

const serverShutdownTimeout = 5 * time.Second

// Runner is anything with a blocking main loop that stops when its context is cancelled.
type Runner interface {
	Run(ctx context.Context) error
}

func errServerFailed(err error) error {
	return fmt.Errorf("HTTP server failed: %w", err)
}

// RunWithServer runs r until ctx is cancelled or r returns. If srv is not nil, it is served alongside
// r: a failure reported on serverErrs stops r, and when r stops the server is shut down. The first
// error from either one is returned.
func RunWithServer(ctx context.Context, r Runner, srv *http.Server, serverErrs <-chan error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return r.Run(gctx)
	})
	if srv != nil {
		g.Go(func() error {
			select {
			case err := <-serverErrs:
				return errServerFailed(err)
			case <-gctx.Done():
				shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), serverShutdownTimeout)
				defer cancelShutdown()
				_ = srv.Shutdown(shutdownCtx)
				return nil
			}
		})
	}
	return g.Wait()
}
