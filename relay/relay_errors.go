package relay

import (
	"errors"
	"fmt"
)

var (
	errAlreadyClosed  = errors.New("this relay was already shut down")
	errAlreadyRunning = errors.New("this relay is already running")
)

func errCreateTransportFailed(err error) error {
	return fmt.Errorf("unable to create transport: %w", err)
}

func errNewMetricsManagerFailed(err error) error {
	return fmt.Errorf("unable to create metrics manager: %w", err)
}

func errBindFailed(role string, err error) error {
	return fmt.Errorf("unable to bind %s endpoint: %w", role, err)
}

func errNewPollerFailed(err error) error {
	return fmt.Errorf("unable to create poller: %w", err)
}
