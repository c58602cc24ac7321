package application

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/relaymesh/relayd/config"
	"github.com/relaymesh/relayd/internal/logging"
	"github.com/relaymesh/relayd/internal/version"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

// Process is a constructed relay, ready to run.
type Process interface {
	Runner
	// StatusHandler returns the HTTP handler served on the status port.
	StatusHandler() http.Handler
	Close() error
}

// ProcessFactory constructs a Process. It returns an error if the process cannot start, for instance
// because one of its ports is unavailable.
type ProcessFactory func(c config.Config, loggers ldlog.Loggers) (Process, error)

// Launch implements the main function of a relay executable: it reads the command line and
// configuration, creates the process, runs it until SIGINT or SIGTERM, and closes it. The return
// value is the process exit code.
func Launch(args []string, stderr io.Writer, description string, factory ProcessFactory) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return launch(ctx, args, stderr, description, factory, nil)
}

func launch(
	ctx context.Context,
	args []string,
	stderr io.Writer,
	description string,
	factory ProcessFactory,
	loggersOverride *ldlog.Loggers,
) int {
	opts, err := ReadOptions(args, stderr)
	if err != nil {
		_, _ = io.WriteString(stderr, err.Error()+"\n")
		return 1
	}

	bootLoggers := config.DefaultLoggers
	if loggersOverride != nil {
		bootLoggers = *loggersOverride
	}

	var c config.Config
	if opts.ConfigFile != "" {
		if err := config.LoadConfigFile(&c, opts.ConfigFile); err != nil {
			bootLoggers.Errorf("Error loading config file: %s", err)
			return 1
		}
	}
	if opts.UseEnvironment {
		if err := config.LoadConfigFromEnvironment(&c); err != nil {
			bootLoggers.Errorf("Configuration error: %s", err)
			return 1
		}
	}

	loggers := bootLoggers
	if loggersOverride == nil {
		fileLoggers, logFile, err := logging.MakeLoggers(c.Main.LogFile)
		if err != nil {
			bootLoggers.Errorf("Error opening log file: %s", err)
			return 1
		}
		defer logFile.Close() //nolint:errcheck
		loggers = fileLoggers
	}
	if c.Main.LogLevel.IsDefined() {
		loggers.SetMinLevel(c.Main.LogLevel.GetOrElse(ldlog.Info))
	}

	loggers.Infof("Starting %s version %s with %s",
		description, DescribeRelayVersion(version.Version), opts.DescribeConfigSource())

	p, err := factory(c, loggers)
	if err != nil {
		loggers.Errorf("Unable to start %s: %s", description, err)
		return 1
	}
	defer p.Close() //nolint:errcheck

	if c.Main.ExitAlways {
		loggers.Info("Exiting after startup because ExitAlways is set")
		return 0
	}

	var srv *http.Server
	var serverErrs <-chan error
	if c.Main.StatusPort.IsDefined() {
		srv, serverErrs = StartHTTPServer(c.Main.StatusPort.GetOrElse(0), p.StatusHandler(), loggers)
	}

	if err := RunWithServer(ctx, p, srv, serverErrs); err != nil {
		loggers.Errorf("Stopped %s because of an error: %s", description, err)
		return 1
	}
	loggers.Info("Shutting down")
	return 0
}
