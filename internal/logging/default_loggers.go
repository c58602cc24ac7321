package logging

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// MakeDefaultLoggers returns a Loggers instance configured with the standard log format.
// Output goes to stdout, except Error level which goes to stderr. Debug level is disabled.
func MakeDefaultLoggers() ldlog.Loggers {
	return makeLoggers(os.Stdout, os.Stderr)
}

// MakeLoggers is like MakeDefaultLoggers, but if logFile is not empty, every message is also appended
// to that file. The returned Closer closes the file; it should be called only after the loggers are
// no longer in use.
func MakeLoggers(logFile string) (ldlog.Loggers, io.Closer, error) {
	if logFile == "" {
		return MakeDefaultLoggers(), closerFunc(func() error { return nil }), nil
	}
	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec
	if err != nil {
		return ldlog.Loggers{}, nil, fmt.Errorf("could not open log file %q: %w", logFile, err)
	}
	return makeLoggers(io.MultiWriter(os.Stdout, f), io.MultiWriter(os.Stderr, f)), f, nil
}

func makeLoggers(out, errOut io.Writer) ldlog.Loggers {
	loggers := ldlog.NewDefaultLoggers()
	loggers.SetBaseLogger(makeLog(out))
	loggers.SetBaseLoggerForLevel(ldlog.Error, makeLog(errOut))
	loggers.SetMinLevel(ldlog.Info)
	return loggers
}

func makeLog(w io.Writer) *log.Logger {
	return log.New(w, "", log.Ldate|log.Ltime|log.Lmicroseconds)
}
