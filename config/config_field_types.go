package config

import (
	"fmt"
	"strings"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

// OptLogLevel is a log level setting that may be left unset. Accepted names are "debug", "info",
// "warn", "error" and "none", in any letter case.
//
// The zero value is unset.
type OptLogLevel struct {
	level ldlog.LogLevel
	set   bool
}

var logLevelsByName = func() map[string]ldlog.LogLevel { //nolint:gochecknoglobals
	m := make(map[string]ldlog.LogLevel)
	for _, level := range []ldlog.LogLevel{ldlog.Debug, ldlog.Info, ldlog.Warn, ldlog.Error, ldlog.None} {
		m[strings.ToLower(level.Name())] = level
	}
	return m
}()

// NewOptLogLevel returns a setting holding the given level.
func NewOptLogLevel(level ldlog.LogLevel) OptLogLevel {
	return OptLogLevel{level: level, set: true}
}

// NewOptLogLevelFromString parses a level name. An empty string yields an unset value.
func NewOptLogLevelFromString(name string) (OptLogLevel, error) {
	if name == "" {
		return OptLogLevel{}, nil
	}
	level, ok := logLevelsByName[strings.ToLower(name)]
	if !ok {
		return OptLogLevel{}, errBadLogLevel(name)
	}
	return NewOptLogLevel(level), nil
}

func (o OptLogLevel) IsDefined() bool { return o.set }

// GetOrElse returns the configured level, or fallback if none was configured.
func (o OptLogLevel) GetOrElse(fallback ldlog.LogLevel) ldlog.LogLevel {
	if o.set {
		return o.level
	}
	return fallback
}

// String returns the lowercase level name, or "" if unset.
func (o OptLogLevel) String() string {
	if !o.set {
		return ""
	}
	return strings.ToLower(o.level.Name())
}

// UnmarshalText is called by gcfg and by the environment loader. On failure the receiver is not modified.
func (o *OptLogLevel) UnmarshalText(data []byte) error {
	parsed, err := NewOptLogLevelFromString(string(data))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

func errBadLogLevel(s string) error {
	return fmt.Errorf("%q is not a valid log level", s)
}
