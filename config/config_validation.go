package config

import (
	"errors"
	"fmt"
	"strings"

	ct "github.com/launchdarkly/go-configtypes"
)

var (
	errPollTimeoutNotPositive = errors.New("poll timeout must be greater than zero")
	errNegativeSettleDelay    = errors.New("settle delay cannot be negative")
	errNegativeLinger         = errors.New("linger cannot be negative")
)

const warnZeroLinger = "Linger is zero; messages still queued when a relay shuts down will be discarded"

func errSamePorts(section string, port int) error {
	return fmt.Errorf("%s ports must be different, but both are %d", section, port)
}

func errPortConflict(name1, name2 string, port int) error {
	return fmt.Errorf("%s and %s cannot both use port %d", name1, name2, port)
}

func errBadDatadogTag(tag string) error {
	return fmt.Errorf("Datadog tag %q must be in the form name:value", tag) //nolint:stylecheck
}

// ValidateConfig ensures that the configuration does not contain contradictory properties.
//
// This method covers validation rules that can't be enforced on a per-field basis, such as the status
// port colliding with the Prometheus port. LoadConfigFromEnvironment and LoadConfigFile both call this
// method as a last step, but it is also called again by the relay constructors because application
// code may construct a Config programmatically. It does not log anything; see Warnings.
//
// The two ports of each relay are checked by ValidateComponentPorts, only for the relay being built.
func ValidateConfig(c *Config) error {
	var result ct.ValidationResult

	validateConfigMain(&result, c)
	validateConfigPorts(&result, c)
	validateConfigMetrics(&result, c)

	return result.GetError()
}

// ValidateComponentPorts returns an error if the two ports of one relay, configured in the given
// section, are the same.
func ValidateComponentPorts(section string, first, second int) error {
	var result ct.ValidationResult
	if first == second {
		result.AddError(ct.ValidationPath{section}, errSamePorts(section, first))
	}
	return result.GetError()
}

// Warnings describes settings that are valid but probably not intended. The relay constructors log
// each of them once.
func Warnings(c Config) []string {
	var warnings []string
	if c.Main.Linger.IsDefined() && c.Main.Linger.GetOrElse(0) == 0 {
		warnings = append(warnings, warnZeroLinger)
	}
	return warnings
}

func validateConfigMain(result *ct.ValidationResult, c *Config) {
	if c.Main.PollTimeout.IsDefined() && c.Main.PollTimeout.GetOrElse(0) <= 0 {
		result.AddError(ct.ValidationPath{"Main", "PollTimeout"}, errPollTimeoutNotPositive)
	}
	if c.Main.SettleDelay.GetOrElse(0) < 0 {
		result.AddError(ct.ValidationPath{"Main", "SettleDelay"}, errNegativeSettleDelay)
	}
	if c.Main.Linger.GetOrElse(0) < 0 {
		result.AddError(ct.ValidationPath{"Main", "Linger"}, errNegativeLinger)
	}
}

func validateConfigPorts(result *ct.ValidationResult, c *Config) {
	if c.Main.StatusPort.IsDefined() && c.Prometheus.Enabled {
		statusPort := c.Main.StatusPort.GetOrElse(0)
		if statusPort == c.Prometheus.Port.GetOrElse(DefaultPrometheusPort) {
			result.AddError(nil, errPortConflict("StatusPort", "Prometheus", statusPort))
		}
	}
}

func validateConfigMetrics(result *ct.ValidationResult, c *Config) {
	if !c.Datadog.Enabled {
		return
	}
	for _, tag := range c.Datadog.Tag {
		if !strings.Contains(tag, ":") {
			result.AddError(ct.ValidationPath{"Datadog", "Tag"}, errBadDatadogTag(tag))
		}
	}
}
