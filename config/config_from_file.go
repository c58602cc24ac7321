package config

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/gcfg.v1"
)

// gcfg reports sections and variables that have no matching struct field with this wording.
const gcfgUnknownFieldPhrase = "can't store data at"

// LoadConfigFile reads an INI-style configuration file on top of whatever c already holds, and then
// validates the result. Settings that the file does not mention keep their existing values.
func LoadConfigFile(c *Config, path string) error {
	if err := gcfg.ReadFileInto(c, path); err != nil {
		return fmt.Errorf("failed to read configuration file %q: %w", path, describeGcfgError(err))
	}
	return ValidateConfig(c)
}

func describeGcfgError(err error) error {
	msg := err.Error()
	if !strings.Contains(msg, gcfgUnknownFieldPhrase) {
		return err
	}
	return errors.New(strings.Replace(msg, gcfgUnknownFieldPhrase, "unsupported or misspelled", 1))
}
