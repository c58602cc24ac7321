package application

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// DefaultConfigPath is read when no options are given at all. Unlike a file named with --config, it
// may be absent.
const DefaultConfigPath = "/etc/relayd.conf"

// Options holds the command-line settings of a relay executable.
type Options struct {
	ConfigFile       string
	AllowMissingFile bool
	UseEnvironment   bool
}

func errConfigFileNotFound(filename string) error {
	return fmt.Errorf("configuration file %q does not exist", filename)
}

// ReadOptions parses args, whose first element is the program name. Usage text and parse errors go
// to errorOutput.
//
// --config names a file that must exist unless --allow-missing-file is also given. --from-env applies
// environment variables, after the file if there is one. With neither option, DefaultConfigPath is
// used if it exists and built-in defaults are used otherwise. When a missing file is tolerated,
// ConfigFile is left empty.
func ReadOptions(args []string, errorOutput io.Writer) (Options, error) {
	var o Options
	name, rest := "relayd", []string(nil)
	if len(args) > 0 {
		name, rest = args[0], args[1:]
	}

	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(errorOutput)
	flags.StringVar(&o.ConfigFile, "config", "", "configuration file location")
	flags.BoolVar(&o.AllowMissingFile, "allow-missing-file", false, "suppress error if config file is not found")
	flags.BoolVar(&o.UseEnvironment, "from-env", false, "read configuration from environment variables")
	if err := flags.Parse(rest); err != nil {
		return o, err
	}

	if o.ConfigFile == "" && !o.UseEnvironment {
		o.ConfigFile, o.AllowMissingFile = DefaultConfigPath, true
	}
	return o, o.resolveConfigFile()
}

func (o *Options) resolveConfigFile() error {
	if o.ConfigFile == "" {
		return nil
	}
	if _, err := os.Stat(o.ConfigFile); !errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if !o.AllowMissingFile {
		return errConfigFileNotFound(o.ConfigFile)
	}
	o.ConfigFile = ""
	return nil
}

// DescribeConfigSource says where the configuration came from, for the startup banner.
func (o Options) DescribeConfigSource() string {
	switch {
	case o.ConfigFile != "" && o.UseEnvironment:
		return "configuration file " + o.ConfigFile + " plus environment variables"
	case o.ConfigFile != "":
		return "configuration file " + o.ConfigFile
	case o.UseEnvironment:
		return "configuration from environment variables"
	default:
		return "default configuration"
	}
}

// DescribeRelayVersion turns a build suffix such as "1.2.3+abc" into "1.2.3 (build abc)".
func DescribeRelayVersion(version string) string {
	if base, build, found := strings.Cut(version, "+"); found {
		return fmt.Sprintf("%s (build %s)", base, build)
	}
	return version
}
