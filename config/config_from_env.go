package config

import (
	"sort"

	ct "github.com/launchdarkly/go-configtypes"
)

// datadogTagVarPrefix marks variables such as DATADOG_TAG_env=prod, each of which adds one "env:prod" tag.
const datadogTagVarPrefix = "DATADOG_TAG_"

// LoadConfigFromEnvironment applies environment variables on top of whatever c already holds, such as
// values from a configuration file, and then validates the result.
func LoadConfigFromEnvironment(c *Config) error {
	reader := ct.NewVarReaderFromEnvironment()
	sections := []interface{}{
		&c.Main, &c.Broker, &c.Publication, &c.Replication,
		&c.MetricsConfig.Datadog, &c.MetricsConfig.Stackdriver, &c.MetricsConfig.Prometheus,
	}
	for _, section := range sections {
		reader.ReadStruct(section, false)
	}
	if c.MetricsConfig.Datadog.Enabled {
		c.MetricsConfig.Datadog.Tag = append(c.MetricsConfig.Datadog.Tag, datadogTagsFromVars(reader)...)
	}

	if result := reader.Result(); !result.OK() {
		return result.GetError()
	}
	return ValidateConfig(c)
}

func datadogTagsFromVars(reader *ct.VarReader) []string {
	var tags []string
	for name, value := range reader.FindPrefixedValues(datadogTagVarPrefix) {
		tags = append(tags, name+":"+value)
	}
	sort.Strings(tags)
	return tags
}
