package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	ct "github.com/launchdarkly/go-configtypes"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

type testDataValidConfig struct {
	name        string
	makeConfig  func(c *Config)
	envVars     map[string]string
	fileContent string
	warnings    []string
}

type testDataInvalidConfig struct {
	name         string
	envVarsError string
	fileError    string
	envVars      map[string]string
	fileContent  string
}

func (tdc testDataValidConfig) assertResult(t *testing.T, actualConfig Config) {
	var expectedConfig Config
	tdc.makeConfig(&expectedConfig)
	assert.Equal(t, expectedConfig, actualConfig)
	assert.Equal(t, tdc.warnings, Warnings(actualConfig))
}

func mustOptIntGreaterThanZero(n int) ct.OptIntGreaterThanZero {
	o, err := ct.NewOptIntGreaterThanZero(n)
	if err != nil {
		panic(err)
	}
	return o
}

func makeValidConfigs() []testDataValidConfig {
	return []testDataValidConfig{
		makeValidConfigDefaults(),
		makeValidConfigAllMainProperties(),
		makeValidConfigZeroLinger(),
		makeValidConfigBroker(),
		makeValidConfigPublication(),
		makeValidConfigReplication(),
		makeValidConfigDatadogMinimal(),
		makeValidConfigDatadogAll(),
		makeValidConfigStackdriverMinimal(),
		makeValidConfigStackdriverAll(),
		makeValidConfigPrometheusMinimal(),
		makeValidConfigPrometheusAll(),
	}
}

func makeInvalidConfigs() []testDataInvalidConfig {
	return []testDataInvalidConfig{
		makeInvalidConfigZeroPort(),
		makeInvalidConfigStatusPortSameAsPrometheus(),
		makeInvalidConfigBadDatadogTag(),
	}
}

func makeValidConfigDefaults() testDataValidConfig {
	c := testDataValidConfig{name: "no properties"}
	c.makeConfig = func(c *Config) {}
	c.envVars = map[string]string{}
	c.fileContent = `
[Main]
`
	return c
}

func makeValidConfigAllMainProperties() testDataValidConfig {
	c := testDataValidConfig{name: "all main properties"}
	c.makeConfig = func(c *Config) {
		c.Main = MainConfig{
			LogLevel:           NewOptLogLevel(ldlog.Warn),
			LogFile:            "/var/log/relay.log",
			BindHost:           "127.0.0.1",
			PollTimeout:        ct.NewOptDuration(500 * time.Millisecond),
			SettleDelay:        ct.NewOptDuration(2 * time.Second),
			MaxMessagesPerPoll: mustOptIntGreaterThanZero(10),
			Linger:             ct.NewOptDuration(3 * time.Second),
			SendHWM:            mustOptIntGreaterThanZero(2000),
			ReceiveHWM:         mustOptIntGreaterThanZero(3000),
			StatusPort:         mustOptIntGreaterThanZero(8080),
			ExitAlways:         true,
		}
	}
	c.envVars = map[string]string{
		"LOG_LEVEL":             "warn",
		"LOG_FILE":              "/var/log/relay.log",
		"BIND_HOST":             "127.0.0.1",
		"POLL_TIMEOUT":          "500ms",
		"SETTLE_DELAY":          "2s",
		"MAX_MESSAGES_PER_POLL": "10",
		"LINGER":                "3s",
		"SEND_HWM":              "2000",
		"RECEIVE_HWM":           "3000",
		"STATUS_PORT":           "8080",
		"EXIT_ALWAYS":           "1",
	}
	c.fileContent = `
[Main]
LogLevel = "warn"
LogFile = "/var/log/relay.log"
BindHost = "127.0.0.1"
PollTimeout = 500ms
SettleDelay = 2s
MaxMessagesPerPoll = 10
Linger = 3s
SendHWM = 2000
ReceiveHWM = 3000
StatusPort = 8080
ExitAlways = true
`
	return c
}

func makeValidConfigZeroLinger() testDataValidConfig {
	c := testDataValidConfig{name: "zero linger"}
	c.makeConfig = func(c *Config) {
		c.Main.Linger = ct.NewOptDuration(0)
	}
	c.envVars = map[string]string{
		"LINGER": "0s",
	}
	c.fileContent = `
[Main]
Linger = 0s
`
	c.warnings = []string{warnZeroLinger}
	return c
}

func makeValidConfigBroker() testDataValidConfig {
	c := testDataValidConfig{name: "broker ports"}
	c.makeConfig = func(c *Config) {
		c.Broker = BrokerConfig{
			FrontendPort: mustOptIntGreaterThanZero(7555),
			BackendPort:  mustOptIntGreaterThanZero(7556),
		}
	}
	c.envVars = map[string]string{
		"BROKER_FRONTEND_PORT": "7555",
		"BROKER_BACKEND_PORT":  "7556",
	}
	c.fileContent = `
[Broker]
FrontendPort = 7555
BackendPort = 7556
`
	return c
}

func makeValidConfigPublication() testDataValidConfig {
	c := testDataValidConfig{name: "publication ports"}
	c.makeConfig = func(c *Config) {
		c.Publication = PublicationConfig{
			IngressPort: mustOptIntGreaterThanZero(7557),
			EgressPort:  mustOptIntGreaterThanZero(7558),
		}
	}
	c.envVars = map[string]string{
		"PUBLICATION_INGRESS_PORT": "7557",
		"PUBLICATION_EGRESS_PORT":  "7558",
	}
	c.fileContent = `
[Publication]
IngressPort = 7557
EgressPort = 7558
`
	return c
}

func makeValidConfigReplication() testDataValidConfig {
	c := testDataValidConfig{name: "replication ports"}
	c.makeConfig = func(c *Config) {
		c.Replication = ReplicationConfig{
			IngressPort: mustOptIntGreaterThanZero(7000),
			EgressPort:  mustOptIntGreaterThanZero(7001),
		}
	}
	c.envVars = map[string]string{
		"REPLICATION_INGRESS_PORT": "7000",
		"REPLICATION_EGRESS_PORT":  "7001",
	}
	c.fileContent = `
[Replication]
IngressPort = 7000
EgressPort = 7001
`
	return c
}

func makeValidConfigDatadogMinimal() testDataValidConfig {
	c := testDataValidConfig{name: "Datadog - minimal parameters"}
	c.makeConfig = func(c *Config) {
		c.Datadog = DatadogConfig{
			Enabled: true,
		}
	}
	c.envVars = map[string]string{
		"USE_DATADOG": "1",
	}
	c.fileContent = `
[Datadog]
Enabled = true
`
	return c
}

func makeValidConfigDatadogAll() testDataValidConfig {
	c := testDataValidConfig{name: "Datadog - all parameters"}
	c.makeConfig = func(c *Config) {
		c.Datadog = DatadogConfig{
			Enabled:   true,
			Prefix:    "pre-",
			TraceAddr: "trace",
			StatsAddr: "stats",
			Tag:       []string{"tag1:value1", "tag2:value2"},
		}
	}
	c.envVars = map[string]string{
		"USE_DATADOG":        "1",
		"DATADOG_PREFIX":     "pre-",
		"DATADOG_TRACE_ADDR": "trace",
		"DATADOG_STATS_ADDR": "stats",
		"DATADOG_TAG_tag1":   "value1",
		"DATADOG_TAG_tag2":   "value2",
	}
	c.fileContent = `
[Datadog]
Enabled = true
Prefix = "pre-"
TraceAddr = "trace"
StatsAddr = "stats"
Tag = "tag1:value1"
Tag = "tag2:value2"
`
	return c
}

func makeValidConfigStackdriverMinimal() testDataValidConfig {
	c := testDataValidConfig{name: "Stackdriver - minimal parameters"}
	c.makeConfig = func(c *Config) {
		c.Stackdriver = StackdriverConfig{
			Enabled: true,
		}
	}
	c.envVars = map[string]string{
		"USE_STACKDRIVER": "1",
	}
	c.fileContent = `
[Stackdriver]
Enabled = true
`
	return c
}

func makeValidConfigStackdriverAll() testDataValidConfig {
	c := testDataValidConfig{name: "Stackdriver - all parameters"}
	c.makeConfig = func(c *Config) {
		c.Stackdriver = StackdriverConfig{
			Enabled:   true,
			Prefix:    "pre-",
			ProjectID: "proj",
		}
	}
	c.envVars = map[string]string{
		"USE_STACKDRIVER":        "1",
		"STACKDRIVER_PREFIX":     "pre-",
		"STACKDRIVER_PROJECT_ID": "proj",
	}
	c.fileContent = `
[Stackdriver]
Enabled = true
Prefix = "pre-"
ProjectID = "proj"
`
	return c
}

func makeValidConfigPrometheusMinimal() testDataValidConfig {
	c := testDataValidConfig{name: "Prometheus - minimal parameters"}
	c.makeConfig = func(c *Config) {
		c.Prometheus = PrometheusConfig{
			Enabled: true,
		}
	}
	c.envVars = map[string]string{
		"USE_PROMETHEUS": "1",
	}
	c.fileContent = `
[Prometheus]
Enabled = true
`
	return c
}

func makeValidConfigPrometheusAll() testDataValidConfig {
	c := testDataValidConfig{name: "Prometheus - all parameters"}
	c.makeConfig = func(c *Config) {
		c.Prometheus = PrometheusConfig{
			Enabled: true,
			Port:    mustOptIntGreaterThanZero(8333),
			Prefix:  "x",
		}
	}
	c.envVars = map[string]string{
		"USE_PROMETHEUS":    "1",
		"PROMETHEUS_PORT":   "8333",
		"PROMETHEUS_PREFIX": "x",
	}
	c.fileContent = `
[Prometheus]
Enabled = true
Port = 8333
Prefix = "x"
`
	return c
}

func makeInvalidConfigZeroPort() testDataInvalidConfig {
	c := testDataInvalidConfig{name: "zero port"}
	c.envVarsError = "BROKER_BACKEND_PORT"
	c.envVars = map[string]string{"BROKER_BACKEND_PORT": "0"}
	return c
}

func makeInvalidConfigStatusPortSameAsPrometheus() testDataInvalidConfig {
	c := testDataInvalidConfig{name: "status port same as Prometheus port"}
	c.envVarsError = "StatusPort and Prometheus cannot both use port 8031"
	c.envVars = map[string]string{"STATUS_PORT": "8031", "USE_PROMETHEUS": "1"}
	c.fileContent = `
[Main]
StatusPort = 8031

[Prometheus]
Enabled = true
`
	return c
}

func makeInvalidConfigBadDatadogTag() testDataInvalidConfig {
	c := testDataInvalidConfig{name: "Datadog tag without value"}
	c.fileError = `Datadog tag "novalue" must be in the form name:value`
	c.fileContent = `
[Datadog]
Enabled = true
Tag = "novalue"
`
	return c
}
