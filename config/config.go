// Package config contains the configuration types and loaders for all three relay processes.
package config

import (
	"time"

	ct "github.com/launchdarkly/go-configtypes"

	"github.com/relaymesh/relayd/internal/logging"
)

const (
	// DefaultBrokerFrontendPort is the port of the request/reply broker's client-facing ROUTER endpoint.
	DefaultBrokerFrontendPort = 5555

	// DefaultBrokerBackendPort is the port of the request/reply broker's worker-facing DEALER endpoint.
	DefaultBrokerBackendPort = 5556

	// DefaultPublicationIngressPort is the port where servers publish posts.
	DefaultPublicationIngressPort = 5557

	// DefaultPublicationEgressPort is the port where clients subscribe to posts.
	DefaultPublicationEgressPort = 5558

	// DefaultReplicationIngressPort is the port where servers publish replication messages.
	DefaultReplicationIngressPort = 6000

	// DefaultReplicationEgressPort is the port where servers subscribe to replication messages.
	DefaultReplicationEgressPort = 6001

	// DefaultPollTimeout is the default value for MainConfig.PollTimeout.
	DefaultPollTimeout = time.Second

	// DefaultSettleDelay is the default value for MainConfig.SettleDelay.
	DefaultSettleDelay = time.Second

	// DefaultLinger is the default value for MainConfig.Linger.
	DefaultLinger = time.Second

	// DefaultMaxMessagesPerPoll is the default value for MainConfig.MaxMessagesPerPoll.
	DefaultMaxMessagesPerPoll = 1

	// DefaultPrometheusPort is the default value for PrometheusConfig.Port.
	DefaultPrometheusPort = 8031
)

// DefaultLoggers is the default logging configuration used by the relays.
//
// Output goes to stdout, except Error level which goes to stderr. Debug level is disabled.
var DefaultLoggers = logging.MakeDefaultLoggers() //nolint:gochecknoglobals

// Config describes the configuration for a relay process.
//
// Every field is optional; the zero value Config{} is valid and means that all defaults are used.
// Each process reads only the section for its own component, plus [Main] and the metrics sections.
type Config struct {
	Main        MainConfig
	Broker      BrokerConfig
	Publication PublicationConfig
	Replication ReplicationConfig
	MetricsConfig
}

// MainConfig contains options that apply to every relay.
//
// This corresponds to the [Main] section in the configuration file.
type MainConfig struct {
	LogLevel           OptLogLevel              `conf:"LOG_LEVEL"`
	LogFile            string                   `conf:"LOG_FILE"`
	BindHost           string                   `conf:"BIND_HOST"`
	PollTimeout        ct.OptDuration           `conf:"POLL_TIMEOUT"`
	SettleDelay        ct.OptDuration           `conf:"SETTLE_DELAY"`
	MaxMessagesPerPoll ct.OptIntGreaterThanZero `conf:"MAX_MESSAGES_PER_POLL"`
	Linger             ct.OptDuration           `conf:"LINGER"`
	SendHWM            ct.OptIntGreaterThanZero `conf:"SEND_HWM"`
	ReceiveHWM         ct.OptIntGreaterThanZero `conf:"RECEIVE_HWM"`
	StatusPort         ct.OptIntGreaterThanZero `conf:"STATUS_PORT"`
	ExitAlways         bool                     `conf:"EXIT_ALWAYS"`
}

// BrokerConfig contains the ports of the request/reply broker.
//
// This corresponds to the [Broker] section in the configuration file.
type BrokerConfig struct {
	FrontendPort ct.OptIntGreaterThanZero `conf:"BROKER_FRONTEND_PORT"`
	BackendPort  ct.OptIntGreaterThanZero `conf:"BROKER_BACKEND_PORT"`
}

// PublicationConfig contains the ports of the publication proxy.
//
// This corresponds to the [Publication] section in the configuration file.
type PublicationConfig struct {
	IngressPort ct.OptIntGreaterThanZero `conf:"PUBLICATION_INGRESS_PORT"`
	EgressPort  ct.OptIntGreaterThanZero `conf:"PUBLICATION_EGRESS_PORT"`
}

// ReplicationConfig contains the ports of the replication proxy.
//
// This corresponds to the [Replication] section in the configuration file.
type ReplicationConfig struct {
	IngressPort ct.OptIntGreaterThanZero `conf:"REPLICATION_INGRESS_PORT"`
	EgressPort  ct.OptIntGreaterThanZero `conf:"REPLICATION_EGRESS_PORT"`
}

// MetricsConfig contains configurations for optional metrics integrations.
//
// This corresponds to the [Datadog], [Stackdriver], and [Prometheus] sections in the configuration file.
type MetricsConfig struct {
	Datadog     DatadogConfig
	Stackdriver StackdriverConfig
	Prometheus  PrometheusConfig
}

// DatadogConfig configures the optional Datadog integration, which is used only if Enabled is true.
//
// This corresponds to the [Datadog] section in the configuration file.
type DatadogConfig struct {
	Enabled   bool   `conf:"USE_DATADOG"`
	Prefix    string `conf:"DATADOG_PREFIX"`
	TraceAddr string `conf:"DATADOG_TRACE_ADDR"`
	StatsAddr string `conf:"DATADOG_STATS_ADDR"`
	Tag       []string
}

// StackdriverConfig configures the optional Stackdriver integration, which is used only if Enabled is true.
//
// This corresponds to the [Stackdriver] section in the configuration file.
type StackdriverConfig struct {
	Enabled   bool   `conf:"USE_STACKDRIVER"`
	Prefix    string `conf:"STACKDRIVER_PREFIX"`
	ProjectID string `conf:"STACKDRIVER_PROJECT_ID"`
}

// PrometheusConfig configures the optional Prometheus integration, which is used only if Enabled is true.
//
// This corresponds to the [Prometheus] section in the configuration file.
type PrometheusConfig struct {
	Enabled bool                     `conf:"USE_PROMETHEUS"`
	Prefix  string                   `conf:"PROMETHEUS_PREFIX"`
	Port    ct.OptIntGreaterThanZero `conf:"PROMETHEUS_PORT"`
}

// Ports returns the frontend and backend ports, applying defaults.
func (c BrokerConfig) Ports() (frontend, backend int) {
	return c.FrontendPort.GetOrElse(DefaultBrokerFrontendPort), c.BackendPort.GetOrElse(DefaultBrokerBackendPort)
}

// Ports returns the ingress and egress ports, applying defaults.
func (c PublicationConfig) Ports() (ingress, egress int) {
	return c.IngressPort.GetOrElse(DefaultPublicationIngressPort), c.EgressPort.GetOrElse(DefaultPublicationEgressPort)
}

// Ports returns the ingress and egress ports, applying defaults.
func (c ReplicationConfig) Ports() (ingress, egress int) {
	return c.IngressPort.GetOrElse(DefaultReplicationIngressPort), c.EgressPort.GetOrElse(DefaultReplicationEgressPort)
}
