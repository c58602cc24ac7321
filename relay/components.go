package relay

import (
	"fmt"

	"github.com/relaymesh/relayd/config"
	"github.com/relaymesh/relayd/internal/forwarder"
	"github.com/relaymesh/relayd/internal/transport"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

const (
	// BrokerComponent is the component name of the request/reply broker in logs, metrics and status.
	BrokerComponent = "broker"

	// PublicationComponent is the component name of the publication proxy.
	PublicationComponent = "publication"

	// ReplicationComponent is the component name of the replication proxy.
	ReplicationComponent = "replication"
)

type endpointSpec struct {
	role string
	kind transport.Kind
}

// componentSpec describes how one kind of relay is assembled.
type componentSpec struct {
	name            string
	section         string // configuration section holding the ports
	description     string
	first           endpointSpec
	second          endpointSpec
	ports           func(c config.Config) (first, second int)
	settle          bool
	dropWhenBlocked bool
	inspectors      func(loggers ldlog.Loggers) (forward, backward forwarder.Inspector)
	banner          func(first, second int) []string
}

func brokerSpec() componentSpec {
	return componentSpec{
		name:        BrokerComponent,
		section:     "Broker",
		description: "request/reply broker",
		first:       endpointSpec{role: "frontend", kind: transport.Router},
		second:      endpointSpec{role: "backend", kind: transport.Dealer},
		ports: func(c config.Config) (int, int) {
			return c.Broker.Ports()
		},
		// Requests wait in the frontend until a worker can take them. A reply that the frontend
		// still refuses is dropped and logged.
		dropWhenBlocked: true,
		inspectors: func(loggers ldlog.Loggers) (forwarder.Inspector, forwarder.Inspector) {
			return forwardedMessageLogger(loggers, "client"), forwardedMessageLogger(loggers, "server")
		},
		banner: func(frontend, backend int) []string {
			return []string{
				fmt.Sprintf("Broker ready: clients connect to port %d, servers connect to port %d", frontend, backend),
			}
		},
	}
}

func publicationSpec() componentSpec {
	return componentSpec{
		name:        PublicationComponent,
		section:     "Publication",
		description: "publication proxy",
		first:       endpointSpec{role: "ingress", kind: transport.XSub},
		second:      endpointSpec{role: "egress", kind: transport.XPub},
		ports: func(c config.Config) (int, int) {
			return c.Publication.Ports()
		},
		settle: true,
		inspectors: func(loggers ldlog.Loggers) (forwarder.Inspector, forwarder.Inspector) {
			return postLogger(loggers), subscriptionLogger(loggers)
		},
		banner: func(ingress, egress int) []string {
			return []string{
				"Publication proxy ready. Architecture:",
				fmt.Sprintf("   - Servers PUBLISH posts to port %d", ingress),
				fmt.Sprintf("   - Clients SUBSCRIBE to posts on port %d", egress),
			}
		},
	}
}

func replicationSpec() componentSpec {
	return componentSpec{
		name:        ReplicationComponent,
		section:     "Replication",
		description: "replication proxy",
		first:       endpointSpec{role: "ingress", kind: transport.XSub},
		second:      endpointSpec{role: "egress", kind: transport.XPub},
		ports: func(c config.Config) (int, int) {
			return c.Replication.Ports()
		},
		settle: true,
		inspectors: func(loggers ldlog.Loggers) (forwarder.Inspector, forwarder.Inspector) {
			return replicationLogger(loggers), subscriptionLogger(loggers)
		},
		banner: func(ingress, egress int) []string {
			return []string{
				"Replication proxy ready. Servers should:",
				fmt.Sprintf("   - PUBLISH replication data to port %d", ingress),
				fmt.Sprintf("   - SUBSCRIBE to replication data on port %d", egress),
			}
		},
	}
}

func (s componentSpec) routeNames() (forward, backward string) {
	return s.first.role + "->" + s.second.role, s.second.role + "->" + s.first.role
}
