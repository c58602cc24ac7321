// Command replication-proxy runs the replication proxy, the rendezvous point where servers broadcast
// replication messages to each other.
package main

import (
	"os"

	_ "github.com/kardianos/minwinsvc"

	"github.com/relaymesh/relayd/config"
	"github.com/relaymesh/relayd/internal/application"
	"github.com/relaymesh/relayd/relay"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

func main() {
	os.Exit(application.Launch(os.Args, os.Stderr, "replication proxy",
		func(c config.Config, loggers ldlog.Loggers) (application.Process, error) {
			return relay.NewReplicationProxy(c, loggers, nil)
		}))
}
