// Command request-broker runs the request/reply broker, which routes requests from clients on the
// frontend port to servers on the backend port and routes their replies back.
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
	os.Exit(application.Launch(os.Args, os.Stderr, "request/reply broker",
		func(c config.Config, loggers ldlog.Loggers) (application.Process, error) {
			return relay.NewRequestReplyBroker(c, loggers, nil)
		}))
}
