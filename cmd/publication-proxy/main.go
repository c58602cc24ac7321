// Command publication-proxy runs the publication proxy, which fans posts published by servers out to
// subscribed clients.
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
	os.Exit(application.Launch(os.Args, os.Stderr, "publication proxy",
		func(c config.Config, loggers ldlog.Loggers) (application.Process, error) {
			return relay.NewPublicationProxy(c, loggers, nil)
		}))
}
