package relay

import (
	"github.com/relaymesh/relayd/internal/forwarder"
	"github.com/relaymesh/relayd/internal/frames"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

// forwardedMessageLogger is used by the broker, which never looks inside messages.
func forwardedMessageLogger(loggers ldlog.Loggers, source string) forwarder.Inspector {
	return func(msg frames.Message, seq uint64) error {
		loggers.Debugf("Forwarded %s message #%d", source, seq)
		return nil
	}
}

func postLogger(loggers ldlog.Loggers) forwarder.Inspector {
	return func(msg frames.Message, seq uint64) error {
		if user, ok := frames.PublisherID(msg.Frame(0)); ok {
			loggers.Infof("Forwarded post #%d from user %s", seq, user)
		} else {
			loggers.Infof("Forwarded post #%d", seq)
		}
		return nil
	}
}

func subscriptionLogger(loggers ldlog.Loggers) forwarder.Inspector {
	return func(msg frames.Message, seq uint64) error {
		sub, err := frames.ParseSubscription(msg.Frame(0))
		if err != nil {
			return err
		}
		if sub.Action == frames.Subscribe {
			loggers.Infof("New subscription #%d: '%s'", seq, sub.Topic)
		} else {
			loggers.Infof("Unsubscription #%d: '%s'", seq, sub.Topic)
		}
		return nil
	}
}

// replicationLogger describes a replication envelope, or just the topic when the body is not one.
func replicationLogger(loggers ldlog.Loggers) forwarder.Inspector {
	return func(msg frames.Message, seq uint64) error {
		if len(msg) < 2 {
			loggers.Infof("Forwarded message #%d", seq)
			return nil
		}
		info, err := frames.ParseReplicationInfo(msg)
		if err != nil {
			loggers.Infof("Forwarded message #%d: %s", seq, info.Topic)
			loggers.Debugf("Message #%d has no replication envelope: %s", seq, err)
			return nil
		}
		loggers.Infof("Forwarded replication #%d: %s from Server %s", seq, info.Type, info.SourceServer)
		return nil
	}
}
