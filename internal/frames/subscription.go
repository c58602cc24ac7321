package frames

import (
	"fmt"
	"unicode/utf8"
)

// SubscriptionAction is the first byte of a subscription-control frame.
type SubscriptionAction byte

const (
	// Unsubscribe withdraws interest in a topic.
	Unsubscribe SubscriptionAction = 0x00
	// Subscribe expresses interest in a topic.
	Subscribe SubscriptionAction = 0x01
)

func (a SubscriptionAction) String() string {
	switch a {
	case Subscribe:
		return "subscribe"
	case Unsubscribe:
		return "unsubscribe"
	default:
		return fmt.Sprintf("unknown(0x%02x)", byte(a))
	}
}

// Subscription is a decoded subscription-control frame.
type Subscription struct {
	Action SubscriptionAction
	// Topic is the topic prefix, rendered with Text. An empty topic matches everything.
	Topic string
}

func errEmptySubscriptionFrame() error {
	return fmt.Errorf("subscription frame is empty")
}

func errUnknownSubscriptionTag(tag byte) error {
	return fmt.Errorf("subscription frame has unknown tag 0x%02x", tag)
}

func errSubscriptionTopicNotUTF8(action SubscriptionAction) error {
	return fmt.Errorf("%s frame topic is not valid UTF-8", action)
}

// ParseSubscription decodes a subscription-control frame: one tag byte (0x01 subscribe, 0x00
// unsubscribe) followed by the topic, whose length is the frame length minus one.
//
// If the topic is not valid UTF-8, the returned Subscription is still usable for logging (with the
// invalid bytes replaced) and the error describes the problem.
func ParseSubscription(frame []byte) (Subscription, error) {
	if len(frame) == 0 {
		return Subscription{}, errEmptySubscriptionFrame()
	}
	action := SubscriptionAction(frame[0])
	if action != Subscribe && action != Unsubscribe {
		return Subscription{Action: action}, errUnknownSubscriptionTag(frame[0])
	}
	topic := frame[1:]
	sub := Subscription{Action: action, Topic: Text(topic)}
	if !utf8.Valid(topic) {
		return sub, errSubscriptionTopicNotUTF8(action)
	}
	return sub, nil
}

// SubscriptionFrame encodes a subscription-control frame. Peers and tests use it; relays only ever
// forward the frames they receive.
func SubscriptionFrame(action SubscriptionAction, topic string) []byte {
	frame := make([]byte, 0, len(topic)+1)
	frame = append(frame, byte(action))
	return append(frame, topic...)
}
