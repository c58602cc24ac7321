package frames

import (
	"errors"
	"fmt"

	"github.com/launchdarkly/go-jsonstream/v3/jreader"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

const (
	// NoTopic is used in logs for a replication message whose topic frame is empty.
	NoTopic = "no-topic"

	// UnknownField is used in logs for an advisory envelope field that is absent or null.
	UnknownField = "unknown"

	sourceServerField = "source_server"
	typeField         = "type"
)

var errNoReplicationBody = errors.New("replication message has no body frame")

func errBadReplicationBody(err error) error {
	return fmt.Errorf("replication body is not a JSON object: %w", err)
}

// ReplicationInfo describes a replication envelope [topic, body] for diagnostics.
//
// The body is expected to be a JSON object with the optional properties "source_server" (any scalar,
// identifying the peer that originated the change) and "type" (such as "post", "message" or "follow").
// Other properties, such as the replicated payload itself, are skipped without being decoded.
type ReplicationInfo struct {
	Topic        string
	SourceServer string
	Type         string
}

// ParseReplicationInfo decodes the diagnostic fields of a replication envelope.
//
// Topic is always filled in, even when an error is returned, so that callers can fall back to
// logging just the topic. SourceServer and Type default to UnknownField if absent or null.
func ParseReplicationInfo(m Message) (ReplicationInfo, error) {
	info := ReplicationInfo{Topic: NoTopic, SourceServer: UnknownField, Type: UnknownField}
	if topic := m.Frame(0); len(topic) > 0 {
		info.Topic = Text(topic)
	}
	if len(m) < 2 {
		return info, errNoReplicationBody
	}

	r := jreader.NewReader(m[1])
	var sourceServer, replicationType ldvalue.Value
	for obj := r.Object(); obj.Next(); {
		switch string(obj.Name()) {
		case sourceServerField:
			sourceServer.ReadFromJSONReader(&r)
		case typeField:
			replicationType.ReadFromJSONReader(&r)
		default:
			_ = r.SkipValue()
		}
	}
	if err := r.Error(); err != nil {
		return info, errBadReplicationBody(err)
	}
	if err := r.RequireEOF(); err != nil {
		return info, errBadReplicationBody(err)
	}

	info.SourceServer = describeValue(sourceServer)
	info.Type = describeValue(replicationType)
	return info, nil
}

func describeValue(v ldvalue.Value) string {
	switch v.Type() {
	case ldvalue.NullType:
		return UnknownField
	case ldvalue.StringType:
		return v.StringValue()
	default:
		return v.JSONString()
	}
}
