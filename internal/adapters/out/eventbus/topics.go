package eventbus

import (
	"fmt"

	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/pkg/errs"
)

// TopicNames maps logical topics to the names a transport uses.
type TopicNames map[event.Topic]string

// DefaultTopicNames prefixes every logical topic, e.g. "orderflow.orders".
func DefaultTopicNames(prefix string) TopicNames {
	names := make(TopicNames, len(event.Topics()))
	for _, t := range event.Topics() {
		if prefix == "" {
			names[t] = string(t)
			continue
		}
		names[t] = fmt.Sprintf("%s.%s", prefix, t)
	}
	return names
}

// Resolve returns the physical name of topic.
func (n TopicNames) Resolve(topic event.Topic) (string, error) {
	name, ok := n[topic]
	if !ok || name == "" {
		return "", errs.NewValueIsInvalidErrorWithCause("topic", fmt.Errorf("%q has no destination", topic))
	}
	return name, nil
}
