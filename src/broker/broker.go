// Package broker moves report requests and results between agents.
package broker

import "context"

// Broker carries report requests to agents and results back to whoever
// submitted them. The in-memory broker serves local mode; Redpanda serves
// agentic mode.
type Broker interface {
	// Publish sends value to topic. Redpanda partitions on key; the in-memory
	// broker only carries it.
	Publish(ctx context.Context, topic string, key string, value []byte) error

	// Subscribe streams messages from topic until ctx ends. Subscribers
	// sharing a groupID split a topic's partitions on Redpanda; a fresh group
	// reads the topic from its start. The in-memory broker ignores groupID and
	// delivers only messages published after the call.
	Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error)

	// Close releases every subscription and the underlying connections.
	Close() error
}

// Message is one consumed record.
type Message struct {
	Topic     string
	Key       string
	Value     []byte
	Offset    int64
	Partition int32
	Timestamp int64 // milliseconds since the epoch
}
