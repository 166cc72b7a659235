package broker

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// subscriberBuffer is the per-subscriber channel capacity.
const subscriberBuffer = 100

type subscriber struct {
	ctx context.Context
	ch  chan Message
}

// InMemoryBroker delivers every published message to every subscriber of the
// topic. Used in local mode and tests. Consumer groups are not modelled, so
// two subscribers with the same group both receive each message.
type InMemoryBroker struct {
	mu      sync.RWMutex
	subs    map[string][]*subscriber
	closed  bool
	offMu   sync.Mutex
	offsets map[string]int64
}

// NewInMemoryBroker creates a new InMemoryBroker instance.
func NewInMemoryBroker() *InMemoryBroker {
	return &InMemoryBroker{
		subs:    make(map[string][]*subscriber),
		offsets: make(map[string]int64),
	}
}

// Publish delivers value to current subscribers of topic. It blocks while a
// subscriber's buffer is full, until ctx or the subscriber's context ends.
func (b *InMemoryBroker) Publish(ctx context.Context, topic string, key string, value []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("broker is closed")
	}

	msg := Message{
		Topic:     topic,
		Key:       key,
		Value:     value,
		Offset:    b.nextOffset(topic),
		Timestamp: time.Now().UnixMilli(),
	}

	for _, s := range b.subs[topic] {
		select {
		case s.ch <- msg:
		case <-s.ctx.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (b *InMemoryBroker) nextOffset(topic string) int64 {
	b.offMu.Lock()
	defer b.offMu.Unlock()
	n := b.offsets[topic]
	b.offsets[topic] = n + 1
	return n
}

// Subscribe returns a channel receiving messages published to topic after
// this call. The channel closes when ctx ends or the broker closes.
func (b *InMemoryBroker) Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, fmt.Errorf("broker is closed")
	}

	s := &subscriber{ctx: ctx, ch: make(chan Message, subscriberBuffer)}
	b.subs[topic] = append(b.subs[topic], s)

	go func() {
		<-ctx.Done()
		b.remove(topic, s)
	}()

	return s.ch, nil
}

func (b *InMemoryBroker) remove(topic string, target *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[topic]
	for i, s := range subs {
		if s == target {
			b.subs[topic] = append(subs[:i], subs[i+1:]...)
			close(s.ch)
			return
		}
	}
}

// Close closes every subscriber channel. Later calls are no-ops.
func (b *InMemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for topic, subs := range b.subs {
		for _, s := range subs {
			close(s.ch)
		}
		delete(b.subs, topic)
	}
	return nil
}
