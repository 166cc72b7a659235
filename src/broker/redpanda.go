package broker

import (
	"context"
	"fmt"
	"sync"

	"github.com/twmb/franz-go/pkg/kgo"

	"devpulse-agent/src/logger"
)

// ClientID identifies devpulse connections to the cluster.
const ClientID = "devpulse"

// RedpandaBroker implements Broker over Redpanda (or any Kafka cluster) with
// franz-go. Each subscription gets its own group consumer, released when the
// subscription's context ends.
type RedpandaBroker struct {
	producer  *kgo.Client
	brokers   []string
	logger    logger.Logger
	mu        sync.Mutex
	consumers map[string]*kgo.Client // topic:groupID -> consumer
	closed    bool
}

// NewRedpandaBroker creates a broker for the given seed addresses
// (e.g. ["localhost:19092"]). Connections are made lazily; use Ping to check
// reachability.
func NewRedpandaBroker(brokers []string, log logger.Logger) (*RedpandaBroker, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker address is required")
	}

	producer, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(ClientID),
		kgo.AllowAutoTopicCreation(),
		// rendered reports are plain text and compress well
		kgo.ProducerBatchCompression(kgo.ZstdCompression(), kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka client: %w", err)
	}

	return &RedpandaBroker{
		producer:  producer,
		brokers:   brokers,
		logger:    log,
		consumers: make(map[string]*kgo.Client),
	}, nil
}

// Publish produces one record and waits for the cluster to acknowledge it.
func (b *RedpandaBroker) Publish(ctx context.Context, topic string, key string, value []byte) error {
	if b.isClosed() {
		return fmt.Errorf("broker is closed")
	}

	record := &kgo.Record{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	}
	if err := b.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to produce to %s: %w", topic, err)
	}
	return nil
}

// Subscribe joins groupID on topic. Only one live subscription per
// topic/group pair is allowed within a broker.
func (b *RedpandaBroker) Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, fmt.Errorf("broker is closed")
	}

	consumerKey := topic + ":" + groupID
	if _, exists := b.consumers[consumerKey]; exists {
		return nil, fmt.Errorf("consumer already exists for topic %s and group %s", topic, groupID)
	}

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(b.brokers...),
		kgo.ClientID(ClientID),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(topic),
		// requests queued before an agent started are still served, and a
		// waiter sees results published before it subscribed
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}
	b.consumers[consumerKey] = consumer

	msgChan := make(chan Message, 100)
	b.logger.Debug("[RedpandaBroker] Subscribed to %s as %s", topic, groupID)

	go func() {
		defer b.release(consumerKey, consumer)
		b.consumeLoop(ctx, consumer, msgChan)
	}()

	return msgChan, nil
}

// consumeLoop polls until ctx ends or the consumer closes, then closes msgChan.
func (b *RedpandaBroker) consumeLoop(ctx context.Context, consumer *kgo.Client, msgChan chan<- Message) {
	defer close(msgChan)

	for ctx.Err() == nil {
		fetches := consumer.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return
		}

		fetches.EachError(func(topic string, partition int32, err error) {
			if ctx.Err() == nil {
				b.logger.Error("[RedpandaBroker] Fetch error on %s/%d: %v", topic, partition, err)
			}
		})

		iter := fetches.RecordIter()
		for !iter.Done() {
			record := iter.Next()
			msg := Message{
				Topic:     record.Topic,
				Key:       string(record.Key),
				Value:     record.Value,
				Offset:    record.Offset,
				Partition: record.Partition,
				Timestamp: record.Timestamp.UnixMilli(),
			}

			select {
			case msgChan <- msg:
			case <-ctx.Done():
				return
			}
		}
	}
}

// release closes a finished subscription's consumer, leaving its group.
func (b *RedpandaBroker) release(key string, consumer *kgo.Client) {
	b.mu.Lock()
	owned := b.consumers[key] == consumer
	if owned {
		delete(b.consumers, key)
	}
	b.mu.Unlock()

	// Close already shut down consumers it removed
	if owned {
		consumer.Close()
	}
}

func (b *RedpandaBroker) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Close shuts down the producer and every consumer.
func (b *RedpandaBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for key, consumer := range b.consumers {
		consumer.Close()
		delete(b.consumers, key)
	}
	b.producer.Close()

	return nil
}

// Ping checks that at least one seed broker answers.
func (b *RedpandaBroker) Ping(ctx context.Context) error {
	if err := b.producer.Ping(ctx); err != nil {
		return fmt.Errorf("redpanda unreachable at %v: %w", b.brokers, err)
	}
	return nil
}
