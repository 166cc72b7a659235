package broker

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"devpulse-agent/src/logger"
)

func TestInMemoryBroker_PublishSubscribe(t *testing.T) {
	broker := NewInMemoryBroker()
	defer broker.Close()

	ctx := context.Background()
	topic := "test-topic"
	key := "test-key"
	value := []byte("test message")

	// Subscribe before publishing
	msgChan, err := broker.Subscribe(ctx, topic, "test-group")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	// Publish message
	if err := broker.Publish(ctx, topic, key, value); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	// Receive message
	select {
	case msg := <-msgChan:
		if msg.Topic != topic {
			t.Errorf("Expected topic %s, got %s", topic, msg.Topic)
		}
		if msg.Key != key {
			t.Errorf("Expected key %s, got %s", key, msg.Key)
		}
		if string(msg.Value) != string(value) {
			t.Errorf("Expected value %s, got %s", string(value), string(msg.Value))
		}
	case <-time.After(1 * time.Second):
		t.Fatal("Timeout waiting for message")
	}
}

func TestInMemoryBroker_MultipleSubscribers(t *testing.T) {
	broker := NewInMemoryBroker()
	defer broker.Close()

	ctx := context.Background()
	topic := "test-topic"

	// Create two subscribers
	sub1, err := broker.Subscribe(ctx, topic, "group1")
	if err != nil {
		t.Fatalf("Subscribe 1 failed: %v", err)
	}

	sub2, err := broker.Subscribe(ctx, topic, "group2")
	if err != nil {
		t.Fatalf("Subscribe 2 failed: %v", err)
	}

	// Publish message
	value := []byte("broadcast message")
	if err := broker.Publish(ctx, topic, "key", value); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	// Both subscribers should receive the message
	for i, sub := range []<-chan Message{sub1, sub2} {
		select {
		case msg := <-sub:
			if string(msg.Value) != string(value) {
				t.Errorf("Subscriber %d: expected value %s, got %s", i+1, string(value), string(msg.Value))
			}
		case <-time.After(1 * time.Second):
			t.Fatalf("Subscriber %d: timeout waiting for message", i+1)
		}
	}
}

func TestInMemoryBroker_ClosedBroker(t *testing.T) {
	broker := NewInMemoryBroker()
	broker.Close()

	ctx := context.Background()

	// Publishing to closed broker should fail
	err := broker.Publish(ctx, "test", "key", []byte("value"))
	if err == nil {
		t.Error("Expected error when publishing to closed broker")
	}

	// Subscribing to closed broker should fail
	_, err = broker.Subscribe(ctx, "test", "group")
	if err == nil {
		t.Error("Expected error when subscribing to closed broker")
	}
}

func TestInMemoryBroker_TopicIsolation(t *testing.T) {
	broker := NewInMemoryBroker()
	defer broker.Close()

	ctx := context.Background()
	chA, _ := broker.Subscribe(ctx, "topic-a", "g")
	chB, _ := broker.Subscribe(ctx, "topic-b", "g")

	if err := broker.Publish(ctx, "topic-a", "k", []byte("for a")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case msg := <-chA:
		if string(msg.Value) != "for a" {
			t.Errorf("topic-a got %q", msg.Value)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("Timeout waiting for topic-a message")
	}

	select {
	case msg := <-chB:
		t.Errorf("topic-b received a message meant for topic-a: %q", msg.Value)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestInMemoryBroker_OffsetsPerTopic(t *testing.T) {
	broker := NewInMemoryBroker()
	defer broker.Close()

	ctx := context.Background()
	ch, _ := broker.Subscribe(ctx, "t", "g")

	for i := 0; i < 3; i++ {
		if err := broker.Publish(ctx, "t", "k", []byte("v")); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
	}
	// other topics keep their own counters
	if err := broker.Publish(ctx, "other", "k", []byte("v")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	for want := int64(0); want < 3; want++ {
		msg := <-ch
		if msg.Offset != want {
			t.Errorf("Offset = %d, want %d", msg.Offset, want)
		}
	}
}

func TestInMemoryBroker_ContextCancelClosesChannel(t *testing.T) {
	broker := NewInMemoryBroker()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := broker.Subscribe(ctx, "t", "g")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(1 * time.Second):
		t.Fatal("channel not closed after cancel")
	}

	// publishing with no subscribers left is fine
	if err := broker.Publish(context.Background(), "t", "k", []byte("v")); err != nil {
		t.Errorf("Publish failed: %v", err)
	}
}

func TestInMemoryBroker_CloseClosesSubscribers(t *testing.T) {
	broker := NewInMemoryBroker()
	ch, _ := broker.Subscribe(context.Background(), "t", "g")

	if err := broker.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := broker.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	if _, ok := <-ch; ok {
		t.Error("expected closed channel after Close")
	}
}

func TestNewRedpandaBroker_RequiresAddress(t *testing.T) {
	if _, err := NewRedpandaBroker(nil, logger.NewSilentLogger()); err == nil {
		t.Error("expected error with no broker addresses")
	}
}

// TestRedpandaBroker_RoundTrip needs a cluster: REDPANDA_TEST_BROKERS=localhost:19092
func TestRedpandaBroker_RoundTrip(t *testing.T) {
	addrs := os.Getenv("REDPANDA_TEST_BROKERS")
	if addrs == "" {
		t.Skip("REDPANDA_TEST_BROKERS not set")
	}

	b, err := NewRedpandaBroker(strings.Split(addrs, ","), logger.NewSilentLogger())
	if err != nil {
		t.Fatalf("NewRedpandaBroker() error = %v", err)
	}
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := b.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	topic := "devpulse-test-" + uuid.NewString()
	if err := b.Publish(ctx, topic, "req-1", []byte(`{"request_id":"req-1"}`)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	// a fresh group reads from the start of the topic
	group := "devpulse-test-" + uuid.NewString()
	subCtx, stop := context.WithCancel(ctx)
	ch, err := b.Subscribe(subCtx, topic, group)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	select {
	case msg := <-ch:
		if msg.Key != "req-1" || msg.Topic != topic {
			t.Errorf("message = %+v", msg)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}

	// the group can subscribe again once the first subscription ends
	stop()
	for range ch {
	}
	deadline := time.Now().Add(5 * time.Second)
	for {
		_, err := b.Subscribe(ctx, topic, group)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("re-Subscribe() error = %v", err)
		}
		time.Sleep(50 * time.Millisecond)
	}
}
