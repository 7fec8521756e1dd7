package bus

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/agentgpt/agentgpt/internal/config"
	"github.com/nats-io/nats.go"
)

func newTestBus(t *testing.T) (*Bus, *Client) {
	t.Helper()
	b, err := New(config.NATSConfig{Port: -1}) // random port
	if err != nil {
		t.Fatalf("failed to create bus: %v", err)
	}
	t.Cleanup(b.Close)

	client, err := NewClient(b)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	t.Cleanup(client.Close)
	return b, client
}

func TestBusStartStop(t *testing.T) {
	b, _ := newTestBus(t)
	if b.ClientURL() == "" {
		t.Fatal("expected non-empty client URL")
	}
}

func TestPublishEvent(t *testing.T) {
	_, client := newTestBus(t)

	received := make(chan []byte, 1)
	_, err := client.Subscribe(TopicTaskUpdated, func(msg *nats.Msg) {
		received <- msg.Data
	})
	if err != nil {
		t.Fatalf("subscribe error: %v", err)
	}

	if err := client.PublishEvent(TopicTaskUpdated, "task_updated", map[string]string{"id": "t1"}); err != nil {
		t.Fatalf("publish event error: %v", err)
	}
	client.Flush()

	select {
	case data := <-received:
		var e Event
		if err := json.Unmarshal(data, &e); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if e.Type != "task_updated" {
			t.Errorf("expected type task_updated, got %s", e.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestFirehoseReceivesAllTopics(t *testing.T) {
	_, client := newTestBus(t)

	received := make(chan *nats.Msg, 4)
	_, err := client.Subscribe(TopicEventsAll, func(msg *nats.Msg) {
		received <- msg
	})
	if err != nil {
		t.Fatalf("subscribe error: %v", err)
	}

	topics := []string{TopicAgentUpdated, TopicLogAdded, TopicExecutionStarted}
	for _, topic := range topics {
		if err := client.PublishEvent(topic, "x", nil); err != nil {
			t.Fatalf("publish to %s: %v", topic, err)
		}
	}
	client.Flush()

	for range topics {
		select {
		case <-received:
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for firehose event")
		}
	}
}
