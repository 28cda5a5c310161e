package integration

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drover/internal/broker"
	"drover/internal/config"
)

func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer controllerConn.Close()

	configs := make([]kafkago.TopicConfig, 0, len(topics))
	for _, topic := range topics {
		configs = append(configs, kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
	}
	require.NoError(t, controllerConn.CreateTopics(configs...))
}

func testKafkaConfig(brokers []string, groupID string) config.KafkaConfig {
	return config.KafkaConfig{
		Brokers: brokers,
		GroupID: groupID,
		Retry: config.RetryConfig{
			MaxAttempts:     1,
			InitialInterval: 10 * time.Millisecond,
		},
	}
}

func TestKafkaBroker_RoundTrip(t *testing.T) {
	brokers := SetupKafka(t)
	createTopics(t, brokers, "roundtrip_events")

	cfg := testKafkaConfig(brokers, "roundtrip-group")
	log := createTestLogger()

	producer := broker.NewKafkaProducer(cfg, log)
	t.Cleanup(func() { producer.Close() })

	consumer := broker.NewKafkaConsumer(cfg, log)
	consumer.SetServiceName("integration-test")
	t.Cleanup(func() { consumer.Close() })

	received := make(chan broker.Envelope, 1)

	consumeCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = consumer.Consume(consumeCtx, "roundtrip_events", func(_ context.Context, env broker.Envelope) error {
			select {
			case received <- env:
			default:
			}
			return nil
		})
	}()

	env := broker.Envelope{
		ID:        uuid.New().String(),
		Source:    "integration-test",
		Timestamp: time.Now().UTC(),
		Headers:   map[string]interface{}{"event-type": "order"},
		Body:      map[string]interface{}{"order": "A-1", "amount": 42.5},
	}

	ctx, publishCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer publishCancel()
	require.NoError(t, producer.Publish(ctx, "roundtrip_events", env))

	select {
	case got := <-received:
		assert.Equal(t, env.ID, got.ID)
		assert.Equal(t, "integration-test", got.Source)
		assert.Equal(t, "order", got.Headers["event-type"])
		body, ok := got.Body.(map[string]interface{})
		require.True(t, ok, "body should decode as a map, got %T", got.Body)
		assert.Equal(t, "A-1", body["order"])
	case <-time.After(30 * time.Second):
		t.Fatal("message was not consumed")
	}
}

func TestKafkaBroker_FailedMessageGoesToDLQ(t *testing.T) {
	brokers := SetupKafka(t)
	createTopics(t, brokers, "dlq_input_events", "dlq_events")

	cfg := testKafkaConfig(brokers, "dlq-group")
	cfg.DLQTopic = "dlq_events"
	log := createTestLogger()

	producer := broker.NewKafkaProducer(cfg, log)
	t.Cleanup(func() { producer.Close() })

	consumer := broker.NewKafkaConsumer(cfg, log)
	consumer.SetServiceName("integration-test")
	t.Cleanup(func() { consumer.Close() })

	consumeCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = consumer.Consume(consumeCtx, "dlq_input_events", func(context.Context, broker.Envelope) error {
			return errors.New("downstream unavailable")
		})
	}()

	dlqCfg := testKafkaConfig(brokers, "dlq-reader-group")
	dlqConsumer := broker.NewKafkaConsumer(dlqCfg, log)
	dlqConsumer.SetServiceName("integration-test")
	t.Cleanup(func() { dlqConsumer.Close() })

	dead := make(chan broker.Envelope, 1)
	go func() {
		_ = dlqConsumer.Consume(consumeCtx, "dlq_events", func(_ context.Context, env broker.Envelope) error {
			select {
			case dead <- env:
			default:
			}
			return nil
		})
	}()

	env := broker.Envelope{
		ID:        uuid.New().String(),
		Source:    "integration-test",
		Timestamp: time.Now().UTC(),
		Body:      map[string]interface{}{"order": "A-2"},
	}

	ctx, publishCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer publishCancel()
	require.NoError(t, producer.Publish(ctx, "dlq_input_events", env))

	select {
	case got := <-dead:
		assert.Equal(t, env.ID, got.ID)
		require.NotNil(t, got.Properties)
		assert.Contains(t, fmt.Sprint(got.Properties["dlq_reason"]), "downstream unavailable")
		assert.Equal(t, "dlq_input_events", got.Properties["dlq_source_topic"])
	case <-time.After(60 * time.Second):
		t.Fatal("message did not reach the DLQ")
	}
}
