package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"drover/internal/config"
	"drover/internal/constants"
	"drover/internal/logger"
	"drover/pkg/errors"
	"drover/pkg/logging"
	"drover/pkg/metrics"
	"drover/pkg/retry"
	"drover/pkg/tracing"
)

type KafkaProducer struct {
	writer      *kafka.Writer
	logger      logger.Logger
	serviceName string
}

func NewKafkaProducer(cfg config.KafkaConfig, log logger.Logger) *KafkaProducer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: constants.KafkaBatchTimeout,
		WriteTimeout: constants.KafkaWriteTimeout,
		Async:        false,
	}
	return &KafkaProducer{writer: w, logger: log, serviceName: "drover"}
}

func (p *KafkaProducer) Publish(ctx context.Context, topic string, env Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	headers := []kafka.Header{}
	headers = tracing.InjectTraceContext(ctx, headers)

	start := time.Now()
	err = p.writer.WriteMessages(ctx,
		kafka.Message{
			Topic:   topic,
			Key:     []byte(env.ID),
			Value:   body,
			Headers: headers,
			Time:    time.Now(),
		},
	)
	metrics.KafkaWriteDuration.WithLabelValues(p.serviceName, topic).
		Observe(float64(time.Since(start).Milliseconds()))

	if err != nil {
		metrics.KafkaMessagesWrittenTotal.WithLabelValues(p.serviceName, topic, "error").Inc()
		return fmt.Errorf("failed to write kafka message: %w", err)
	}

	metrics.KafkaMessagesWrittenTotal.WithLabelValues(p.serviceName, topic, "success").Inc()
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

type KafkaConsumer struct {
	cfg         config.KafkaConfig
	wg          sync.WaitGroup
	reader      *kafka.Reader
	logger      logger.Logger
	dlqProducer Producer
	serviceName string
}

func NewKafkaConsumer(cfg config.KafkaConfig, log logger.Logger) *KafkaConsumer {
	consumer := &KafkaConsumer{
		cfg:         cfg,
		logger:      log,
		serviceName: "unknown",
	}

	if cfg.DLQTopic != "" {
		consumer.dlqProducer = NewKafkaProducer(cfg, log)
	}

	return consumer
}

func (c *KafkaConsumer) SetServiceName(name string) {
	c.serviceName = name
}

func (c *KafkaConsumer) Consume(ctx context.Context, topic string, handler HandlerFunc) error {
	c.logger.Infow("Creating Kafka reader",
		"topic", topic,
		"brokers", c.cfg.Brokers,
		"group_id", c.cfg.GroupID,
		"service_name", c.serviceName,
	)

	c.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:  c.cfg.Brokers,
		GroupID:  c.cfg.GroupID,
		Topic:    topic,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		consumeCtx := logging.WithServiceName(ctx, c.serviceName)
		c.logger.InfowCtx(consumeCtx, "Started consuming",
			"topic", topic,
		)

		for {
			start := time.Now()
			m, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					c.logger.InfowCtx(consumeCtx, "Stopped consuming",
						"topic", topic,
						"reason", "context canceled",
					)
					return
				}
				c.logger.ErrorwCtx(consumeCtx, "Error fetching kafka message",
					"error", err,
					"topic", topic,
				)
				time.Sleep(time.Second)
				continue
			}
			metrics.KafkaReadDuration.WithLabelValues(c.serviceName, topic).
				Observe(float64(time.Since(start).Milliseconds()))

			var env Envelope
			if err := json.Unmarshal(m.Value, &env); err != nil {
				c.logger.ErrorwCtx(consumeCtx, "Failed to unmarshal envelope",
					"error", err,
					"topic", topic,
				)
				metrics.KafkaMessagesReadTotal.WithLabelValues(c.serviceName, topic, "malformed").Inc()
				_ = c.reader.CommitMessages(ctx, m)
				continue
			}
			metrics.KafkaMessagesReadTotal.WithLabelValues(c.serviceName, topic, "success").Inc()

			msgCtx, span := tracing.StartSpanFromKafkaMessage(ctx, "kafka.consume", m.Headers)

			if env.TraceID != "" {
				msgCtx = logging.WithTraceID(msgCtx, env.TraceID)
			}
			msgCtx = logging.WithExchangeID(msgCtx, env.ID)
			msgCtx = logging.WithServiceName(msgCtx, c.serviceName)

			if err := c.processWithRetry(msgCtx, env, handler, topic); err != nil {
				c.logger.ErrorwCtx(msgCtx, "Failed to process message after retries",
					"error", err,
					"topic", topic,
				)
				if c.dlqProducer != nil && c.cfg.DLQTopic != "" {
					if dlqErr := c.sendToDLQ(msgCtx, env, err, topic); dlqErr != nil {
						c.logger.ErrorwCtx(msgCtx, "Failed to send message to DLQ",
							"error", dlqErr,
							"topic", topic,
						)
					}
					_ = c.reader.CommitMessages(ctx, m)
				} else {
					c.logger.WarnwCtx(msgCtx, "No DLQ configured, committing message to avoid blocking",
						"topic", topic,
					)
					_ = c.reader.CommitMessages(ctx, m)
				}
			} else {
				if err := c.reader.CommitMessages(ctx, m); err != nil {
					c.logger.ErrorwCtx(msgCtx, "Failed to commit message",
						"error", err,
						"topic", topic,
					)
				}
			}
			span.End()
		}
	}()

	<-ctx.Done()
	return ctx.Err()
}

func (c *KafkaConsumer) Close() error {
	var err error
	if c.reader != nil {
		err = c.reader.Close()
	}
	if c.dlqProducer != nil {
		if closeErr := c.dlqProducer.Close(); closeErr != nil {
			if err == nil {
				err = closeErr
			}
		}
	}
	c.wg.Wait()
	return err
}

// processWithRetry retries transient broker-level failures. Redelivery of
// a failing route step is the policy engine's job; a message only reaches
// this retry after the route gave up on it entirely.
func (c *KafkaConsumer) processWithRetry(ctx context.Context, env Envelope, handler HandlerFunc, topic string) error {
	policy := retry.DefaultPolicy()

	if c.cfg.Retry.MaxAttempts > 0 {
		policy.MaxAttempts = c.cfg.Retry.MaxAttempts
	}
	if c.cfg.Retry.InitialInterval > 0 {
		policy.InitialInterval = c.cfg.Retry.InitialInterval
	}
	if c.cfg.Retry.MaxInterval > 0 {
		policy.MaxInterval = c.cfg.Retry.MaxInterval
	}
	if c.cfg.Retry.Multiplier > 0 {
		policy.Multiplier = c.cfg.Retry.Multiplier
	}
	if c.cfg.Retry.MaxElapsedTime > 0 {
		policy.MaxElapsedTime = c.cfg.Retry.MaxElapsedTime
	}

	return retry.RetryWithCallback(ctx, policy, func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = errors.RecoverPanic(r)
				c.logger.ErrorwCtx(ctx, "Panic recovered during message processing",
					"error", err,
					"topic", topic,
				)
			}
		}()
		err = handler(ctx, env)
		if errors.IsExhausted(err) {
			// The route already redelivered per its own policy.
			return retry.NewFatalError(err)
		}
		return err
	}, func(attempt int, err error, nextDelay time.Duration) {
		metrics.RetryAttemptsTotal.WithLabelValues(c.serviceName, topic).Inc()
		c.logger.WarnwCtx(ctx, "Retrying message processing",
			"attempt", attempt,
			"max_attempts", policy.MaxAttempts,
			"next_delay", nextDelay,
			"error", err,
			"topic", topic,
		)
	})
}

func (c *KafkaConsumer) sendToDLQ(ctx context.Context, env Envelope, originalErr error, sourceTopic string) error {
	if env.Properties == nil {
		env.Properties = make(map[string]interface{})
	}
	env.Properties["dlq_reason"] = originalErr.Error()
	env.Properties["dlq_source_topic"] = sourceTopic
	env.Properties["dlq_timestamp"] = time.Now()

	if err := c.dlqProducer.Publish(ctx, c.cfg.DLQTopic, env); err != nil {
		return fmt.Errorf("failed to publish to DLQ: %w", err)
	}

	metrics.DLQMessagesTotal.WithLabelValues(c.serviceName, sourceTopic, "processing_failed").Inc()
	c.logger.InfowCtx(ctx, "Message sent to DLQ",
		"source_topic", sourceTopic,
		"dlq_topic", c.cfg.DLQTopic,
		"reason", originalErr.Error(),
	)

	return nil
}
