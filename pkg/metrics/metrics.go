package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ExchangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_exchanges_total",
			Help: "Total number of exchanges driven to completion by the engine (count)",
		},
		[]string{"route", "status"},
	)

	ExchangeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engine_exchange_duration_ms",
			Help:    "End-to-end exchange processing duration in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"route", "status"},
	)

	EngineInflightExchanges = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "engine_inflight_exchanges",
			Help: "Number of exchanges currently owned by the engine (count)",
		},
	)

	EngineQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "engine_queue_depth",
			Help: "Number of ready continuations waiting for a worker (count)",
		},
	)

	RedeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_redeliveries_total",
			Help: "Total number of redelivery attempts scheduled by the policy engine (count)",
		},
		[]string{"kind"},
	)

	RedeliveriesExhaustedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_redeliveries_exhausted_total",
			Help: "Total number of steps whose redelivery policy ran out of attempts (count)",
		},
		[]string{"kind"},
	)

	DeadLettersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dead_letters_total",
			Help: "Total number of exchanges archived to the dead letter store (count)",
		},
		[]string{"kind"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	RetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of broker publish retry attempts (count)",
		},
		[]string{"service", "topic"},
	)

	KafkaMessagesReadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_read_total",
			Help: "Total number of messages read from Kafka (count)",
		},
		[]string{"service", "topic", "status"},
	)

	KafkaMessagesWrittenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_written_total",
			Help: "Total number of messages written to Kafka (count)",
		},
		[]string{"service", "topic", "status"},
	)

	KafkaReadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_read_duration_ms",
			Help:    "Duration of reading messages from Kafka in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"service", "topic"},
	)

	KafkaWriteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_write_duration_ms",
			Help:    "Duration of writing messages to Kafka in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"service", "topic"},
	)

	DLQMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dlq_messages_total",
			Help: "Total number of messages published to the dead letter topic (count)",
		},
		[]string{"service", "topic", "reason"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked against rate limit (count)",
		},
		[]string{"status"},
	)
)

func RegisterEngineMetrics() {
	prometheus.MustRegister(ExchangesTotal)
	prometheus.MustRegister(ExchangeDuration)
	prometheus.MustRegister(EngineInflightExchanges)
	prometheus.MustRegister(EngineQueueDepth)
	prometheus.MustRegister(RedeliveriesTotal)
	prometheus.MustRegister(RedeliveriesExhaustedTotal)
	prometheus.MustRegister(DeadLettersTotal)
}

func RegisterBrokerMetrics() {
	prometheus.MustRegister(RetryAttemptsTotal)
	prometheus.MustRegister(KafkaMessagesReadTotal)
	prometheus.MustRegister(KafkaMessagesWrittenTotal)
	prometheus.MustRegister(KafkaReadDuration)
	prometheus.MustRegister(KafkaWriteDuration)
	prometheus.MustRegister(DLQMessagesTotal)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(CircuitBreakerState)
}

func RegisterManagementMetrics() {
	prometheus.MustRegister(RateLimitRequestsTotal)
}

func ObserveExchangeDuration(route, status string, duration time.Duration) {
	ExchangeDuration.WithLabelValues(route, status).Observe(float64(duration.Milliseconds()))
}
