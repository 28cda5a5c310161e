package constants

import "time"

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	DefaultInputTopic  = "inbound_events"
	DefaultOutputTopic = "mediated_events"
)

const (
	DefaultMongoDBName = "drover"
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DefaultLimit       = 100
	MaxLimit           = 1000
	DefaultTruncateLen = 100
)

const (
	DefaultTTLSeconds = 3600
)

const (
	IdempotentKeyPrefix = "drover:idempotent:"
)
