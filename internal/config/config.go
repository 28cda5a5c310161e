package config

import (
	"time"
)

type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Broker         BrokerConfig
	Logging        LoggingConfig
	Engine         EngineConfig
	Route          RouteConfig
	Management     ManagementConfig
	CircuitBreaker CircuitBreakerConfig
	Tracing        TracingConfig
}

type ServerConfig struct {
	Port                int           `mapstructure:"port"`
	ReadTimeoutSeconds  time.Duration `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds time.Duration `mapstructure:"write_timeout_seconds"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig
	Redis         RedisConfig
	MongoDB       MongoDBConfig
	RunMigrations bool `mapstructure:"run_migrations"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

type MongoDBConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type BrokerConfig struct {
	Type  string      `mapstructure:"type"`
	Kafka KafkaConfig `mapstructure:"kafka"`
}

type KafkaConfig struct {
	Brokers     []string    `mapstructure:"brokers"`
	GroupID     string      `mapstructure:"group_id"`
	InputTopic  string      `mapstructure:"input_topic"`
	OutputTopic string      `mapstructure:"output_topic"`
	DLQTopic    string      `mapstructure:"dlq_topic"`
	Retry       RetryConfig `mapstructure:"retry"`
}

type RetryConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EngineConfig sizes the worker pool executing ready continuations.
type EngineConfig struct {
	Workers   int `mapstructure:"workers"`
	QueueSize int `mapstructure:"queue_size"`
}

// RouteConfig declares the hosted mediation route.
type RouteConfig struct {
	ID         string           `mapstructure:"id"`
	Filter     FilterConfig     `mapstructure:"filter"`
	Transform  TransformConfig  `mapstructure:"transform"`
	Throttle   ThrottleConfig   `mapstructure:"throttle"`
	Idempotent IdempotentConfig `mapstructure:"idempotent"`
	Redelivery RedeliveryConfig `mapstructure:"redelivery"`
	DeadLetter DeadLetterConfig `mapstructure:"dead_letter"`
}

type FilterConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Expression string `mapstructure:"expression"`
}

type TransformConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Expression string `mapstructure:"expression"`
}

type ThrottleConfig struct {
	Enabled   bool    `mapstructure:"enabled"`
	PerSecond float64 `mapstructure:"per_second"`
	Burst     int     `mapstructure:"burst"`
}

type IdempotentConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Header     string `mapstructure:"header"`
	Backend    string `mapstructure:"backend"` // "memory", "redis", "postgres"
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

type RedeliveryConfig struct {
	MaxRedeliveries int           `mapstructure:"max_redeliveries"`
	Backoff         string        `mapstructure:"backoff"` // "constant", "linear", "exponential"
	Delay           time.Duration `mapstructure:"delay"`
	Increment       time.Duration `mapstructure:"increment"`
	Multiplier      float64       `mapstructure:"multiplier"`
	MaxDelay        time.Duration `mapstructure:"max_delay"`
	Jitter          float64       `mapstructure:"jitter"`
}

type DeadLetterConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Persist bool `mapstructure:"persist"`
}

type ManagementConfig struct {
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled         bool    `mapstructure:"enabled"`
	RPS             float64 `mapstructure:"rps"`
	Burst           int     `mapstructure:"burst"`
	CleanupInterval int     `mapstructure:"cleanup_interval"`
	MaxAge          int     `mapstructure:"max_age"`
}

type CircuitBreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	MinRequests  uint32        `mapstructure:"min_requests"`
}

type TracingConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	ServiceName string        `mapstructure:"service_name"`
	OTLP        OTLPConfig    `mapstructure:"otlp"`
	Sampler     SamplerConfig `mapstructure:"sampler"`
}

type OTLPConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

type SamplerConfig struct {
	Type  string  `mapstructure:"type"`
	Param float64 `mapstructure:"param"`
}

func Load(configFile string) (*Config, error) {
	return LoadConfig(configFile)
}
