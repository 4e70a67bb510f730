// Package config holds the typed configuration structs unmarshalled by
// common.LoadConfig for each EventFlow binary.
package config

import (
	"time"

	redisconfig "github.com/eventflow-io/eventflow/internal/common/config"
)

// PostgresConfig mirrors the teacher's connection-string-by-map pattern:
// Connection is passed verbatim to postgres.CreateConnectionString.
type PostgresConfig struct {
	Connection   map[string]string
	MaxOpenConns int
	MaxIdleConns int
}

// QueueConfig names the Redis Streams topology the queue adapter binds to.
type QueueConfig struct {
	Redis          redisconfig.RedisConfig
	StreamName     string `validate:"required"`
	ConsumerGroup  string `validate:"required"`
	IdleReclaimMs  int64
	BlockTimeoutMs int64
}

// IdleReclaimThreshold is the reclaim-stale idle threshold, 60s when
// IdleReclaimMs is unset.
func (q QueueConfig) IdleReclaimThreshold() time.Duration {
	if q.IdleReclaimMs <= 0 {
		return 60 * time.Second
	}
	return time.Duration(q.IdleReclaimMs) * time.Millisecond
}

func (q QueueConfig) BlockTimeout() time.Duration {
	return time.Duration(q.BlockTimeoutMs) * time.Millisecond
}

// RetryConfig names the PERSIST backoff window.
type RetryConfig struct {
	MaxRetries int
	BaseS      int
	MaxS       int
}

// IngestionConfiguration configures cmd/ingestion.
type IngestionConfiguration struct {
	Postgres    PostgresConfig
	Queue       QueueConfig
	HttpPort    uint16
	MetricsPort uint16
	LogFormat   string
	LogLevel    string
}

// WorkerConfiguration configures cmd/worker.
type WorkerConfiguration struct {
	Postgres           PostgresConfig
	Queue              QueueConfig
	WorkerCount        int
	WorkerIdPrefix     string
	Retry              RetryConfig
	HighValueThreshold float64
	MetricsPort        uint16
	ShutdownGraceS     int
	LogFormat          string
	LogLevel           string
}
