package constant

import (
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	UserIdKey = "user_id"

	TopicEvents        = "attendance.events"
	KafkaProducerAcks  = kafka.RequireAll
	KafkaWriteTimeout  = 5 * time.Second
	KafkaWorkerCount   = 4
	KafkaWorkerBufSize = 10000 // capacity of in-memory channel; tune by memory and expected bursts
	KafkaWriteRetries  = 3
	KafkaRetryBackoff  = 500 * time.Millisecond
	DBTxTimeout        = 2 * time.Second // keep transactions short

	RedisGeneralChannel         = "rotation:general"
	RedisAttendantChannelPrefix = "rotation:attendant:"
	RedisLockPrefix             = "rotation:lock:"
	RedisIdempotencyPrefix      = "rotation:idempotency:"
	RedisIdempotencyTTL         = 24 * time.Hour
	RedisPublishTimeout         = 2 * time.Second
	DefaultLockTTL              = 10 * time.Second
	LockPollInterval            = 20 * time.Millisecond
	DefaultTimeoutThreshold     = 20 * time.Minute
	DefaultSweepInterval        = time.Minute
	ConflictRetries             = 3
	ConflictRetryBackoff        = 10 * time.Millisecond
	SettingTimeoutMinutes       = "timeout_minutes"
	QueueLockKey                = "queue"
	RequestLockKeyPrefix        = "request:"
)
