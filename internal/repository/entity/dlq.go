package entity

import "time"

// KafkaDlq is a lifecycle event that exhausted its publish retries. Rows are
// replayed by hand; nothing reads them automatically.
type KafkaDlq struct {
	ID            int64     `gorm:"primaryKey"`
	Topic         string    `gorm:"column:topic"`
	Key           string    `gorm:"column:message_key"`
	Payload       []byte    `gorm:"column:payload"`
	AttemptCount  int       `gorm:"column:attempt_count"`
	LastAttemptAt time.Time `gorm:"column:last_attempt_at"`
}

func (KafkaDlq) TableName() string {
	return "kafka_dlq"
}
