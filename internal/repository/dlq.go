package repository

import (
	"context"
	"time"

	"github.com/elfabitto/sistema-de-atendimento/internal/constant"
	"github.com/elfabitto/sistema-de-atendimento/internal/domain"
	"github.com/elfabitto/sistema-de-atendimento/internal/repository/entity"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type dlqRepository struct {
	db *gorm.DB
}

func NewDlqRepository(db *gorm.DB) *dlqRepository {
	return &dlqRepository{
		db: db,
	}
}

// InsertDLQ parks an event the publisher gave up on.
func (dr *dlqRepository) InsertDLQ(ctx context.Context, km domain.KafkaMessage) error {
	ctx, cancel := context.WithTimeout(ctx, constant.DBTxTimeout)
	defer cancel()

	err := gorm.G[entity.KafkaDlq](dr.db).Create(ctx, &entity.KafkaDlq{
		Topic:         km.Topic,
		Key:           km.Key,
		Payload:       km.Payload,
		AttemptCount:  km.Attempts,
		LastAttemptAt: time.Now().UTC(),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to park message %s in dlq", km.Key)
	}
	return nil
}
