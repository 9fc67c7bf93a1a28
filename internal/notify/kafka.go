package notify

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/elfabitto/sistema-de-atendimento/internal/constant"
	"github.com/elfabitto/sistema-de-atendimento/internal/domain"
	"github.com/elfabitto/sistema-de-atendimento/internal/metrics"
	"github.com/elfabitto/sistema-de-atendimento/internal/worker"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type dlqRepository interface {
	InsertDLQ(ctx context.Context, km domain.KafkaMessage) error
}

// KafkaPublisher writes events to the events topic from a worker pool.
// Messages are keyed by request so one request's events stay ordered within
// a partition. Anything that cannot be written ends up in the DLQ table.
type KafkaPublisher struct {
	writer messageWriter
	dlq    dlqRepository
	pool   *worker.WorkerPool[domain.KafkaMessage]
	logger *logrus.Logger
}

func NewKafkaPublisher(writer messageWriter, dlq dlqRepository, workers int, logger *logrus.Logger) *KafkaPublisher {
	kp := &KafkaPublisher{
		writer: writer,
		dlq:    dlq,
		logger: logger,
	}
	kp.pool = worker.NewWorkerPool("kafka", workers, constant.KafkaWorkerBufSize, kp.produce, logger)
	return kp
}

func (kp *KafkaPublisher) Start() { kp.pool.Start() }

func (kp *KafkaPublisher) Stop() { kp.pool.Stop() }

func (kp *KafkaPublisher) Notify(ctx context.Context, ev domain.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		kp.logger.WithError(err).WithField("event_type", ev.Type).Error("failed to marshal event")
		return
	}

	km := domain.KafkaMessage{
		Key:     messageKey(ev),
		Payload: payload,
		Topic:   constant.TopicEvents,
	}

	if kp.pool.Submit(km) {
		return
	}

	// worker buffer full; park it so nothing is lost
	kp.park(ctx, km)
}

func (kp *KafkaPublisher) produce(ctx context.Context, workerID int, km domain.KafkaMessage) {
	for attempt := 0; attempt < constant.KafkaWriteRetries; attempt++ {
		km.Attempts = attempt + 1

		writeCtx, cancel := context.WithTimeout(ctx, constant.KafkaWriteTimeout)
		err := kp.writer.WriteMessages(writeCtx, kafka.Message{
			Topic: km.Topic,
			Key:   []byte(km.Key),
			Value: km.Payload,
			Time:  time.Now(),
		})
		cancel()
		if err == nil {
			return
		}

		kp.logger.Warnf("kafka worker %d: write attempt %d failed: %v", workerID, attempt+1, err)
		select {
		case <-ctx.Done():
			kp.park(ctx, km)
			return
		case <-time.After(constant.KafkaRetryBackoff):
		}
	}

	kp.park(ctx, km)
}

func (kp *KafkaPublisher) park(ctx context.Context, km domain.KafkaMessage) {
	metrics.NotificationFailuresTotal.WithLabelValues("kafka").Inc()
	if err := kp.dlq.InsertDLQ(context.WithoutCancel(ctx), km); err != nil {
		kp.logger.Error(errors.Wrap(err, "CRITICAL: dlq insert failed"))
	}
}

func messageKey(ev domain.Event) string {
	if ev.RequestID == 0 {
		return string(ev.Type)
	}
	return strconv.FormatInt(ev.RequestID, 10)
}
