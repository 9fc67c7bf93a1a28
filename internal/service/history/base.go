// Package history copies lifecycle events from the event topic into the
// analytics store in batches.
package history

import (
	"context"
	"time"

	"github.com/elfabitto/sistema-de-atendimento/internal/domain"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBatchSize  = 100
	DefaultFlushEvery = time.Second
	insertTimeout     = 5 * time.Second
)

type Ingestor struct {
	reader     messageReader
	repo       eventWriter
	clock      domain.Clock
	batchSize  int
	flushEvery time.Duration
	logger     *logrus.Logger
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type eventWriter interface {
	InsertEvents(ctx context.Context, events []domain.Event, timestamp time.Time) error
}

func NewIngestor(
	reader messageReader,
	repo eventWriter,
	clock domain.Clock,
	batchSize int,
	flushEvery time.Duration,
	logger *logrus.Logger,
) *Ingestor {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if flushEvery <= 0 {
		flushEvery = DefaultFlushEvery
	}
	return &Ingestor{
		reader:     reader,
		repo:       repo,
		clock:      clock,
		batchSize:  batchSize,
		flushEvery: flushEvery,
		logger:     logger,
	}
}
