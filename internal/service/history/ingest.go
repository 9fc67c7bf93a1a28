package history

import (
	"context"
	"encoding/json"
	"time"

	"github.com/elfabitto/sistema-de-atendimento/internal/constant"
	"github.com/elfabitto/sistema-de-atendimento/internal/domain"
)

// Run consumes until ctx is cancelled. Whatever is buffered at that point is
// flushed before returning.
func (in *Ingestor) Run(ctx context.Context) {
	events := make(chan domain.Event, in.batchSize)
	done := make(chan struct{})

	go func() {
		defer close(done)
		in.read(ctx, events)
	}()

	batch := make([]domain.Event, 0, in.batchSize)
	ticker := time.NewTicker(in.flushEvery)
	defer ticker.Stop()

	flush := func(ctx context.Context) {
		if len(batch) == 0 {
			return
		}
		insertCtx, cancel := context.WithTimeout(ctx, insertTimeout)
		defer cancel()

		if err := in.repo.InsertEvents(insertCtx, batch, in.clock.Now()); err != nil {
			in.logger.WithError(err).Errorf("failed to insert %d events", len(batch))
		} else {
			in.logger.Debugf("flushed %d events", len(batch))
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			<-done
			// keep what the reader handed over before it stopped
		drain:
			for {
				select {
				case ev := <-events:
					batch = append(batch, ev)
				default:
					break drain
				}
			}
			flush(context.WithoutCancel(ctx))
			return
		case ev := <-events:
			batch = append(batch, ev)
			if len(batch) >= in.batchSize {
				flush(ctx)
			}
		case <-ticker.C:
			flush(ctx)
		}
	}
}

func (in *Ingestor) read(ctx context.Context, out chan<- domain.Event) {
	for {
		m, err := in.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			in.logger.WithError(err).Error("failed to read event")
			select {
			case <-ctx.Done():
				return
			case <-time.After(constant.KafkaRetryBackoff):
			}
			continue
		}

		var ev domain.Event
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			in.logger.WithError(err).Errorf("failed to decode event, raw: %s", string(m.Value))
			continue
		}

		select {
		case out <- ev:
		case <-ctx.Done():
			return
		}
	}
}
