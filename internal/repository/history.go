package repository

import (
	"context"
	"time"

	"github.com/elfabitto/sistema-de-atendimento/internal/domain"
	"github.com/elfabitto/sistema-de-atendimento/internal/repository/entity"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// historyRepository stores lifecycle events in ClickHouse. Rows are
// append-only; a request's timeline is read back in occurrence order.
type historyRepository struct {
	clickhouse *gorm.DB
}

func NewHistoryRepository(clickhouse *gorm.DB) *historyRepository {
	return &historyRepository{
		clickhouse: clickhouse,
	}
}

func (hr *historyRepository) InsertEvents(ctx context.Context, events []domain.Event, timestamp time.Time) error {
	if len(events) == 0 {
		return nil
	}

	rows := make([]entity.SessionEvent, 0, len(events))
	for _, ev := range events {
		rows = append(rows, entity.SessionEventFromDomain(ev, timestamp))
	}

	if err := gorm.G[entity.SessionEvent](hr.clickhouse).CreateInBatches(ctx, &rows, len(rows)); err != nil {
		return errors.Wrap(err, "failed to insert session events")
	}
	return nil
}

func (hr *historyRepository) RequestTimeline(ctx context.Context, requestID int64) ([]domain.Event, error) {
	rows, err := gorm.G[entity.SessionEvent](hr.clickhouse).
		Where("request_id = ?", requestID).
		Order("occurred_at ASC").
		Find(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get timeline of request %d", requestID)
	}

	events := make([]domain.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.ToDomain())
	}
	return events, nil
}

func (hr *historyRepository) AttendantEvents(ctx context.Context, attendantID int64, limit, offset int) ([]domain.Event, int64, error) {
	total, err := gorm.G[entity.SessionEvent](hr.clickhouse).
		Where("attendant_id = ?", attendantID).
		Count(ctx, "event_id")
	if err != nil {
		return nil, 0, errors.Wrapf(err, "failed to count events of attendant %d", attendantID)
	}

	rows, err := gorm.G[entity.SessionEvent](hr.clickhouse).
		Where("attendant_id = ?", attendantID).
		Order("occurred_at DESC").
		Limit(limit).
		Offset(offset).
		Find(ctx)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "failed to get events of attendant %d", attendantID)
	}

	events := make([]domain.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.ToDomain())
	}
	return events, total, nil
}
