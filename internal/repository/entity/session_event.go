package entity

import (
	"time"

	"github.com/elfabitto/sistema-de-atendimento/internal/domain"
)

// SessionEvent is the ClickHouse row for one lifecycle event.
type SessionEvent struct {
	EventID             string
	EventType           string
	RequestID           int64
	SessionID           string
	AttendantID         int64
	PreviousAttendantID int64
	NextAttendantID     int64
	OccurredAt          time.Time
	Timestamp           time.Time
}

func (SessionEvent) TableName() string {
	return "session_events"
}

func (e SessionEvent) ToDomain() domain.Event {
	ev := domain.Event{
		ID:                  e.EventID,
		Type:                domain.EventType(e.EventType),
		OccurredAt:          e.OccurredAt,
		RequestID:           e.RequestID,
		SessionID:           e.SessionID,
		AttendantID:         e.AttendantID,
		PreviousAttendantID: e.PreviousAttendantID,
	}
	if e.NextAttendantID != 0 {
		next := e.NextAttendantID
		ev.NextAttendantID = &next
	}
	return ev
}

func SessionEventFromDomain(ev domain.Event, timestamp time.Time) SessionEvent {
	row := SessionEvent{
		EventID:             ev.ID,
		EventType:           string(ev.Type),
		RequestID:           ev.RequestID,
		SessionID:           ev.SessionID,
		AttendantID:         ev.AttendantID,
		PreviousAttendantID: ev.PreviousAttendantID,
		OccurredAt:          ev.OccurredAt,
		Timestamp:           timestamp,
	}
	if ev.NextAttendantID != nil {
		row.NextAttendantID = *ev.NextAttendantID
	}
	return row
}
