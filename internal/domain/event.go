package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventQueueUpdated     EventType = "queue_updated"
	EventRequestAssigned  EventType = "request_assigned"
	EventSessionAccepted  EventType = "session_accepted"
	EventSessionConcluded EventType = "session_concluded"
	EventSessionSkipped   EventType = "session_skipped"
	EventSessionTimedOut  EventType = "session_timed_out"
)

// Event is a lifecycle notification. Fields not relevant to Type are zero.
type Event struct {
	ID                  string       `json:"id"`
	Type                EventType    `json:"type"`
	OccurredAt          time.Time    `json:"occurred_at"`
	RequestID           int64        `json:"request_id,omitempty"`
	SessionID           string       `json:"session_id,omitempty"`
	AttendantID         int64        `json:"attendant_id,omitempty"`
	PreviousAttendantID int64        `json:"previous_attendant_id,omitempty"`
	NextAttendantID     *int64       `json:"next_attendant_id,omitempty"`
	TimeoutSeconds      int64        `json:"timeout_seconds,omitempty"`
	Queue               []QueueEntry `json:"queue,omitempty"`
}

// KafkaMessage is an encoded event waiting for delivery to the event topic.
type KafkaMessage struct {
	Key     string
	Payload []byte
	Topic   string
	// Attempts indicates how many times producers attempted writes
	Attempts int
}

func NewEvent(t EventType, at time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		OccurredAt: at,
	}
}
