package domain

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionInService SessionStatus = "in_service"
	SessionConcluded SessionStatus = "concluded"
	SessionSkipped   SessionStatus = "skipped"
	SessionTimedOut  SessionStatus = "timed_out"
)

func (s SessionStatus) Terminal() bool {
	return s == SessionConcluded || s == SessionSkipped || s == SessionTimedOut
}

// ServiceSession is one attempt to service a Request by one Attendant.
type ServiceSession struct {
	ID          uuid.UUID     `json:"id"`
	RequestID   int64         `json:"request_id"`
	AttendantID int64         `json:"attendant_id"`
	Status      SessionStatus `json:"status"`
	StartedAt   time.Time     `json:"started_at"`
	AcceptedAt  *time.Time    `json:"accepted_at,omitempty"`
	EndedAt     *time.Time    `json:"ended_at,omitempty"`
	Note        string        `json:"note"`
	Version     int64         `json:"-"`
}

func (s ServiceSession) Duration() time.Duration {
	if s.EndedAt == nil {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// Elapsed is the running duration for an active session and the final
// duration for a finished one.
func (s ServiceSession) Elapsed(now time.Time) time.Duration {
	if s.EndedAt != nil {
		return s.Duration()
	}
	return now.Sub(s.StartedAt)
}

func (s ServiceSession) Clone() ServiceSession {
	if s.AcceptedAt != nil {
		t := *s.AcceptedAt
		s.AcceptedAt = &t
	}
	if s.EndedAt != nil {
		t := *s.EndedAt
		s.EndedAt = &t
	}
	return s
}
