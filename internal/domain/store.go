package domain

import (
	"context"
	"time"
)

// Store is the transactional entity store. Update methods compare-and-swap on
// the entity Version, bump it on success and fail with constant.ConflictErr
// when the stored version moved.
type Store interface {
	// WithTx runs fn against a transactional view; fn's writes commit
	// together or not at all.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	CreateAttendant(ctx context.Context, a *Attendant) error
	GetAttendant(ctx context.Context, id int64) (Attendant, error)
	ListAttendants(ctx context.Context) ([]Attendant, error)
	// ListAvailableAttendants returns available attendants ordered by position.
	ListAvailableAttendants(ctx context.Context) ([]Attendant, error)
	UpdateAttendant(ctx context.Context, a *Attendant) error

	CreateRequest(ctx context.Context, r *Request) error
	GetRequest(ctx context.Context, id int64) (Request, error)
	ListRequests(ctx context.Context, filter RequestFilter) ([]Request, int64, error)
	// ListPendingRequests returns pending requests oldest first.
	ListPendingRequests(ctx context.Context, limit int) ([]Request, error)
	CountRequests(ctx context.Context, status RequestStatus) (int64, error)
	UpdateRequest(ctx context.Context, r *Request) error

	CreateSession(ctx context.Context, s *ServiceSession) error
	FindActiveSession(ctx context.Context, attendantID, requestID int64) (ServiceSession, error)
	FindActiveSessionByAttendant(ctx context.Context, attendantID int64) (ServiceSession, error)
	// ListActiveSessionsStartedBefore returns in-service sessions whose
	// started_at is at or before cutoff, oldest first.
	ListActiveSessionsStartedBefore(ctx context.Context, cutoff time.Time) ([]ServiceSession, error)
	// ListSessionsByRequest returns the request's sessions newest first.
	ListSessionsByRequest(ctx context.Context, requestID int64) ([]ServiceSession, error)
	ListSessionsByAttendant(ctx context.Context, attendantID int64) ([]ServiceSession, error)
	CountSessions(ctx context.Context, status SessionStatus) (int64, error)
	UpdateSession(ctx context.Context, s *ServiceSession) error

	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

type Clock interface {
	Now() time.Time
}

// Notifier receives lifecycle events. Delivery is fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

// Locker provides mutual exclusion per key. The returned func releases it.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

type ThresholdSource interface {
	TimeoutThreshold(ctx context.Context) time.Duration
}
