package request

import (
	"context"
	"time"

	"github.com/elfabitto/sistema-de-atendimento/internal/domain"
	"github.com/elfabitto/sistema-de-atendimento/internal/service/assignment"

	"github.com/sirupsen/logrus"
)

type requestService struct {
	store       requestStore
	distributor distributor
	history     timelineReader
	clock       domain.Clock
	logger      *logrus.Logger
}

type requestStore interface {
	CreateRequest(ctx context.Context, r *domain.Request) error
	GetRequest(ctx context.Context, id int64) (domain.Request, error)
	ListRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.Request, int64, error)
	ListSessionsByRequest(ctx context.Context, requestID int64) ([]domain.ServiceSession, error)
	FindActiveSessionByAttendant(ctx context.Context, attendantID int64) (domain.ServiceSession, error)
}

type distributor interface {
	Distribute(ctx context.Context, requestID int64) (assignment.Assignment, error)
}

type timelineReader interface {
	RequestTimeline(ctx context.Context, requestID int64) ([]domain.Event, error)
}

// NewRequestService wires the request use cases. history may be nil when no
// analytics store is configured; timelines are then empty.
func NewRequestService(
	store requestStore,
	distributor distributor,
	history timelineReader,
	clock domain.Clock,
	logger *logrus.Logger,
) *requestService {
	return &requestService{
		store:       store,
		distributor: distributor,
		history:     history,
		clock:       clock,
		logger:      logger,
	}
}

type Created struct {
	Request     domain.Request `json:"request"`
	Assigned    bool           `json:"assigned"`
	AttendantID *int64         `json:"attendant_id,omitempty"`
}

type Detail struct {
	Request  domain.Request          `json:"request"`
	Sessions []domain.ServiceSession `json:"sessions"`
}

type CurrentSession struct {
	SessionID       string     `json:"session_id"`
	RequestID       int64      `json:"request_id"`
	Description     string     `json:"description"`
	CustomerName    string     `json:"customer_name"`
	CustomerPhone   string     `json:"customer_phone"`
	StartedAt       time.Time  `json:"started_at"`
	AcceptedAt      *time.Time `json:"accepted_at,omitempty"`
	DurationMinutes float64    `json:"duration_minutes"`
}
