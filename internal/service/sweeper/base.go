package sweeper

import (
	"context"
	"sync"
	"time"

	"github.com/elfabitto/sistema-de-atendimento/internal/domain"
	"github.com/elfabitto/sistema-de-atendimento/internal/service/assignment"
	"github.com/elfabitto/sistema-de-atendimento/internal/service/session"

	"github.com/sirupsen/logrus"
)

// Sweeper times out sessions that outlived the threshold and drains the
// pending backlog on a fixed interval.
type Sweeper struct {
	store      sessionStore
	controller timeouter
	backlog    backlogDrainer
	threshold  domain.ThresholdSource
	clock      domain.Clock
	interval   time.Duration
	logger     *logrus.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type sessionStore interface {
	ListActiveSessionsStartedBefore(ctx context.Context, cutoff time.Time) ([]domain.ServiceSession, error)
}

type timeouter interface {
	Timeout(ctx context.Context, attendantID, requestID int64, now time.Time) (session.Outcome, error)
}

type backlogDrainer interface {
	DistributePending(ctx context.Context) ([]assignment.Assignment, error)
}

// Reassignment reports one timed-out session. NewAttendantID is nil when the
// request went back to pending.
type Reassignment struct {
	RequestID           int64  `json:"request_id"`
	PreviousAttendantID int64  `json:"previous_attendant_id"`
	NewAttendantID      *int64 `json:"new_attendant_id,omitempty"`
}

func NewSweeper(
	store sessionStore,
	controller timeouter,
	backlog backlogDrainer,
	threshold domain.ThresholdSource,
	clock domain.Clock,
	interval time.Duration,
	logger *logrus.Logger,
) *Sweeper {
	return &Sweeper{
		store:      store,
		controller: controller,
		backlog:    backlog,
		threshold:  threshold,
		clock:      clock,
		interval:   interval,
		logger:     logger,
	}
}
