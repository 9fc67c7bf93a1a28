package session

import (
	"context"
	"time"

	"github.com/elfabitto/sistema-de-atendimento/internal/domain"
	"github.com/elfabitto/sistema-de-atendimento/internal/service/assignment"

	"github.com/sirupsen/logrus"
)

// Controller drives a service session from InService to one of its terminal
// states and hands the request on when the attendant did not conclude it.
type Controller struct {
	store          domain.Store
	locker         domain.Locker
	queue          queueManager
	distributor    distributor
	notifier       domain.Notifier
	clock          domain.Clock
	threshold      domain.ThresholdSource
	releaseOnLeave bool
	logger         *logrus.Logger
}

type queueManager interface {
	Lock(ctx context.Context) (func(), error)
	Leave(ctx context.Context, attendantID int64) (domain.Attendant, error)
	Publish(ctx context.Context)
}

type distributor interface {
	DistributeLocked(ctx context.Context, requestID int64) (assignment.Assignment, error)
	Announce(ctx context.Context, res assignment.Assignment)
}

// Outcome describes a committed transition. NotDue is set instead of an
// error when a timeout was requested before the threshold elapsed.
type Outcome struct {
	Session       domain.ServiceSession
	Request       domain.Request
	Attendant     domain.Attendant
	NotDue        bool
	Redistributed assignment.Assignment
}

// NextAttendantID is the attendant the request moved to, if any.
func (o Outcome) NextAttendantID() *int64 {
	if !o.Redistributed.Assigned {
		return nil
	}
	id := o.Redistributed.Attendant.ID
	return &id
}

func NewController(
	store domain.Store,
	locker domain.Locker,
	queue queueManager,
	distributor distributor,
	notifier domain.Notifier,
	clock domain.Clock,
	threshold domain.ThresholdSource,
	releaseOnLeave bool,
	logger *logrus.Logger,
) *Controller {
	return &Controller{
		store:          store,
		locker:         locker,
		queue:          queue,
		distributor:    distributor,
		notifier:       notifier,
		clock:          clock,
		threshold:      threshold,
		releaseOnLeave: releaseOnLeave,
		logger:         logger,
	}
}

type transition struct {
	name      string
	session   domain.SessionStatus
	request   domain.RequestStatus
	event     domain.EventType
	handOn    bool
	checkDue  bool
	threshold time.Duration
}

var (
	finishTransition = transition{
		name:    "finish",
		session: domain.SessionConcluded,
		request: domain.RequestConcluded,
		event:   domain.EventSessionConcluded,
	}
	skipTransition = transition{
		name:    "skip",
		session: domain.SessionSkipped,
		request: domain.RequestPending,
		event:   domain.EventSessionSkipped,
		handOn:  true,
	}
	timeoutTransition = transition{
		name:     "timeout",
		session:  domain.SessionTimedOut,
		request:  domain.RequestPending,
		event:    domain.EventSessionTimedOut,
		handOn:   true,
		checkDue: true,
	}
)
