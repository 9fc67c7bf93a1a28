package assignment

import (
	"context"

	"github.com/elfabitto/sistema-de-atendimento/internal/domain"

	"github.com/sirupsen/logrus"
)

// Distributor is the only writer of the Pending to InService transition.
type Distributor struct {
	store     domain.Store
	locker    domain.Locker
	queue     queueManager
	notifier  domain.Notifier
	clock     domain.Clock
	threshold domain.ThresholdSource
	logger    *logrus.Logger
}

type queueManager interface {
	Lock(ctx context.Context) (func(), error)
	Publish(ctx context.Context)
}

// Assignment is the outcome of a distribution. Assigned is false when no
// attendant was free; the request then stays Pending.
type Assignment struct {
	Assigned  bool
	Request   domain.Request
	Attendant domain.Attendant
	Session   domain.ServiceSession
}

func NewDistributor(
	store domain.Store,
	locker domain.Locker,
	queue queueManager,
	notifier domain.Notifier,
	clock domain.Clock,
	threshold domain.ThresholdSource,
	logger *logrus.Logger,
) *Distributor {
	return &Distributor{
		store:     store,
		locker:    locker,
		queue:     queue,
		notifier:  notifier,
		clock:     clock,
		threshold: threshold,
		logger:    logger,
	}
}
