package queue

import (
	"context"

	"github.com/elfabitto/sistema-de-atendimento/internal/domain"
	"github.com/elfabitto/sistema-de-atendimento/internal/lock"
	"github.com/elfabitto/sistema-de-atendimento/internal/metrics"
	"github.com/elfabitto/sistema-de-atendimento/internal/retry"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func (m *Manager) Join(ctx context.Context, attendantID int64) (domain.Attendant, error) {
	a, err := m.mutate(ctx, attendantID, JoinTx)
	if err != nil {
		return a, err
	}

	metrics.QueueTransitionsTotal.WithLabelValues("join").Inc()
	m.logger.WithField("attendant_id", attendantID).
		WithField("position", a.Position()).
		Info("attendant joined the queue")

	m.Publish(ctx)
	return a, nil
}

// Leave removes the attendant from the rotation. It does not touch any
// session the attendant holds; see session.Controller.Leave for that.
func (m *Manager) Leave(ctx context.Context, attendantID int64) (domain.Attendant, error) {
	a, err := m.mutate(ctx, attendantID, LeaveTx)
	if err != nil {
		return a, err
	}

	metrics.QueueTransitionsTotal.WithLabelValues("leave").Inc()
	m.logger.WithField("attendant_id", attendantID).Info("attendant left the queue")

	m.Publish(ctx)
	return a, nil
}

func (m *Manager) RequeueToTail(ctx context.Context, attendantID int64) (domain.Attendant, error) {
	a, err := m.mutate(ctx, attendantID, RequeueToTailTx)
	if err != nil {
		return a, err
	}

	metrics.QueueTransitionsTotal.WithLabelValues("requeue").Inc()
	m.Publish(ctx)
	return a, nil
}

func (m *Manager) NextAvailable(ctx context.Context) (domain.Attendant, bool, error) {
	return NextAvailableTx(ctx, m.store)
}

func (m *Manager) ListAvailable(ctx context.Context) ([]domain.Attendant, error) {
	list, err := m.store.ListAvailableAttendants(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list queue")
	}
	return list, nil
}

// Lock takes the queue-wide lock. Callers holding a request lock may take it
// afterwards, never the other way round.
func (m *Manager) Lock(ctx context.Context) (func(), error) {
	unlock, err := m.locker.Lock(ctx, lock.QueueKey())
	if err != nil {
		return nil, errors.Wrap(err, "failed to lock queue")
	}
	return unlock, nil
}

// Publish sends the current rotation to the notifier and refreshes the
// queue length gauge. Failures are logged only.
func (m *Manager) Publish(ctx context.Context) {
	list, err := m.ListAvailable(ctx)
	if err != nil {
		m.logger.WithError(err).Warn("failed to snapshot queue for notification")
		return
	}

	metrics.QueueLength.Set(float64(len(list)))

	ev := domain.NewEvent(domain.EventQueueUpdated, m.clock.Now())
	ev.Queue = domain.NewQueueEntries(list)
	m.notifier.Notify(ctx, ev)
}

type txFunc func(ctx context.Context, tx domain.Store, attendantID int64) (domain.Attendant, error)

func (m *Manager) mutate(ctx context.Context, attendantID int64, fn txFunc) (domain.Attendant, error) {
	unlock, err := m.Lock(ctx)
	if err != nil {
		return domain.Attendant{}, err
	}
	defer unlock()

	a, err := retry.OnConflict(ctx, func() (domain.Attendant, error) {
		var out domain.Attendant
		err := m.store.WithTx(ctx, func(tx domain.Store) error {
			var err error
			out, err = fn(ctx, tx, attendantID)
			return err
		})
		return out, err
	})
	if err != nil {
		m.logger.WithFields(logrus.Fields{
			"attendant_id": attendantID,
			"error":        err,
		}).Debug("queue transition rejected")
		return a, err
	}
	return a, nil
}
