package assignment

import (
	"context"

	"github.com/elfabitto/sistema-de-atendimento/internal/constant"
	"github.com/elfabitto/sistema-de-atendimento/internal/domain"
	"github.com/elfabitto/sistema-de-atendimento/internal/lock"
	"github.com/elfabitto/sistema-de-atendimento/internal/metrics"
	"github.com/elfabitto/sistema-de-atendimento/internal/queue"
	"github.com/elfabitto/sistema-de-atendimento/internal/retry"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const pendingBatchSize = 100

// Distribute hands a pending request to the next free attendant.
func (d *Distributor) Distribute(ctx context.Context, requestID int64) (Assignment, error) {
	unlock, err := d.locker.Lock(ctx, lock.RequestKey(requestID))
	if err != nil {
		return Assignment{}, errors.Wrapf(err, "failed to lock request %d", requestID)
	}

	res, err := d.DistributeLocked(ctx, requestID)
	unlock()
	if err != nil {
		return res, err
	}

	d.Announce(ctx, res)
	return res, nil
}

// DistributeLocked is Distribute for callers already holding the request
// lock. It does not notify; pass the result to Announce once locks are
// released.
func (d *Distributor) DistributeLocked(ctx context.Context, requestID int64) (Assignment, error) {
	unlockQueue, err := d.queue.Lock(ctx)
	if err != nil {
		return Assignment{}, err
	}
	defer unlockQueue()

	res, err := retry.OnConflict(ctx, func() (Assignment, error) {
		var out Assignment
		err := d.store.WithTx(ctx, func(tx domain.Store) error {
			var err error
			out, err = d.assign(ctx, tx, requestID)
			return err
		})
		return out, err
	})

	log := d.logger.WithField("request_id", requestID)
	switch {
	case errors.Is(err, constant.InvalidStateErr):
		metrics.DistributionsTotal.WithLabelValues("invalid_state").Inc()
		return res, err
	case err != nil:
		metrics.DistributionsTotal.WithLabelValues("error").Inc()
		log.WithError(err).Warn("distribution failed")
		return res, err
	case !res.Assigned:
		metrics.DistributionsTotal.WithLabelValues("no_attendant").Inc()
		log.Info("no attendant available, request stays pending")
	default:
		metrics.DistributionsTotal.WithLabelValues("assigned").Inc()
		log.WithFields(logrus.Fields{
			"attendant_id": res.Attendant.ID,
			"session_id":   res.Session.ID,
		}).Info("request assigned")
	}
	return res, nil
}

func (d *Distributor) assign(ctx context.Context, tx domain.Store, requestID int64) (Assignment, error) {
	req, err := tx.GetRequest(ctx, requestID)
	if err != nil {
		return Assignment{}, err
	}
	if req.Status != domain.RequestPending {
		return Assignment{Request: req}, errors.Wrapf(constant.InvalidStateErr, "request %d is %s", requestID, req.Status)
	}

	att, ok, err := queue.NextAvailableTx(ctx, tx)
	if err != nil {
		return Assignment{}, err
	}
	if !ok {
		return Assignment{Request: req}, nil
	}

	sess := domain.ServiceSession{
		RequestID:   req.ID,
		AttendantID: att.ID,
		Status:      domain.SessionInService,
		StartedAt:   d.clock.Now(),
	}
	if err := tx.CreateSession(ctx, &sess); err != nil {
		return Assignment{}, err
	}

	req.Status = domain.RequestInService
	if err := tx.UpdateRequest(ctx, &req); err != nil {
		return Assignment{}, err
	}

	att.Busy = true
	if err := tx.UpdateAttendant(ctx, &att); err != nil {
		return Assignment{}, err
	}

	return Assignment{
		Assigned:  true,
		Request:   req,
		Attendant: att,
		Session:   sess,
	}, nil
}

// Announce emits request_assigned and the new queue snapshot. It is a no-op
// for an unassigned result.
func (d *Distributor) Announce(ctx context.Context, res Assignment) {
	if !res.Assigned {
		return
	}

	ev := domain.NewEvent(domain.EventRequestAssigned, d.clock.Now())
	ev.RequestID = res.Request.ID
	ev.SessionID = res.Session.ID.String()
	ev.AttendantID = res.Attendant.ID
	ev.TimeoutSeconds = int64(d.threshold.TimeoutThreshold(ctx).Seconds())
	d.notifier.Notify(ctx, ev)

	d.queue.Publish(ctx)
}

// DistributePending drains the backlog oldest first until no attendant is
// free. Requests that changed state in the meantime are skipped.
func (d *Distributor) DistributePending(ctx context.Context) ([]Assignment, error) {
	pending, err := d.store.ListPendingRequests(ctx, pendingBatchSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list pending requests")
	}

	var assigned []Assignment
	for _, req := range pending {
		if ctx.Err() != nil {
			return assigned, ctx.Err()
		}

		res, err := d.Distribute(ctx, req.ID)
		if errors.Is(err, constant.InvalidStateErr) || errors.Is(err, constant.NotFoundErr) {
			continue
		}
		if err != nil {
			return assigned, err
		}
		if !res.Assigned {
			break
		}
		assigned = append(assigned, res)
	}
	return assigned, nil
}
