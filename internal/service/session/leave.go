package session

import (
	"context"

	"github.com/elfabitto/sistema-de-atendimento/internal/constant"
	"github.com/elfabitto/sistema-de-atendimento/internal/domain"
	"github.com/elfabitto/sistema-de-atendimento/internal/metrics"
	"github.com/elfabitto/sistema-de-atendimento/internal/queue"

	"github.com/pkg/errors"
)

// sessionMovedErr means the attendant's active session changed between the
// lookup and taking its request lock.
var sessionMovedErr = errors.New("active session changed")

// Leave takes the attendant out of the rotation. When release on leave is
// enabled a session the attendant still holds is finalized as skipped and its
// request is offered to the next attendant.
func (c *Controller) Leave(ctx context.Context, attendantID int64) (domain.Attendant, Outcome, error) {
	if !c.releaseOnLeave {
		a, err := c.queue.Leave(ctx, attendantID)
		return a, Outcome{}, err
	}

	for attempt := 0; attempt < constant.ConflictRetries; attempt++ {
		held, err := c.store.FindActiveSessionByAttendant(ctx, attendantID)
		if errors.Is(err, constant.NotFoundErr) {
			a, err := c.queue.Leave(ctx, attendantID)
			return a, Outcome{}, err
		}
		if err != nil {
			return domain.Attendant{}, Outcome{}, err
		}

		a, out, err := c.leaveHolding(ctx, attendantID, held.RequestID)
		if errors.Is(err, sessionMovedErr) {
			continue
		}
		return a, out, err
	}
	return domain.Attendant{}, Outcome{}, errors.Wrapf(constant.ConflictErr, "attendant %d kept changing sessions", attendantID)
}

func (c *Controller) leaveHolding(ctx context.Context, attendantID, requestID int64) (domain.Attendant, Outcome, error) {
	unlock, err := c.lockRequest(ctx, requestID)
	if err != nil {
		return domain.Attendant{}, Outcome{}, err
	}

	var left domain.Attendant
	now := c.clock.Now()
	out, err := c.commit(ctx, "release", func(tx domain.Store) (Outcome, error) {
		sess, err := tx.FindActiveSessionByAttendant(ctx, attendantID)
		switch {
		case errors.Is(err, constant.NotFoundErr):
			// finished meanwhile; a plain leave is enough
		case err != nil:
			return Outcome{}, err
		case sess.RequestID != requestID:
			return Outcome{}, sessionMovedErr
		}

		var out Outcome
		if err == nil {
			out, err = c.close(ctx, tx, sess, skipTransition, now, "")
			if err != nil {
				return Outcome{}, err
			}
		}

		left, err = queue.LeaveTx(ctx, tx, attendantID)
		if err != nil {
			return Outcome{}, err
		}
		out.Attendant = left
		return out, nil
	})
	if err != nil {
		unlock()
		return domain.Attendant{}, Outcome{}, err
	}

	released := out.Session.Status == domain.SessionSkipped
	if released {
		res, err := c.distributor.DistributeLocked(ctx, requestID)
		if err != nil {
			c.logger.WithError(err).WithField("request_id", requestID).Warn("failed to hand released request on")
		} else {
			out.Redistributed = res
		}
	}
	unlock()

	metrics.QueueTransitionsTotal.WithLabelValues("leave").Inc()
	c.logger.WithField("attendant_id", attendantID).
		WithField("released_request", released).
		Info("attendant left the queue")

	if released {
		c.announce(ctx, skipTransition, out)
	} else {
		c.queue.Publish(ctx)
	}
	return left, out, nil
}
