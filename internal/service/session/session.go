package session

import (
	"context"
	"time"

	"github.com/elfabitto/sistema-de-atendimento/internal/domain"
	"github.com/elfabitto/sistema-de-atendimento/internal/lock"
	"github.com/elfabitto/sistema-de-atendimento/internal/metrics"
	"github.com/elfabitto/sistema-de-atendimento/internal/queue"
	"github.com/elfabitto/sistema-de-atendimento/internal/retry"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Accept records the attendant's acknowledgment. Only the first call sets
// AcceptedAt; the timeout still runs from StartedAt.
func (c *Controller) Accept(ctx context.Context, attendantID, requestID int64) (domain.ServiceSession, error) {
	unlock, err := c.lockRequest(ctx, requestID)
	if err != nil {
		return domain.ServiceSession{}, err
	}

	var first bool
	sess, err := retry.OnConflict(ctx, func() (domain.ServiceSession, error) {
		var out domain.ServiceSession
		err := c.store.WithTx(ctx, func(tx domain.Store) error {
			s, err := tx.FindActiveSession(ctx, attendantID, requestID)
			if err != nil {
				return err
			}
			first = s.AcceptedAt == nil
			if first {
				now := c.clock.Now()
				s.AcceptedAt = &now
				if err := tx.UpdateSession(ctx, &s); err != nil {
					return err
				}
			}
			out = s
			return nil
		})
		return out, err
	})
	unlock()
	if err != nil {
		return sess, err
	}

	if first {
		metrics.SessionTransitionsTotal.WithLabelValues("accept").Inc()
		ev := domain.NewEvent(domain.EventSessionAccepted, c.clock.Now())
		ev.RequestID = requestID
		ev.SessionID = sess.ID.String()
		ev.AttendantID = attendantID
		c.notifier.Notify(ctx, ev)
	}
	return sess, nil
}

// Finish concludes the request and sends the attendant to the tail.
func (c *Controller) Finish(ctx context.Context, attendantID, requestID int64, note string) (Outcome, error) {
	return c.finalize(ctx, attendantID, requestID, finishTransition, c.clock.Now(), note)
}

// Skip gives the request back and immediately offers it to the next
// attendant.
func (c *Controller) Skip(ctx context.Context, attendantID, requestID int64) (Outcome, error) {
	return c.finalize(ctx, attendantID, requestID, skipTransition, c.clock.Now(), "")
}

// Timeout behaves like Skip once now is at least the threshold past the
// session start. Before that it returns an Outcome with NotDue set.
func (c *Controller) Timeout(ctx context.Context, attendantID, requestID int64, now time.Time) (Outcome, error) {
	t := timeoutTransition
	t.threshold = c.threshold.TimeoutThreshold(ctx)
	return c.finalize(ctx, attendantID, requestID, t, now, "")
}

func (c *Controller) finalize(ctx context.Context, attendantID, requestID int64, t transition, now time.Time, note string) (Outcome, error) {
	unlock, err := c.lockRequest(ctx, requestID)
	if err != nil {
		return Outcome{}, err
	}

	out, err := c.finalizeLocked(ctx, attendantID, requestID, t, now, note)
	unlock()
	if err != nil || out.NotDue {
		return out, err
	}

	c.announce(ctx, t, out)
	return out, nil
}

// finalizeLocked runs with the request lock held. The hand-on distribution
// happens under the same lock so nobody can grab the request in between.
func (c *Controller) finalizeLocked(ctx context.Context, attendantID, requestID int64, t transition, now time.Time, note string) (Outcome, error) {
	out, err := c.commit(ctx, t.name, func(tx domain.Store) (Outcome, error) {
		sess, err := tx.FindActiveSession(ctx, attendantID, requestID)
		if err != nil {
			return Outcome{}, err
		}
		if t.checkDue && now.Sub(sess.StartedAt) < t.threshold {
			return Outcome{Session: sess, NotDue: true}, nil
		}
		return c.close(ctx, tx, sess, t, now, note)
	})
	if err != nil || out.NotDue || !t.handOn {
		return out, err
	}

	res, err := c.distributor.DistributeLocked(ctx, requestID)
	if err != nil {
		// the transition is committed; the request stays pending for the
		// next backlog drain
		c.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err,
		}).Warn("failed to hand request on")
		return out, nil
	}
	out.Redistributed = res
	return out, nil
}

// close finalizes sess, moves the request to the transition's status and
// requeues the attendant, all in tx.
func (c *Controller) close(ctx context.Context, tx domain.Store, sess domain.ServiceSession, t transition, now time.Time, note string) (Outcome, error) {
	sess.Status = t.session
	sess.EndedAt = &now
	if note != "" {
		sess.Note = note
	}
	if err := tx.UpdateSession(ctx, &sess); err != nil {
		return Outcome{}, err
	}

	req, err := tx.GetRequest(ctx, sess.RequestID)
	if err != nil {
		return Outcome{}, err
	}
	req.Status = t.request
	if err := tx.UpdateRequest(ctx, &req); err != nil {
		return Outcome{}, err
	}

	att, err := queue.RequeueToTailTx(ctx, tx, sess.AttendantID)
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{Session: sess, Request: req, Attendant: att}, nil
}

// commit runs fn in a transaction under the queue lock, retrying lost
// version races.
func (c *Controller) commit(ctx context.Context, name string, fn func(tx domain.Store) (Outcome, error)) (Outcome, error) {
	unlockQueue, err := c.queue.Lock(ctx)
	if err != nil {
		return Outcome{}, err
	}
	defer unlockQueue()

	out, err := retry.OnConflict(ctx, func() (Outcome, error) {
		var out Outcome
		err := c.store.WithTx(ctx, func(tx domain.Store) error {
			var err error
			out, err = fn(tx)
			return err
		})
		return out, err
	})
	if err == nil && !out.NotDue {
		metrics.SessionTransitionsTotal.WithLabelValues(name).Inc()
	}
	return out, err
}

func (c *Controller) announce(ctx context.Context, t transition, out Outcome) {
	c.logger.WithFields(logrus.Fields{
		"request_id":   out.Session.RequestID,
		"session_id":   out.Session.ID,
		"attendant_id": out.Session.AttendantID,
		"status":       out.Session.Status,
	}).Info("session finalized")

	ev := domain.NewEvent(t.event, c.clock.Now())
	ev.RequestID = out.Session.RequestID
	ev.SessionID = out.Session.ID.String()
	ev.AttendantID = out.Session.AttendantID
	if t.handOn {
		ev.PreviousAttendantID = out.Session.AttendantID
		ev.NextAttendantID = out.NextAttendantID()
	}
	c.notifier.Notify(ctx, ev)

	if out.Redistributed.Assigned {
		c.distributor.Announce(ctx, out.Redistributed)
		return
	}
	c.queue.Publish(ctx)
}

func (c *Controller) lockRequest(ctx context.Context, requestID int64) (func(), error) {
	unlock, err := c.locker.Lock(ctx, lock.RequestKey(requestID))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to lock request %d", requestID)
	}
	return unlock, nil
}
