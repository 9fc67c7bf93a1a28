package sweeper

import (
	"context"
	"time"

	"github.com/elfabitto/sistema-de-atendimento/internal/constant"
	"github.com/elfabitto/sistema-de-atendimento/internal/metrics"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Sweep times out every in-service session started at least the threshold
// before now. Each session is handled on its own; a failure is logged and
// the pass moves on. Sessions finalized concurrently are skipped.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) ([]Reassignment, error) {
	metrics.SweepRunsTotal.Inc()

	cutoff := now.Add(-s.threshold.TimeoutThreshold(ctx))
	expired, err := s.store.ListActiveSessionsStartedBefore(ctx, cutoff)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list expired sessions")
	}

	var out []Reassignment
	for _, sess := range expired {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}

		log := s.logger.WithFields(logrus.Fields{
			"session_id":   sess.ID,
			"request_id":   sess.RequestID,
			"attendant_id": sess.AttendantID,
		})

		res, err := s.controller.Timeout(ctx, sess.AttendantID, sess.RequestID, now)
		if errors.Is(err, constant.NotFoundErr) {
			log.Debug("session already finalized, skipping")
			continue
		}
		if err != nil {
			metrics.SweepFailuresTotal.Inc()
			log.WithError(err).Warn("failed to time out session")
			continue
		}
		if res.NotDue {
			continue
		}

		metrics.SweepTimeoutsTotal.Inc()
		out = append(out, Reassignment{
			RequestID:           sess.RequestID,
			PreviousAttendantID: sess.AttendantID,
			NewAttendantID:      res.NextAttendantID(),
		})
	}

	if len(out) > 0 {
		s.logger.WithField("count", len(out)).Info("timed out sessions reassigned")
	}
	return out, nil
}

// Tick runs one sweep followed by a backlog drain.
func (s *Sweeper) Tick(ctx context.Context) ([]Reassignment, error) {
	out, err := s.Sweep(ctx, s.clock.Now())
	if err != nil {
		return out, err
	}

	if _, err := s.backlog.DistributePending(ctx); err != nil {
		return out, errors.Wrap(err, "failed to distribute backlog")
	}
	return out, nil
}

func (s *Sweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.WithField("interval", s.interval).Info("sweeper started")
}

// Stop cancels the loop and waits for an in-flight sweep to return.
func (s *Sweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.wg.Wait()
	s.logger.Info("sweeper stopped")
}

func (s *Sweeper) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Tick(ctx); err != nil && ctx.Err() == nil {
				s.logger.WithError(err).Error("sweep failed")
			}
		}
	}
}
