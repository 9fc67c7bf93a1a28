package request

import (
	"context"
	"math"
	"strings"

	apirequest "github.com/elfabitto/sistema-de-atendimento/internal/api/request"
	"github.com/elfabitto/sistema-de-atendimento/internal/constant"
	"github.com/elfabitto/sistema-de-atendimento/internal/domain"

	"github.com/pkg/errors"
)

// Create stores a pending request and tries to hand it out right away. A
// failed distribution does not fail the call: the request is persisted and
// the backlog drain picks it up.
func (rs *requestService) Create(ctx context.Context, req apirequest.CreateRequestRequest) (Created, error) {
	if strings.TrimSpace(req.Description) == "" {
		return Created{}, errors.Wrap(constant.InvalidInputErr, "description is required")
	}

	r := domain.Request{
		Description:   strings.TrimSpace(req.Description),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		Status:        domain.RequestPending,
		CreatedAt:     rs.clock.Now(),
	}
	if err := rs.store.CreateRequest(ctx, &r); err != nil {
		return Created{}, errors.Wrap(err, "failed to create request")
	}

	out := Created{Request: r}
	res, err := rs.distributor.Distribute(ctx, r.ID)
	if err != nil {
		rs.logger.WithError(err).WithField("request_id", r.ID).Warn("distribution after create failed")
		return out, nil
	}
	if res.Assigned {
		id := res.Attendant.ID
		out.Request = res.Request
		out.Assigned = true
		out.AttendantID = &id
	}
	return out, nil
}

func (rs *requestService) List(ctx context.Context, status string, limit, offset int) ([]domain.Request, int64, error) {
	filter := domain.RequestFilter{
		Status: domain.RequestStatus(status),
		Limit:  limit,
		Offset: offset,
	}
	if status != "" && !filter.Status.Valid() {
		return nil, 0, errors.Wrapf(constant.InvalidInputErr, "unknown status %q", status)
	}
	return rs.store.ListRequests(ctx, filter)
}

func (rs *requestService) Detail(ctx context.Context, id int64) (Detail, error) {
	r, err := rs.store.GetRequest(ctx, id)
	if err != nil {
		return Detail{}, err
	}

	sessions, err := rs.store.ListSessionsByRequest(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	return Detail{Request: r, Sessions: sessions}, nil
}

// Current returns the caller's in-service session, or nil when idle.
func (rs *requestService) Current(ctx context.Context, attendantID int64) (*CurrentSession, error) {
	sess, err := rs.store.FindActiveSessionByAttendant(ctx, attendantID)
	if errors.Is(err, constant.NotFoundErr) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	r, err := rs.store.GetRequest(ctx, sess.RequestID)
	if err != nil {
		return nil, err
	}

	return &CurrentSession{
		SessionID:       sess.ID.String(),
		RequestID:       r.ID,
		Description:     r.Description,
		CustomerName:    r.CustomerName,
		CustomerPhone:   r.CustomerPhone,
		StartedAt:       sess.StartedAt,
		AcceptedAt:      sess.AcceptedAt,
		DurationMinutes: math.Round(sess.Elapsed(rs.clock.Now()).Minutes()*100) / 100,
	}, nil
}

func (rs *requestService) Timeline(ctx context.Context, id int64) ([]domain.Event, error) {
	if _, err := rs.store.GetRequest(ctx, id); err != nil {
		return nil, err
	}
	if rs.history == nil {
		return []domain.Event{}, nil
	}
	return rs.history.RequestTimeline(ctx, id)
}
