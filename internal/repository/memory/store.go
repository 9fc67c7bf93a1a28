// Package memory is an in-process implementation of domain.Store. WithTx
// works on a copy of the data and swaps it in on success, so transactions are
// serializable and a failed fn leaves nothing behind.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/elfabitto/sistema-de-atendimento/internal/constant"
	"github.com/elfabitto/sistema-de-atendimento/internal/domain"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type state struct {
	attendants      map[int64]domain.Attendant
	requests        map[int64]domain.Request
	sessions        map[uuid.UUID]domain.ServiceSession
	settings        map[string]string
	nextAttendantID int64
	nextRequestID   int64
}

func newState() *state {
	return &state{
		attendants: make(map[int64]domain.Attendant),
		requests:   make(map[int64]domain.Request),
		sessions:   make(map[uuid.UUID]domain.ServiceSession),
		settings:   make(map[string]string),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.attendants {
		c.attendants[k] = v.Clone()
	}
	for k, v := range s.requests {
		c.requests[k] = v
	}
	for k, v := range s.sessions {
		c.sessions[k] = v.Clone()
	}
	for k, v := range s.settings {
		c.settings[k] = v
	}
	c.nextAttendantID = s.nextAttendantID
	c.nextRequestID = s.nextRequestID
	return c
}

type Store struct {
	mu   sync.Mutex
	data *state
	inTx bool
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{
		data: newState(),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// guard serialises access outside transactions; inside one the owning
// WithTx already holds the root lock.
func (s *Store) guard() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) WithTx(ctx context.Context, fn func(tx domain.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Store{data: s.data.clone(), inTx: true, now: s.now}
	if err := fn(tx); err != nil {
		return err
	}
	s.data = tx.data
	return nil
}

func (s *Store) CreateAttendant(_ context.Context, a *domain.Attendant) error {
	defer s.guard()()

	for _, existing := range s.data.attendants {
		if a.Email != "" && existing.Email == a.Email {
			return errors.Wrapf(constant.ConflictErr, "attendant email %s already registered", a.Email)
		}
	}

	s.data.nextAttendantID++
	a.ID = s.data.nextAttendantID
	a.Version = 1
	a.CreatedAt = s.now()
	a.UpdatedAt = a.CreatedAt
	s.data.attendants[a.ID] = a.Clone()
	return nil
}

func (s *Store) GetAttendant(_ context.Context, id int64) (domain.Attendant, error) {
	defer s.guard()()

	a, ok := s.data.attendants[id]
	if !ok {
		return domain.Attendant{}, errors.Wrapf(constant.NotFoundErr, "attendant %d", id)
	}
	return a.Clone(), nil
}

func (s *Store) ListAttendants(_ context.Context) ([]domain.Attendant, error) {
	defer s.guard()()

	list := make([]domain.Attendant, 0, len(s.data.attendants))
	for _, a := range s.data.attendants {
		list = append(list, a.Clone())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (s *Store) ListAvailableAttendants(_ context.Context) ([]domain.Attendant, error) {
	defer s.guard()()

	list := make([]domain.Attendant, 0)
	for _, a := range s.data.attendants {
		if a.Available {
			list = append(list, a.Clone())
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Position() < list[j].Position() })
	return list, nil
}

func (s *Store) UpdateAttendant(_ context.Context, a *domain.Attendant) error {
	defer s.guard()()

	current, ok := s.data.attendants[a.ID]
	if !ok {
		return errors.Wrapf(constant.NotFoundErr, "attendant %d", a.ID)
	}
	if current.Version != a.Version {
		return errors.Wrapf(constant.ConflictErr, "attendant %d version %d", a.ID, a.Version)
	}

	a.Version++
	a.UpdatedAt = s.now()
	s.data.attendants[a.ID] = a.Clone()
	return nil
}

func (s *Store) CreateRequest(_ context.Context, r *domain.Request) error {
	defer s.guard()()

	s.data.nextRequestID++
	r.ID = s.data.nextRequestID
	r.Version = 1
	if r.Status == "" {
		r.Status = domain.RequestPending
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	r.UpdatedAt = r.CreatedAt
	s.data.requests[r.ID] = *r
	return nil
}

func (s *Store) GetRequest(_ context.Context, id int64) (domain.Request, error) {
	defer s.guard()()

	r, ok := s.data.requests[id]
	if !ok {
		return domain.Request{}, errors.Wrapf(constant.NotFoundErr, "request %d", id)
	}
	return r, nil
}

func (s *Store) ListRequests(_ context.Context, filter domain.RequestFilter) ([]domain.Request, int64, error) {
	defer s.guard()()

	list := make([]domain.Request, 0)
	for _, r := range s.data.requests {
		if filter.Status == "" || r.Status == filter.Status {
			list = append(list, r)
		}
	}
	// newest first
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})

	total := int64(len(list))
	if filter.Offset > 0 {
		if filter.Offset >= len(list) {
			return []domain.Request{}, total, nil
		}
		list = list[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(list) {
		list = list[:filter.Limit]
	}
	return list, total, nil
}

func (s *Store) ListPendingRequests(_ context.Context, limit int) ([]domain.Request, error) {
	defer s.guard()()

	list := make([]domain.Request, 0)
	for _, r := range s.data.requests {
		if r.Status == domain.RequestPending {
			list = append(list, r)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

func (s *Store) CountRequests(_ context.Context, status domain.RequestStatus) (int64, error) {
	defer s.guard()()

	var n int64
	for _, r := range s.data.requests {
		if status == "" || r.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *Store) UpdateRequest(_ context.Context, r *domain.Request) error {
	defer s.guard()()

	current, ok := s.data.requests[r.ID]
	if !ok {
		return errors.Wrapf(constant.NotFoundErr, "request %d", r.ID)
	}
	if current.Version != r.Version {
		return errors.Wrapf(constant.ConflictErr, "request %d version %d", r.ID, r.Version)
	}

	r.Version++
	r.UpdatedAt = s.now()
	s.data.requests[r.ID] = *r
	return nil
}

func (s *Store) CreateSession(_ context.Context, sess *domain.ServiceSession) error {
	defer s.guard()()

	if sess.Status == domain.SessionInService {
		for _, existing := range s.data.sessions {
			if existing.Status != domain.SessionInService {
				continue
			}
			if existing.RequestID == sess.RequestID || existing.AttendantID == sess.AttendantID {
				return errors.Wrapf(constant.ConflictErr, "active session already exists for request %d or attendant %d", sess.RequestID, sess.AttendantID)
			}
		}
	}

	if sess.ID == uuid.Nil {
		sess.ID = uuid.New()
	}
	sess.Version = 1
	s.data.sessions[sess.ID] = sess.Clone()
	return nil
}

func (s *Store) FindActiveSession(_ context.Context, attendantID, requestID int64) (domain.ServiceSession, error) {
	defer s.guard()()

	for _, sess := range s.data.sessions {
		if sess.Status == domain.SessionInService && sess.AttendantID == attendantID && sess.RequestID == requestID {
			return sess.Clone(), nil
		}
	}
	return domain.ServiceSession{}, errors.Wrapf(constant.NotFoundErr, "active session for attendant %d and request %d", attendantID, requestID)
}

func (s *Store) FindActiveSessionByAttendant(_ context.Context, attendantID int64) (domain.ServiceSession, error) {
	defer s.guard()()

	for _, sess := range s.data.sessions {
		if sess.Status == domain.SessionInService && sess.AttendantID == attendantID {
			return sess.Clone(), nil
		}
	}
	return domain.ServiceSession{}, errors.Wrapf(constant.NotFoundErr, "active session for attendant %d", attendantID)
}

func (s *Store) ListActiveSessionsStartedBefore(_ context.Context, cutoff time.Time) ([]domain.ServiceSession, error) {
	defer s.guard()()

	list := make([]domain.ServiceSession, 0)
	for _, sess := range s.data.sessions {
		if sess.Status == domain.SessionInService && !sess.StartedAt.After(cutoff) {
			list = append(list, sess.Clone())
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].StartedAt.Before(list[j].StartedAt) })
	return list, nil
}

func (s *Store) ListSessionsByRequest(_ context.Context, requestID int64) ([]domain.ServiceSession, error) {
	defer s.guard()()
	return s.sessionsWhere(func(sess domain.ServiceSession) bool { return sess.RequestID == requestID }), nil
}

func (s *Store) ListSessionsByAttendant(_ context.Context, attendantID int64) ([]domain.ServiceSession, error) {
	defer s.guard()()
	return s.sessionsWhere(func(sess domain.ServiceSession) bool { return sess.AttendantID == attendantID }), nil
}

func (s *Store) sessionsWhere(match func(domain.ServiceSession) bool) []domain.ServiceSession {
	list := make([]domain.ServiceSession, 0)
	for _, sess := range s.data.sessions {
		if match(sess) {
			list = append(list, sess.Clone())
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].StartedAt.After(list[j].StartedAt) })
	return list
}

func (s *Store) CountSessions(_ context.Context, status domain.SessionStatus) (int64, error) {
	defer s.guard()()

	var n int64
	for _, sess := range s.data.sessions {
		if status == "" || sess.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *Store) UpdateSession(_ context.Context, sess *domain.ServiceSession) error {
	defer s.guard()()

	current, ok := s.data.sessions[sess.ID]
	if !ok {
		return errors.Wrapf(constant.NotFoundErr, "session %s", sess.ID)
	}
	if current.Version != sess.Version {
		return errors.Wrapf(constant.ConflictErr, "session %s version %d", sess.ID, sess.Version)
	}

	sess.Version++
	s.data.sessions[sess.ID] = sess.Clone()
	return nil
}

func (s *Store) GetSetting(_ context.Context, key string) (string, error) {
	defer s.guard()()

	v, ok := s.data.settings[key]
	if !ok {
		return "", errors.Wrapf(constant.NotFoundErr, "setting %s", key)
	}
	return v, nil
}

func (s *Store) SetSetting(_ context.Context, key, value string) error {
	defer s.guard()()

	s.data.settings[key] = value
	return nil
}
