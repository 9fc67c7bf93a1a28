package sweeper

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/elfabitto/sistema-de-atendimento/internal/clock"
	"github.com/elfabitto/sistema-de-atendimento/internal/constant"
	"github.com/elfabitto/sistema-de-atendimento/internal/domain"
	"github.com/elfabitto/sistema-de-atendimento/internal/lock"
	"github.com/elfabitto/sistema-de-atendimento/internal/notify/notifytest"
	"github.com/elfabitto/sistema-de-atendimento/internal/queue"
	"github.com/elfabitto/sistema-de-atendimento/internal/repository/memory"
	"github.com/elfabitto/sistema-de-atendimento/internal/service/assignment"
	"github.com/elfabitto/sistema-de-atendimento/internal/service/session"
	"github.com/elfabitto/sistema-de-atendimento/internal/service/settings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const threshold = 20 * time.Minute

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type engine struct {
	store      *memory.Store
	queue      *queue.Manager
	dist       *assignment.Distributor
	controller *session.Controller
	clock      *clock.Fake
	sweeper    *Sweeper
}

func newEngine(t *testing.T) *engine {
	t.Helper()

	logger := quietLogger()
	store := memory.NewStore()
	locker := lock.NewLocalLocker()
	rec := &notifytest.Recorder{}
	clk := clock.NewFake(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	src := settings.Fixed(threshold)
	qm := queue.NewManager(store, locker, rec, clk, logger)
	dist := assignment.NewDistributor(store, locker, qm, rec, clk, src, logger)
	ctrl := session.NewController(store, locker, qm, dist, rec, clk, src, true, logger)

	return &engine{
		store:      store,
		queue:      qm,
		dist:       dist,
		controller: ctrl,
		clock:      clk,
		sweeper:    NewSweeper(store, ctrl, dist, src, clk, time.Minute, logger),
	}
}

func (e *engine) join(t *testing.T, n int) []int64 {
	t.Helper()
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		a := &domain.Attendant{Name: fmt.Sprintf("att%d", i), Email: fmt.Sprintf("att%d@example.com", i)}
		require.NoError(t, e.store.CreateAttendant(context.Background(), a))
		_, err := e.queue.Join(context.Background(), a.ID)
		require.NoError(t, err)
		ids = append(ids, a.ID)
	}
	return ids
}

func (e *engine) distribute(t *testing.T) assignment.Assignment {
	t.Helper()
	r := &domain.Request{Description: "slow network"}
	require.NoError(t, e.store.CreateRequest(context.Background(), r))
	res, err := e.dist.Distribute(context.Background(), r.ID)
	require.NoError(t, err)
	return res
}

func TestSweepTimesOutExpiredSessionsOnly(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	ids := e.join(t, 3)

	old := e.distribute(t)
	e.clock.Advance(10 * time.Minute)
	fresh := e.distribute(t)
	now := e.clock.Advance(10 * time.Minute)

	out, err := e.sweeper.Sweep(ctx, now)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, old.Request.ID, out[0].RequestID)
	assert.Equal(t, ids[0], out[0].PreviousAttendantID)
	require.NotNil(t, out[0].NewAttendantID)
	assert.Equal(t, ids[2], *out[0].NewAttendantID)

	_, err = e.store.FindActiveSession(ctx, ids[1], fresh.Request.ID)
	assert.NoError(t, err)
}

func TestSweepTwiceDoesNotDoubleProcess(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.join(t, 2)
	e.distribute(t)
	now := e.clock.Advance(threshold)

	out, err := e.sweeper.Sweep(ctx, now)
	require.NoError(t, err)
	require.Len(t, out, 1)

	out, err = e.sweeper.Sweep(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSweepSkipsSessionFinishedConcurrently(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	ids := e.join(t, 2)
	res := e.distribute(t)
	now := e.clock.Advance(threshold)

	_, err := e.controller.Finish(ctx, ids[0], res.Request.ID, "")
	require.NoError(t, err)

	out, err := e.sweeper.Sweep(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSweepReturnsRequestToLoneAttendant(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	ids := e.join(t, 1)
	res := e.distribute(t)

	out, err := e.sweeper.Sweep(ctx, e.clock.Advance(threshold))
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.NotNil(t, out[0].NewAttendantID)
	assert.Equal(t, ids[0], *out[0].NewAttendantID)

	sessions, err := e.store.ListSessionsByRequest(ctx, res.Request.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, domain.SessionInService, sessions[0].Status)
	assert.Equal(t, domain.SessionTimedOut, sessions[1].Status)
}

type stubStore struct {
	sessions []domain.ServiceSession
}

func (s stubStore) ListActiveSessionsStartedBefore(context.Context, time.Time) ([]domain.ServiceSession, error) {
	return s.sessions, nil
}

type stubTimeouter struct {
	mu    sync.Mutex
	calls []int64
	fail  map[int64]error
}

func (s *stubTimeouter) Timeout(_ context.Context, attendantID, requestID int64, _ time.Time) (session.Outcome, error) {
	s.mu.Lock()
	s.calls = append(s.calls, requestID)
	s.mu.Unlock()

	if err := s.fail[requestID]; err != nil {
		return session.Outcome{}, err
	}
	return session.Outcome{Session: domain.ServiceSession{RequestID: requestID, AttendantID: attendantID}}, nil
}

type stubBacklog struct {
	calls atomic.Int32
}

func (s *stubBacklog) DistributePending(context.Context) ([]assignment.Assignment, error) {
	s.calls.Add(1)
	return nil, nil
}

func TestSweepIsolatesFailures(t *testing.T) {
	sessions := []domain.ServiceSession{
		{ID: uuid.New(), RequestID: 1, AttendantID: 10},
		{ID: uuid.New(), RequestID: 2, AttendantID: 20},
		{ID: uuid.New(), RequestID: 3, AttendantID: 30},
		{ID: uuid.New(), RequestID: 4, AttendantID: 40},
	}
	ctrl := &stubTimeouter{fail: map[int64]error{
		1: errors.Wrap(constant.ConflictErr, "lost race"),
		2: errors.Wrap(constant.NotFoundErr, "already finished"),
	}}
	clk := clock.NewFake(time.Now())
	s := NewSweeper(stubStore{sessions}, ctrl, &stubBacklog{}, settings.Fixed(threshold), clk, time.Minute, quietLogger())

	out, err := s.Sweep(context.Background(), clk.Now())
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3, 4}, ctrl.calls)
	require.Len(t, out, 2)
	assert.Equal(t, int64(3), out[0].RequestID)
	assert.Equal(t, int64(4), out[1].RequestID)
	assert.Nil(t, out[0].NewAttendantID)
}

func TestStartStopDoesNotLeak(t *testing.T) {
	defer goleak.VerifyNone(t)

	backlog := &stubBacklog{}
	clk := clock.NewFake(time.Now())
	s := NewSweeper(stubStore{}, &stubTimeouter{}, backlog, settings.Fixed(threshold), clk, 5*time.Millisecond, quietLogger())

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return backlog.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()
}
