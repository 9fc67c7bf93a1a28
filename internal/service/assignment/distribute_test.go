package assignment

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/elfabitto/sistema-de-atendimento/internal/clock"
	"github.com/elfabitto/sistema-de-atendimento/internal/constant"
	"github.com/elfabitto/sistema-de-atendimento/internal/domain"
	"github.com/elfabitto/sistema-de-atendimento/internal/lock"
	"github.com/elfabitto/sistema-de-atendimento/internal/notify/notifytest"
	"github.com/elfabitto/sistema-de-atendimento/internal/queue"
	"github.com/elfabitto/sistema-de-atendimento/internal/repository/memory"
	"github.com/elfabitto/sistema-de-atendimento/internal/service/settings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *memory.Store
	queue    *queue.Manager
	dist     *Distributor
	clock    *clock.Fake
	recorder *notifytest.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := memory.NewStore()
	locker := lock.NewLocalLocker()
	rec := &notifytest.Recorder{}
	clk := clock.NewFake(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	qm := queue.NewManager(store, locker, rec, clk, logger)

	return &fixture{
		store:    store,
		queue:    qm,
		clock:    clk,
		recorder: rec,
		dist:     NewDistributor(store, locker, qm, rec, clk, settings.Fixed(20*time.Minute), logger),
	}
}

func (f *fixture) joined(t *testing.T, n int) []int64 {
	t.Helper()
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		a := &domain.Attendant{Name: fmt.Sprintf("att%d", i), Email: fmt.Sprintf("att%d@example.com", i)}
		require.NoError(t, f.store.CreateAttendant(context.Background(), a))
		_, err := f.queue.Join(context.Background(), a.ID)
		require.NoError(t, err)
		ids = append(ids, a.ID)
	}
	return ids
}

func (f *fixture) request(t *testing.T) int64 {
	t.Helper()
	r := &domain.Request{Description: "printer on fire", CustomerName: "joana"}
	require.NoError(t, f.store.CreateRequest(context.Background(), r))
	return r.ID
}

func TestDistributeAssignsHeadOfQueue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := f.joined(t, 3)
	reqID := f.request(t)

	res, err := f.dist.Distribute(ctx, reqID)
	require.NoError(t, err)
	require.True(t, res.Assigned)
	assert.Equal(t, ids[0], res.Attendant.ID)
	assert.True(t, res.Attendant.Busy)
	assert.Equal(t, domain.RequestInService, res.Request.Status)
	assert.Equal(t, domain.SessionInService, res.Session.Status)
	assert.Equal(t, f.clock.Now(), res.Session.StartedAt)

	stored, err := f.store.GetRequest(ctx, reqID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestInService, stored.Status)

	assigned := f.recorder.OfType(domain.EventRequestAssigned)
	require.Len(t, assigned, 1)
	assert.Equal(t, reqID, assigned[0].RequestID)
	assert.Equal(t, ids[0], assigned[0].AttendantID)
	assert.Equal(t, int64(1200), assigned[0].TimeoutSeconds)
}

func TestDistributeSkipsBusyAttendants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := f.joined(t, 2)

	first, err := f.dist.Distribute(ctx, f.request(t))
	require.NoError(t, err)
	second, err := f.dist.Distribute(ctx, f.request(t))
	require.NoError(t, err)

	assert.Equal(t, ids[0], first.Attendant.ID)
	assert.Equal(t, ids[1], second.Attendant.ID)
}

func TestDistributeWithoutAttendantKeepsPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reqID := f.request(t)

	res, err := f.dist.Distribute(ctx, reqID)
	require.NoError(t, err)
	assert.False(t, res.Assigned)

	stored, err := f.store.GetRequest(ctx, reqID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestPending, stored.Status)
	assert.Empty(t, f.recorder.OfType(domain.EventRequestAssigned))
}

func TestDistributeNonPendingIsInvalidState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.joined(t, 2)
	reqID := f.request(t)

	_, err := f.dist.Distribute(ctx, reqID)
	require.NoError(t, err)

	_, err = f.dist.Distribute(ctx, reqID)
	assert.True(t, errors.Is(err, constant.InvalidStateErr))

	sessions, err := f.store.ListSessionsByRequest(ctx, reqID)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestDistributeUnknownRequest(t *testing.T) {
	f := newFixture(t)

	_, err := f.dist.Distribute(context.Background(), 404)
	assert.True(t, errors.Is(err, constant.NotFoundErr))
}

func TestConcurrentDistributeOfOneRequestCreatesOneSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.joined(t, 5)
	reqID := f.request(t)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		assigned int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.dist.Distribute(ctx, reqID)
			if err != nil {
				assert.True(t, errors.Is(err, constant.InvalidStateErr))
				return
			}
			if res.Assigned {
				mu.Lock()
				assigned++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, assigned)
	sessions, err := f.store.ListSessionsByRequest(ctx, reqID)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestConcurrentDistributeNeverDoubleBooksAttendant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.joined(t, 3)

	reqs := make([]int64, 8)
	for i := range reqs {
		reqs[i] = f.request(t)
	}

	var wg sync.WaitGroup
	for _, id := range reqs {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := f.dist.Distribute(ctx, id)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	n, err := f.store.CountSessions(ctx, domain.SessionInService)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	owners := make(map[int64]bool)
	for _, id := range reqs {
		sessions, err := f.store.ListSessionsByRequest(ctx, id)
		require.NoError(t, err)
		for _, s := range sessions {
			assert.False(t, owners[s.AttendantID], "attendant %d holds two sessions", s.AttendantID)
			owners[s.AttendantID] = true
		}
	}

	pending, err := f.store.CountRequests(ctx, domain.RequestPending)
	require.NoError(t, err)
	assert.Equal(t, int64(5), pending)
}

func TestDistributePendingDrainsOldestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.request(t)
	f.clock.Advance(time.Minute)
	second := f.request(t)
	f.clock.Advance(time.Minute)
	third := f.request(t)

	f.joined(t, 2)

	assigned, err := f.dist.DistributePending(ctx)
	require.NoError(t, err)
	require.Len(t, assigned, 2)
	assert.Equal(t, first, assigned[0].Request.ID)
	assert.Equal(t, second, assigned[1].Request.ID)

	stored, err := f.store.GetRequest(ctx, third)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestPending, stored.Status)
}
