package queue

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
	"github.com/elfabitto/sistema-de-atendimento/internal/repository/memory"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *memory.Store
	manager  *Manager
	recorder *notifytest.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := memory.NewStore()
	rec := &notifytest.Recorder{}
	return &fixture{
		store:    store,
		recorder: rec,
		manager: NewManager(store, lock.NewLocalLocker(), rec,
			clock.NewFake(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)), logger),
	}
}

func (f *fixture) attendant(t *testing.T, name string) int64 {
	t.Helper()
	a := &domain.Attendant{Name: name, Email: name + "@example.com"}
	require.NoError(t, f.store.CreateAttendant(context.Background(), a))
	return a.ID
}

func (f *fixture) positions(t *testing.T) map[int64]int {
	t.Helper()
	list, err := f.manager.ListAvailable(context.Background())
	require.NoError(t, err)
	out := make(map[int64]int, len(list))
	for _, a := range list {
		out[a.ID] = a.Position()
	}
	return out
}

func TestJoinAppendsAtTail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b, c := f.attendant(t, "ana"), f.attendant(t, "bruno"), f.attendant(t, "carla")

	for _, id := range []int64{a, b, c} {
		_, err := f.manager.Join(ctx, id)
		require.NoError(t, err)
	}

	assert.Equal(t, map[int64]int{a: 1, b: 2, c: 3}, f.positions(t))
	assert.Len(t, f.recorder.OfType(domain.EventQueueUpdated), 3)
}

func TestJoinTwiceIsAlreadyQueued(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.attendant(t, "ana")

	_, err := f.manager.Join(ctx, a)
	require.NoError(t, err)

	_, err = f.manager.Join(ctx, a)
	assert.True(t, errors.Is(err, constant.AlreadyQueuedErr))
	assert.Equal(t, map[int64]int{a: 1}, f.positions(t))
}

func TestJoinUnknownAttendant(t *testing.T) {
	f := newFixture(t)

	_, err := f.manager.Join(context.Background(), 99)
	assert.True(t, errors.Is(err, constant.NotFoundErr))
}

func TestLeaveCompactsPositions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b, c, d := f.attendant(t, "a"), f.attendant(t, "b"), f.attendant(t, "c"), f.attendant(t, "d")
	for _, id := range []int64{a, b, c, d} {
		_, err := f.manager.Join(ctx, id)
		require.NoError(t, err)
	}

	left, err := f.manager.Leave(ctx, b)
	require.NoError(t, err)
	assert.False(t, left.Available)
	assert.Nil(t, left.QueuePosition)

	assert.Equal(t, map[int64]int{a: 1, c: 2, d: 3}, f.positions(t))
}

func TestLeaveWhenNotQueued(t *testing.T) {
	f := newFixture(t)
	a := f.attendant(t, "a")

	_, err := f.manager.Leave(context.Background(), a)
	assert.True(t, errors.Is(err, constant.NotQueuedErr))
}

func TestLeaveThenJoinGoesToTail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b, c := f.attendant(t, "a"), f.attendant(t, "b"), f.attendant(t, "c")
	for _, id := range []int64{a, b, c} {
		_, err := f.manager.Join(ctx, id)
		require.NoError(t, err)
	}

	_, err := f.manager.Leave(ctx, a)
	require.NoError(t, err)
	_, err = f.manager.Join(ctx, a)
	require.NoError(t, err)

	assert.Equal(t, map[int64]int{b: 1, c: 2, a: 3}, f.positions(t))
}

func TestRequeueToTailRotates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b, c := f.attendant(t, "a"), f.attendant(t, "b"), f.attendant(t, "c")
	for _, id := range []int64{a, b, c} {
		_, err := f.manager.Join(ctx, id)
		require.NoError(t, err)
	}

	moved, err := f.manager.RequeueToTail(ctx, a)
	require.NoError(t, err)
	assert.False(t, moved.Busy)
	assert.Equal(t, 3, moved.Position())

	assert.Equal(t, map[int64]int{b: 1, c: 2, a: 3}, f.positions(t))
}

func TestRequeueToTailOfLastIsStable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b := f.attendant(t, "a"), f.attendant(t, "b")
	for _, id := range []int64{a, b} {
		_, err := f.manager.Join(ctx, id)
		require.NoError(t, err)
	}

	_, err := f.manager.RequeueToTail(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{a: 1, b: 2}, f.positions(t))
}

func TestRequeueToTailOfUnavailableOnlyClearsBusy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.attendant(t, "a")

	stored, err := f.store.GetAttendant(ctx, a)
	require.NoError(t, err)
	stored.Busy = true
	require.NoError(t, f.store.UpdateAttendant(ctx, &stored))

	moved, err := f.manager.RequeueToTail(ctx, a)
	require.NoError(t, err)
	assert.False(t, moved.Busy)
	assert.False(t, moved.Available)
	assert.Nil(t, moved.QueuePosition)
}

func TestNextAvailableSkipsBusy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b := f.attendant(t, "a"), f.attendant(t, "b")
	for _, id := range []int64{a, b} {
		_, err := f.manager.Join(ctx, id)
		require.NoError(t, err)
	}

	next, ok, err := f.manager.NextAvailable(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, a, next.ID)

	stored, err := f.store.GetAttendant(ctx, a)
	require.NoError(t, err)
	stored.Busy = true
	require.NoError(t, f.store.UpdateAttendant(ctx, &stored))

	next, ok, err = f.manager.NextAvailable(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, b, next.ID)
}

func TestNextAvailableEmptyQueue(t *testing.T) {
	f := newFixture(t)

	_, ok, err := f.manager.NextAvailable(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConcurrentJoinsGetDistinctPositions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 20
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = f.attendant(t, fmt.Sprintf("att%d", i))
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := f.manager.Join(ctx, id)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	seen := make(map[int]bool, n)
	for _, pos := range f.positions(t) {
		assert.False(t, seen[pos], "position %d assigned twice", pos)
		seen[pos] = true
	}
	for pos := 1; pos <= n; pos++ {
		assert.True(t, seen[pos], "position %d missing", pos)
	}
}

func TestPublishCarriesSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.attendant(t, "a")

	_, err := f.manager.Join(ctx, a)
	require.NoError(t, err)

	events := f.recorder.OfType(domain.EventQueueUpdated)
	require.Len(t, events, 1)
	assert.Equal(t, []domain.QueueEntry{{AttendantID: a, Name: "a", Position: 1}}, events[0].Queue)
}
