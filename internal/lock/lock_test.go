package lock

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

func newRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewRedisLocker(client, time.Minute, logger), mr
}

func lockers(t *testing.T) map[string]locker {
	rl, _ := newRedisLocker(t)
	return map[string]locker{
		"local": NewLocalLocker(),
		"redis": rl,
	}
}

func TestLockIsExclusive(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			var (
				wg      sync.WaitGroup
				mu      sync.Mutex
				inside  int
				maxSeen int
			)

			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					unlock, err := l.Lock(context.Background(), RequestKey(1))
					if !assert.NoError(t, err) {
						return
					}

					mu.Lock()
					inside++
					if inside > maxSeen {
						maxSeen = inside
					}
					mu.Unlock()

					time.Sleep(time.Millisecond)

					mu.Lock()
					inside--
					mu.Unlock()
					unlock()
				}()
			}
			wg.Wait()

			assert.Equal(t, 1, maxSeen)
		})
	}
}

func TestLockHonoursContext(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			unlock, err := l.Lock(context.Background(), QueueKey())
			require.NoError(t, err)
			defer unlock()

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			_, err = l.Lock(ctx, QueueKey())
			assert.True(t, errors.Is(err, context.DeadlineExceeded))
		})
	}
}

func TestDistinctKeysDoNotBlock(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			a, err := l.Lock(context.Background(), RequestKey(1))
			require.NoError(t, err)
			defer a()

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			b, err := l.Lock(ctx, RequestKey(2))
			require.NoError(t, err)
			b()
		})
	}
}

func TestLocalUnlockIsIdempotent(t *testing.T) {
	l := NewLocalLocker()
	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)

	unlock()
	unlock()

	assert.Empty(t, l.slots)
}

func TestRedisUnlockKeepsForeignToken(t *testing.T) {
	l, mr := newRedisLocker(t)

	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)

	// the lease expired and someone else took the key
	mr.Set("rotation:lock:k", "other")
	unlock()

	got, err := mr.Get("rotation:lock:k")
	require.NoError(t, err)
	assert.Equal(t, "other", got)
}

func TestRedisLockExpires(t *testing.T) {
	l, mr := newRedisLocker(t)

	_, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlock, err := l.Lock(ctx, "k")
	require.NoError(t, err)
	unlock()
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "request:42", RequestKey(42))
	assert.Equal(t, "queue", QueueKey())
}
