package lock

import (
	"context"
	"time"

	"github.com/elfabitto/sistema-de-atendimento/internal/constant"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var releaseLua = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// RedisLocker shares locks between service instances. A lock expires after
// ttl so a crashed holder cannot wedge a request forever.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	poll   time.Duration
	logger *logrus.Logger
}

func NewRedisLocker(client *redis.Client, ttl time.Duration, logger *logrus.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = constant.DefaultLockTTL
	}
	return &RedisLocker{
		client: client,
		ttl:    ttl,
		poll:   constant.LockPollInterval,
		logger: logger,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := constant.RedisLockPrefix + key
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, errors.Wrapf(err, "lock %s", key)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, errors.Wrapf(ctx.Err(), "lock %s", key)
		case <-time.After(l.poll):
		}
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), constant.RedisPublishTimeout)
		defer cancel()

		if err := releaseLua.Run(releaseCtx, l.client, []string{redisKey}, token).Err(); err != nil {
			l.logger.WithField("key", key).Warnf("failed to release redis lock: %v", err)
		}
	}, nil
}
