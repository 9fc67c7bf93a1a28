package notify

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/elfabitto/sistema-de-atendimento/internal/constant"
	"github.com/elfabitto/sistema-de-atendimento/internal/domain"
	"github.com/elfabitto/sistema-de-atendimento/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisPublisher pushes every event to the general channel and to the
// personal channel of each attendant it concerns.
type RedisPublisher struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewRedisPublisher(client *redis.Client, logger *logrus.Logger) *RedisPublisher {
	return &RedisPublisher{
		client: client,
		logger: logger,
	}
}

func AttendantChannel(attendantID int64) string {
	return constant.RedisAttendantChannelPrefix + strconv.FormatInt(attendantID, 10)
}

func (rp *RedisPublisher) Notify(ctx context.Context, ev domain.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		rp.logger.WithError(err).WithField("event_type", ev.Type).Error("failed to marshal event")
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constant.RedisPublishTimeout)
	defer cancel()

	for _, channel := range channelsFor(ev) {
		if err := rp.client.Publish(ctx, channel, payload).Err(); err != nil {
			metrics.NotificationFailuresTotal.WithLabelValues("redis").Inc()
			rp.logger.WithFields(logrus.Fields{
				"channel":    channel,
				"event_type": ev.Type,
				"error":      err,
			}).Warn("failed to publish event")
		}
	}
}

func channelsFor(ev domain.Event) []string {
	channels := []string{constant.RedisGeneralChannel}
	seen := map[int64]bool{}
	add := func(id int64) {
		if id == 0 || seen[id] {
			return
		}
		seen[id] = true
		channels = append(channels, AttendantChannel(id))
	}

	add(ev.AttendantID)
	add(ev.PreviousAttendantID)
	if ev.NextAttendantID != nil {
		add(*ev.NextAttendantID)
	}
	return channels
}
