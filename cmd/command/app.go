package command

import (
	"context"

	"github.com/elfabitto/sistema-de-atendimento/internal/api"
	attendantHandler "github.com/elfabitto/sistema-de-atendimento/internal/api/handler/attendant"
	queueHandler "github.com/elfabitto/sistema-de-atendimento/internal/api/handler/queue"
	requestHandler "github.com/elfabitto/sistema-de-atendimento/internal/api/handler/request"
	sessionHandler "github.com/elfabitto/sistema-de-atendimento/internal/api/handler/session"
	settingsHandler "github.com/elfabitto/sistema-de-atendimento/internal/api/handler/settings"
	statsHandler "github.com/elfabitto/sistema-de-atendimento/internal/api/handler/stats"
	"github.com/elfabitto/sistema-de-atendimento/internal/api/middleware"
	"github.com/elfabitto/sistema-de-atendimento/internal/clock"
	"github.com/elfabitto/sistema-de-atendimento/internal/config"
	"github.com/elfabitto/sistema-de-atendimento/internal/constant"
	"github.com/elfabitto/sistema-de-atendimento/internal/domain"
	"github.com/elfabitto/sistema-de-atendimento/internal/infra"
	"github.com/elfabitto/sistema-de-atendimento/internal/lock"
	"github.com/elfabitto/sistema-de-atendimento/internal/notify"
	"github.com/elfabitto/sistema-de-atendimento/internal/queue"
	"github.com/elfabitto/sistema-de-atendimento/internal/repository"
	"github.com/elfabitto/sistema-de-atendimento/internal/repository/memory"
	attendantService "github.com/elfabitto/sistema-de-atendimento/internal/service/attendant"
	"github.com/elfabitto/sistema-de-atendimento/internal/service/assignment"
	requestService "github.com/elfabitto/sistema-de-atendimento/internal/service/request"
	sessionService "github.com/elfabitto/sistema-de-atendimento/internal/service/session"
	settingsService "github.com/elfabitto/sistema-de-atendimento/internal/service/settings"
	statsService "github.com/elfabitto/sistema-de-atendimento/internal/service/stats"
	"github.com/elfabitto/sistema-de-atendimento/internal/service/sweeper"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// app is the fully wired engine shared by the long-running commands.
type app struct {
	handlers    api.Handlers
	idempotency *middleware.IdempotencyMiddleware
	sweeper     *sweeper.Sweeper
	publisher   *notify.KafkaPublisher

	closers []func() error
}

type timelineReader interface {
	RequestTimeline(ctx context.Context, requestID int64) ([]domain.Event, error)
}

type activityReader interface {
	AttendantEvents(ctx context.Context, attendantID int64, limit, offset int) ([]domain.Event, int64, error)
}

func newApp(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*app, error) {
	a := &app{}
	ok := false
	defer func() {
		if !ok {
			a.close(logger)
		}
	}()

	var (
		store domain.Store
		pg    *infra.PostgresClient
	)
	switch cfg.Store {
	case config.StorePostgres:
		client, err := infra.NewPostgresClient(ctx, cfg.Database.Postgres)
		if err != nil {
			return nil, errors.Wrap(err, "failed to connect to postgresql")
		}
		a.closers = append(a.closers, client.Close)
		pg = client
		store = repository.NewStore(pg.GetDb())
	default:
		logger.Warn("using the in-memory store; state is lost on restart")
		store = memory.NewStore()
	}

	var redisClient *redis.Client
	if cfg.Database.Redis.Enabled {
		client, err := infra.NewRedisClient(ctx, cfg.Database.Redis, logger)
		if err != nil {
			return nil, errors.Wrap(err, "failed to connect to redis")
		}
		a.closers = append(a.closers, client.Close)
		redisClient = client
	}

	var locker domain.Locker = lock.NewLocalLocker()
	if cfg.Queue.LockBackend == config.LockRedis {
		locker = lock.NewRedisLocker(redisClient, cfg.Queue.LockTTL, logger)
	}

	var sinks notify.Fanout
	if redisClient != nil {
		sinks = append(sinks, notify.NewRedisPublisher(redisClient, logger))
		a.idempotency = middleware.NewIdempotencyMiddleware(redisClient, constant.RedisIdempotencyTTL, logger)
	}
	if cfg.Kafka.Enabled {
		writer := infra.NewKafkaWriter(cfg.Kafka)
		a.closers = append(a.closers, writer.Close)
		a.publisher = notify.NewKafkaPublisher(writer, repository.NewDlqRepository(pg.GetDb()), cfg.WorkerCount, logger)
		sinks = append(sinks, a.publisher)
	}

	var notifier domain.Notifier = sinks
	if len(sinks) == 0 {
		logger.Warn("no notification sinks configured; lifecycle events are dropped")
		notifier = notify.Nop{}
	}

	var (
		timeline timelineReader
		activity activityReader
	)
	if cfg.Database.ClickHouse.Enabled {
		ch, err := infra.NewClickHouseClient(ctx, cfg.Database.ClickHouse)
		if err != nil {
			return nil, errors.Wrap(err, "failed to connect to clickhouse")
		}
		a.closers = append(a.closers, ch.Close)
		history := repository.NewHistoryRepository(ch.GetDb())
		timeline, activity = history, history
	}

	clk := clock.System{}
	settings := settingsService.NewSettingsService(store, cfg.Queue.TimeoutThreshold, logger)
	queueManager := queue.NewManager(store, locker, notifier, clk, logger)
	distributor := assignment.NewDistributor(store, locker, queueManager, notifier, clk, settings, logger)
	controller := sessionService.NewController(
		store,
		locker,
		queueManager,
		distributor,
		notifier,
		clk,
		settings,
		cfg.Queue.ReleaseOnLeave,
		logger,
	)
	requests := requestService.NewRequestService(store, distributor, timeline, clk, logger)

	a.sweeper = sweeper.NewSweeper(store, controller, distributor, settings, clk, cfg.Queue.SweepInterval, logger)
	a.handlers = api.Handlers{
		Attendant: attendantHandler.New(attendantService.NewAttendantService(store, activity, logger)),
		Queue:     queueHandler.New(queueManager, controller),
		Request:   requestHandler.New(requests),
		Session:   sessionHandler.New(controller, requests),
		Stats:     statsHandler.New(statsService.NewStatsService(store)),
		Settings:  settingsHandler.New(settings),
	}

	ok = true
	return a, nil
}

// close releases connections in reverse order of creation.
func (a *app) close(logger *logrus.Logger) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.WithError(err).Error("failed to close resource")
		}
	}
}
