package command

import (
	"context"

	"github.com/elfabitto/sistema-de-atendimento/internal/clock"
	"github.com/elfabitto/sistema-de-atendimento/internal/config"
	"github.com/elfabitto/sistema-de-atendimento/internal/constant"
	"github.com/elfabitto/sistema-de-atendimento/internal/infra"
	"github.com/elfabitto/sistema-de-atendimento/internal/repository"
	"github.com/elfabitto/sistema-de-atendimento/internal/service/history"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type EventsConsumerCommand struct {
	Logger *log.Logger
}

func (cmd EventsConsumerCommand) Command(ctx context.Context, cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "consume-events",
		Short: "consume lifecycle events from Kafka and push them to ClickHouse",
		Run: func(_ *cobra.Command, _ []string) {
			cmd.main(cfg, ctx)
		},
	}
}

func (cmd EventsConsumerCommand) main(cfg *config.Config, ctx context.Context) {
	if !cfg.Kafka.Enabled || !cfg.Database.ClickHouse.Enabled {
		cmd.Logger.WithContext(ctx).Fatal("consume-events needs both kafka and clickhouse enabled")
		return
	}

	clickhouseDb, err := infra.NewClickHouseClient(ctx, cfg.Database.ClickHouse)
	if err != nil {
		cmd.Logger.WithContext(ctx).Fatalf("failed to initialize ClickHouse client: %v", err)
	}
	defer func() {
		if err := clickhouseDb.Close(); err != nil {
			cmd.Logger.WithContext(ctx).Errorf("failed to close ClickHouse client: %v", err)
		}
	}()

	reader := infra.NewKafkaConsumer(cfg.Kafka, constant.TopicEvents)
	defer func() {
		if err := reader.Close(); err != nil {
			cmd.Logger.WithContext(ctx).Errorf("failed to close Kafka consumer: %v", err)
		}
	}()

	ingestor := history.NewIngestor(
		reader,
		repository.NewHistoryRepository(clickhouseDb.GetDb()),
		clock.System{},
		history.DefaultBatchSize,
		history.DefaultFlushEvery,
		cmd.Logger,
	)

	cmd.Logger.WithContext(ctx).Infof("consuming %s", constant.TopicEvents)
	ingestor.Run(ctx)
	cmd.Logger.WithContext(ctx).Info("events consumer stopped")
}
