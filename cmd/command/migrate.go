package command

import (
	"context"

	"github.com/elfabitto/sistema-de-atendimento/internal/config"
	"github.com/elfabitto/sistema-de-atendimento/internal/infra"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type MigrateCommand struct {
	Logger *log.Logger
}

func (cmd MigrateCommand) Command(ctx context.Context, cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "run migration",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"up", "down"},
		Run: func(_ *cobra.Command, args []string) {
			cmd.main(cfg, ctx, args)
		},
	}
}

type migrator interface {
	MigrateUp(dbName string) error
	MigrateDown(dbName string) error
	Close() error
}

type migrationTarget struct {
	name     string
	database string
	migrator migrator
}

func (cmd MigrateCommand) main(cfg *config.Config, ctx context.Context, args []string) {
	if cfg.Store != config.StorePostgres {
		cmd.Logger.WithContext(ctx).Fatal("migrations need the postgres store")
		return
	}

	psql, err := infra.NewPostgresClient(ctx, cfg.Database.Postgres)
	if err != nil {
		cmd.Logger.WithContext(ctx).Fatal(errors.Wrap(err, "migrate : failed to connect to postgresql"))
		return
	}
	targets := []migrationTarget{{"postgresql", cfg.Database.Postgres.Database, psql}}

	if cfg.Database.ClickHouse.Enabled {
		clickhouse, err := infra.NewClickHouseClient(ctx, cfg.Database.ClickHouse)
		if err != nil {
			cmd.Logger.WithContext(ctx).Fatal(errors.Wrap(err, "migrate : failed to connect to clickhouse"))
			return
		}
		targets = append(targets, migrationTarget{"clickhouse", cfg.Database.ClickHouse.Database, clickhouse})
	}

	defer func() {
		for _, t := range targets {
			if err := t.migrator.Close(); err != nil {
				cmd.Logger.WithContext(ctx).Errorf("failed to close %s: %v", t.name, err)
			}
		}
	}()

	migrationCommand := args[0]
	for _, t := range targets {
		switch migrationCommand {
		case "up":
			err = t.migrator.MigrateUp(t.database)
		case "down":
			err = t.migrator.MigrateDown(t.database)
		default:
			cmd.Logger.WithContext(ctx).Fatal(errors.Errorf("migration command : %s is not supported", migrationCommand))
			return
		}
		if err != nil {
			cmd.Logger.WithContext(ctx).Fatal(errors.Wrapf(err, "migrate %s %s", migrationCommand, t.name))
			return
		}
		cmd.Logger.WithContext(ctx).Infof("%s migrated %s", t.name, migrationCommand)
	}
}
