package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/elfabitto/sistema-de-atendimento/cmd/command"
	"github.com/elfabitto/sistema-de-atendimento/internal/config"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := log.New()
	logger.SetFormatter(&log.JSONFormatter{})

	// filled in once flags are parsed; subcommands keep the pointer
	cfg := &config.Config{}
	var configPath string

	const description = "Attendant rotation service"
	root := &cobra.Command{
		Short:         description,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			*cfg = *loaded
			logger.SetLevel(cfg.LogLevel)
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	root.AddCommand(
		command.Server{Logger: logger}.Command(ctx, cfg),
		command.SweepCommand{Logger: logger}.Command(ctx, cfg),
		command.EventsConsumerCommand{Logger: logger}.Command(ctx, cfg),
		command.MigrateCommand{Logger: logger}.Command(ctx, cfg),
	)

	if err := root.Execute(); err != nil {
		logger.WithContext(ctx).Fatalf("failed to execute root command: \n%v", err)
	}
}
