package command

import (
	"context"
	"fmt"

	"github.com/elfabitto/sistema-de-atendimento/internal/api"
	"github.com/elfabitto/sistema-de-atendimento/internal/config"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type Server struct {
	Logger *logrus.Logger
}

func (cmd Server) Command(ctx context.Context, cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "run the rotation API together with the timeout sweeper",
		Run: func(_ *cobra.Command, _ []string) {
			cmd.main(cfg, ctx)
		},
	}
}

func (cmd Server) main(cfg *config.Config, ctx context.Context) {
	a, err := newApp(ctx, cfg, cmd.Logger)
	if err != nil {
		cmd.Logger.WithContext(ctx).Fatal(errors.Wrap(err, "server"))
		return
	}
	defer a.close(cmd.Logger)

	if a.publisher != nil {
		a.publisher.Start()
		defer func() {
			cmd.Logger.Info("draining kafka publisher...")
			a.publisher.Stop()
		}()
	}

	a.sweeper.Start(ctx)
	defer a.sweeper.Stop()

	server := api.New(cfg.AppEnv, cmd.Logger)
	server.SetupAPIRoutes(a.handlers, a.idempotency)

	// run the server
	if err := server.Serve(ctx, fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
		cmd.Logger.WithContext(ctx).Error(err)
	}
}
