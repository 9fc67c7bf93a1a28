package command

import (
	"context"

	"github.com/elfabitto/sistema-de-atendimento/internal/config"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// SweepCommand runs a single sweep, for cron-driven deployments where the
// server's own ticker is not wanted.
type SweepCommand struct {
	Logger *logrus.Logger
}

func (cmd SweepCommand) Command(ctx context.Context, cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "time out overdue sessions once and hand out pending requests",
		Run: func(_ *cobra.Command, _ []string) {
			cmd.main(cfg, ctx)
		},
	}
}

func (cmd SweepCommand) main(cfg *config.Config, ctx context.Context) {
	a, err := newApp(ctx, cfg, cmd.Logger)
	if err != nil {
		cmd.Logger.WithContext(ctx).Fatal(errors.Wrap(err, "sweep"))
		return
	}
	defer a.close(cmd.Logger)

	if a.publisher != nil {
		a.publisher.Start()
		defer a.publisher.Stop()
	}

	reassigned, err := a.sweeper.Tick(ctx)
	if err != nil {
		cmd.Logger.WithContext(ctx).Error(errors.Wrap(err, "sweep"))
		return
	}

	cmd.Logger.WithContext(ctx).WithField("timed_out", len(reassigned)).Info("sweep finished")
}
