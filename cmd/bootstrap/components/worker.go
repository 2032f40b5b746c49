package components

import (
	"context"
	"log/slog"

	"airdine/internal/pkg/config"
	"airdine/internal/usecase/commands"
	"airdine/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		NewSweeper,
	),
	fx.Invoke(registerSweeper),
)

func NewSweeper(cmds commands.SweepCommands, cfg config.Config, logger *slog.Logger) *worker.Sweeper {
	return worker.NewSweeper(cmds, cfg.Offers.SweepInterval, logger)
}

func registerSweeper(lc fx.Lifecycle, sweeper *worker.Sweeper) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			sweeper.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			sweeper.Stop()
			return nil
		},
	})
}
