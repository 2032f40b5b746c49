package worker

import (
	"context"
	"log/slog"
	"time"

	"airdine/internal/usecase/commands"
)

// Sweeper periodically settles activation codes whose TTL elapsed without a
// redemption. The lazy expiration in the redeem path handles codes someone
// actually presents; the sweeper catches the rest.
type Sweeper struct {
	cmds     commands.SweepCommands
	interval time.Duration
	logger   *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func NewSweeper(cmds commands.SweepCommands, interval time.Duration, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		cmds:     cmds,
		interval: interval,
		logger:   logger,
	}
}

func (s *Sweeper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx)
	s.logger.Info("activation sweeper started", "interval", s.interval)
}

// Stop blocks until the loop exits; an in-flight sweep finishes its current
// batch transaction before observing cancellation.
func (s *Sweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.logger.Info("activation sweeper stopped")
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	report, err := s.cmds.SweepExpired(ctx)
	if err != nil {
		// Sweep failures are retried on the next tick; never fatal.
		s.logger.Error("activation sweep failed", "error", err)
		return
	}
	if report.Expired > 0 {
		s.logger.Info("activation sweep completed",
			"expired", report.Expired,
			"ledger_entries", report.LedgerEntries,
			"batches", report.Batches,
		)
	}
}
