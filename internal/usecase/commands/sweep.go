package commands

import (
	"context"

	"airdine/internal/domain/offer"
	"airdine/internal/infra"
	"airdine/internal/pkg/clock"
	"airdine/internal/usecase/shared"

	"github.com/google/uuid"
)

const sweepBatchSize = 500

type SweepReport struct {
	Expired       int64
	LedgerEntries int64
	Batches       int
}

type SweepCommands interface {
	// SweepExpired settles the whole pending-past-TTL backlog in batches.
	SweepExpired(ctx context.Context) (*SweepReport, error)
	// CheckAndUpdateExpiration lazily settles one activation; reports
	// whether it flipped to expired.
	CheckAndUpdateExpiration(ctx context.Context, activationID uuid.UUID) (bool, error)
}

type sweepCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewSweepCommands(uow shared.UnitOfWork, clk clock.Clock) SweepCommands {
	return &sweepCommandsImpl{uow: uow, clock: clk}
}

func (s *sweepCommandsImpl) SweepExpired(ctx context.Context) (*SweepReport, error) {
	report := &SweepReport{}

	for {
		var batchCount int
		err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			now := s.clock.Now()

			stale, err := tx.Activations().LockExpiredPending(ctx, now, sweepBatchSize)
			if err != nil {
				return err
			}
			batchCount = len(stale)
			if batchCount == 0 {
				return nil
			}

			// Ledger first: the partial unique index absorbs entries a
			// concurrent lazy expiration already wrote.
			usages := make([]offer.Usage, 0, len(stale))
			ids := make([]uuid.UUID, 0, len(stale))
			for _, a := range stale {
				usages = append(usages, offer.NewExpiredUsage(uuid.New(), a))
				ids = append(ids, a.ID())
			}

			inserted, err := tx.Usages().InsertBatch(ctx, usages)
			if err != nil {
				return err
			}

			expired, err := tx.Activations().MarkExpiredByIDs(ctx, ids)
			if err != nil {
				return err
			}

			report.Expired += expired
			report.LedgerEntries += inserted
			return nil
		})
		if err != nil {
			return report, err
		}
		if batchCount == 0 {
			break
		}
		report.Batches++
		if batchCount < sweepBatchSize {
			break
		}
	}

	return report, nil
}

func (s *sweepCommandsImpl) CheckAndUpdateExpiration(ctx context.Context, activationID uuid.UUID) (bool, error) {
	var flipped bool

	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := s.clock.Now()

		a, err := tx.Activations().FindByIDForUpdate(ctx, activationID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrActivationNotFound
			}
			return err
		}

		// An already-expired row may still lack its ledger entry; the
		// idempotent insert repairs it without double counting.
		if a.Status() == offer.ActivationExpired {
			_, err := tx.Usages().Insert(ctx, offer.NewExpiredUsage(uuid.New(), a))
			return err
		}
		if a.Status() != offer.ActivationPending || !a.IsExpiredAt(now) {
			return nil
		}

		if err := a.MarkExpired(now); err != nil {
			return mapActivationErr(err)
		}
		if err := tx.Activations().UpdateStatus(ctx, a); err != nil {
			return err
		}
		if _, err := tx.Usages().Insert(ctx, offer.NewExpiredUsage(uuid.New(), a)); err != nil {
			return err
		}
		flipped = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return flipped, nil
}
