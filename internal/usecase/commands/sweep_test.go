//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"airdine/internal/domain/offer"
	"airdine/internal/pkg/clock"
	"airdine/internal/usecase/commands"
	"airdine/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type SweepCommandsTestSuite struct {
	suite.Suite
	mockCtrl *gomock.Controller
	uow      *stubUoW
	clock    *clock.MockClock
	commands commands.SweepCommands
}

func (s *SweepCommandsTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.uow = newStubUoW(s.mockCtrl)
	s.clock = clock.NewMockClock(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	s.commands = commands.NewSweepCommands(s.uow, s.clock)
}

func (s *SweepCommandsTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestSweepCommandsSuite(t *testing.T) {
	suite.Run(t, new(SweepCommandsTestSuite))
}

func (s *SweepCommandsTestSuite) staleActivations(n int) []*offer.Activation {
	stale := make([]*offer.Activation, 0, n)
	for i := 0; i < n; i++ {
		stale = append(stale, builder.NewActivationBuilder().With(func(b *builder.ActivationBuilder) {
			b.CreatedAt = s.clock.Now().Add(-10 * time.Minute)
			b.ExpiresAt = s.clock.Now().Add(-8 * time.Minute)
		}).BuildDomain())
	}
	return stale
}

func (s *SweepCommandsTestSuite) TestSweepExpired() {
	ctx := context.Background()

	s.Run("success: settles a partial batch and stops", func() {
		stale := s.staleActivations(3)

		s.uow.tx.activations.EXPECT().LockExpiredPending(ctx, s.clock.Now(), int32(500)).
			Return(stale, nil)
		s.uow.tx.usages.EXPECT().InsertBatch(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, usages []offer.Usage) (int64, error) {
				s.Len(usages, 3)
				for i, u := range usages {
					s.Equal(offer.UsageExpired, u.Status())
					s.Equal(stale[i].ExpiresAt(), u.UsedAt())
				}
				return 3, nil
			})
		s.uow.tx.activations.EXPECT().MarkExpiredByIDs(ctx, gomock.Len(3)).Return(int64(3), nil)

		report, err := s.commands.SweepExpired(ctx)
		s.NoError(err)
		s.Equal(int64(3), report.Expired)
		s.Equal(int64(3), report.LedgerEntries)
		s.Equal(1, report.Batches)
	})

	s.Run("success: idempotent when nothing is stale", func() {
		s.uow.tx.activations.EXPECT().LockExpiredPending(ctx, s.clock.Now(), int32(500)).
			Return(nil, nil)

		report, err := s.commands.SweepExpired(ctx)
		s.NoError(err)
		s.Equal(int64(0), report.Expired)
		s.Equal(int64(0), report.LedgerEntries)
		s.Equal(0, report.Batches)
	})

	s.Run("success: a full batch triggers another round", func() {
		full := s.staleActivations(500)
		rest := s.staleActivations(2)

		gomock.InOrder(
			s.uow.tx.activations.EXPECT().LockExpiredPending(ctx, s.clock.Now(), int32(500)).
				Return(full, nil),
			s.uow.tx.activations.EXPECT().LockExpiredPending(ctx, s.clock.Now(), int32(500)).
				Return(rest, nil),
		)
		gomock.InOrder(
			s.uow.tx.usages.EXPECT().InsertBatch(ctx, gomock.Len(500)).Return(int64(500), nil),
			s.uow.tx.usages.EXPECT().InsertBatch(ctx, gomock.Len(2)).Return(int64(2), nil),
		)
		gomock.InOrder(
			s.uow.tx.activations.EXPECT().MarkExpiredByIDs(ctx, gomock.Len(500)).Return(int64(500), nil),
			s.uow.tx.activations.EXPECT().MarkExpiredByIDs(ctx, gomock.Len(2)).Return(int64(2), nil),
		)

		report, err := s.commands.SweepExpired(ctx)
		s.NoError(err)
		s.Equal(int64(502), report.Expired)
		s.Equal(int64(502), report.LedgerEntries)
		s.Equal(2, report.Batches)
	})

	s.Run("success: ledger inserts lost to lazy expiration do not inflate the count", func() {
		stale := s.staleActivations(2)

		s.uow.tx.activations.EXPECT().LockExpiredPending(ctx, s.clock.Now(), int32(500)).
			Return(stale, nil)
		// One entry was already written by a concurrent lazy expiration.
		s.uow.tx.usages.EXPECT().InsertBatch(ctx, gomock.Len(2)).Return(int64(1), nil)
		s.uow.tx.activations.EXPECT().MarkExpiredByIDs(ctx, gomock.Len(2)).Return(int64(2), nil)

		report, err := s.commands.SweepExpired(ctx)
		s.NoError(err)
		s.Equal(int64(2), report.Expired)
		s.Equal(int64(1), report.LedgerEntries)
	})
}

func (s *SweepCommandsTestSuite) TestCheckAndUpdateExpiration() {
	ctx := context.Background()

	s.Run("success: flips a stale pending activation", func() {
		a := builder.NewActivationBuilder().With(func(b *builder.ActivationBuilder) {
			b.CreatedAt = s.clock.Now().Add(-10 * time.Minute)
			b.ExpiresAt = s.clock.Now().Add(-8 * time.Minute)
		}).BuildDomain()

		s.uow.tx.activations.EXPECT().FindByIDForUpdate(ctx, a.ID()).Return(a, nil)
		s.uow.tx.activations.EXPECT().UpdateStatus(ctx, a).Return(nil)
		s.uow.tx.usages.EXPECT().Insert(ctx, gomock.Any()).Return(true, nil)

		flipped, err := s.commands.CheckAndUpdateExpiration(ctx, a.ID())
		s.NoError(err)
		s.True(flipped)
		s.Equal(offer.ActivationExpired, a.Status())
	})

	s.Run("success: still-valid pending activation left alone", func() {
		a := builder.NewActivationBuilder().With(func(b *builder.ActivationBuilder) {
			b.CreatedAt = s.clock.Now()
			b.ExpiresAt = s.clock.Now().Add(2 * time.Minute)
		}).BuildDomain()

		s.uow.tx.activations.EXPECT().FindByIDForUpdate(ctx, a.ID()).Return(a, nil)

		flipped, err := s.commands.CheckAndUpdateExpiration(ctx, a.ID())
		s.NoError(err)
		s.False(flipped)
		s.Equal(offer.ActivationPending, a.Status())
	})

	s.Run("success: already-expired activation gets its ledger entry repaired", func() {
		a := builder.NewActivationBuilder().With(func(b *builder.ActivationBuilder) {
			b.Status = offer.ActivationExpired
			b.CreatedAt = s.clock.Now().Add(-10 * time.Minute)
			b.ExpiresAt = s.clock.Now().Add(-8 * time.Minute)
		}).BuildDomain()

		s.uow.tx.activations.EXPECT().FindByIDForUpdate(ctx, a.ID()).Return(a, nil)
		s.uow.tx.usages.EXPECT().Insert(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, u offer.Usage) (bool, error) {
				s.Equal(offer.UsageExpired, u.Status())
				s.Equal(a.ID(), *u.ActivationID())
				return true, nil
			})

		flipped, err := s.commands.CheckAndUpdateExpiration(ctx, a.ID())
		s.NoError(err)
		s.False(flipped)
	})

	s.Run("success: terminal statuses are never touched", func() {
		a := builder.NewActivationBuilder().With(func(b *builder.ActivationBuilder) {
			b.Status = offer.ActivationRedeemed
			b.ExpiresAt = s.clock.Now().Add(-time.Minute)
		}).BuildDomain()

		s.uow.tx.activations.EXPECT().FindByIDForUpdate(ctx, a.ID()).Return(a, nil)

		flipped, err := s.commands.CheckAndUpdateExpiration(ctx, a.ID())
		s.NoError(err)
		s.False(flipped)
	})

	s.Run("error: unknown activation", func() {
		id := uuid.New()
		s.uow.tx.activations.EXPECT().FindByIDForUpdate(ctx, id).
			Return(nil, notFoundErr("activation not found"))

		_, err := s.commands.CheckAndUpdateExpiration(ctx, id)
		s.ErrorIs(err, commands.ErrActivationNotFound)
	})
}
