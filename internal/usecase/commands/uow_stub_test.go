//go:build unit

package commands_test

import (
	"context"

	"airdine/internal/infra"
	"airdine/internal/usecase/shared"
	sharedmock "airdine/tests/mock/shared"

	"go.uber.org/mock/gomock"
)

// stubTx assembles the gomock port mocks into a shared.Tx so command tests
// can drive Within-based flows without a database.
type stubTx struct {
	offers      *sharedmock.MockOfferRepository
	activations *sharedmock.MockActivationRepository
	usages      *sharedmock.MockUsageRepository
	bookings    *sharedmock.MockBookingRepository
	favorites   *sharedmock.MockFavoriteRepository
	users       *sharedmock.MockUserRepository
	reads       *sharedmock.MockCommandReads
}

func newStubTx(ctrl *gomock.Controller) *stubTx {
	return &stubTx{
		offers:      sharedmock.NewMockOfferRepository(ctrl),
		activations: sharedmock.NewMockActivationRepository(ctrl),
		usages:      sharedmock.NewMockUsageRepository(ctrl),
		bookings:    sharedmock.NewMockBookingRepository(ctrl),
		favorites:   sharedmock.NewMockFavoriteRepository(ctrl),
		users:       sharedmock.NewMockUserRepository(ctrl),
		reads:       sharedmock.NewMockCommandReads(ctrl),
	}
}

func (t *stubTx) Offers() shared.OfferRepository           { return t.offers }
func (t *stubTx) Activations() shared.ActivationRepository { return t.activations }
func (t *stubTx) Usages() shared.UsageRepository           { return t.usages }
func (t *stubTx) Bookings() shared.BookingRepository       { return t.bookings }
func (t *stubTx) Favorites() shared.FavoriteRepository     { return t.favorites }
func (t *stubTx) Users() shared.UserRepository             { return t.users }
func (t *stubTx) Reads() shared.CommandReads               { return t.reads }
func (t *stubTx) DB() infra.DBTX                           { return nil }

// stubUoW runs each closure directly against the stub Tx. No transaction,
// no retries; error propagation matches the real implementation.
type stubUoW struct {
	tx *stubTx
}

func newStubUoW(ctrl *gomock.Controller) *stubUoW {
	return &stubUoW{tx: newStubTx(ctrl)}
}

func (u *stubUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, u.tx)
}

func (u *stubUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, db infra.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *stubUoW) WithDB(ctx context.Context, fn func(ctx context.Context, db infra.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *stubUoW) CommandReads() shared.CommandReads {
	return u.tx.reads
}

func notFoundErr(msg string) error {
	return infra.WrapRepoErr(msg, nil, infra.KindNotFound)
}

func duplicateKeyErr(msg string) error {
	return infra.WrapRepoErr(msg, nil, infra.KindDuplicateKey)
}
