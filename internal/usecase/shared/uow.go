package shared

import (
	"context"
	"time"

	"airdine/internal/domain/booking"
	"airdine/internal/domain/offer"
	"airdine/internal/infra"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: Read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, db infra.DBTX) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, db infra.DBTX) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Offers() OfferRepository
	Activations() ActivationRepository
	Usages() UsageRepository
	Bookings() BookingRepository
	Favorites() FavoriteRepository
	Users() UserRepository
	Reads() CommandReads
	DB() infra.DBTX
}

type CommandReads interface {
	RestaurantByID(ctx context.Context, id uuid.UUID) (*RestaurantSnapshot, error)
}

type OfferRepository interface {
	// FindByIDForUpdate locks the offer row for the rest of the transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*offer.Offer, error)
	// TryIncrementUses bumps current_uses only while under max_uses and
	// reports whether a row was updated.
	TryIncrementUses(ctx context.Context, id uuid.UUID) (bool, error)
}

type ActivationRepository interface {
	Create(ctx context.Context, a *offer.Activation) error
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*offer.Activation, error)
	FindByCodeForUpdate(ctx context.Context, code offer.Code) (*offer.Activation, error)
	FindPendingByOfferAndUser(ctx context.Context, offerID, userID uuid.UUID) (*offer.Activation, error)
	UpdateStatus(ctx context.Context, a *offer.Activation) error
	// LockExpiredPending claims up to limit pending activations whose TTL
	// has passed, skipping rows locked by concurrent sweeps.
	LockExpiredPending(ctx context.Context, now time.Time, limit int32) ([]*offer.Activation, error)
	MarkExpiredByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
}

type UsageRepository interface {
	// Insert records a ledger entry; it reports false when the activation
	// already has one.
	Insert(ctx context.Context, u offer.Usage) (bool, error)
	InsertBatch(ctx context.Context, usages []offer.Usage) (int64, error)
	CountByOfferAndUser(ctx context.Context, offerID, userID uuid.UUID) (int, error)
}

type BookingRepository interface {
	Create(ctx context.Context, b *booking.Booking) (uuid.UUID, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	UpdateStatus(ctx context.Context, b *booking.Booking) error
}

type FavoriteRepository interface {
	Add(ctx context.Context, userID, restaurantID uuid.UUID) (bool, error)
	Remove(ctx context.Context, userID, restaurantID uuid.UUID) (bool, error)
}

type UserRepository interface {
	Create(ctx context.Context, params CreateUserParams) (uuid.UUID, error)
	UpdateLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
}

type CreateUserParams struct {
	Email        string
	PasswordHash string
	Role         string
	RestaurantID *uuid.UUID
}
