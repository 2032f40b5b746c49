package repository

import (
	"context"

	"airdine/internal/domain/offer"
	"airdine/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UsageRepository struct {
	db infra.DBTX
}

func NewUsageRepository(db infra.DBTX) *UsageRepository {
	return &UsageRepository{db: db}
}

// The partial unique index on activation_id makes the ledger idempotent:
// a second insert for the same activation is a no-op, not an error.
const insertUsageSQL = `
	INSERT INTO offer_usages (
		id, offer_id, user_id, activation_id, status, used_at,
		order_cents, discount_cents
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (activation_id) WHERE activation_id IS NOT NULL DO NOTHING`

func (r *UsageRepository) Insert(ctx context.Context, u offer.Usage) (bool, error) {
	tag, err := r.db.Exec(ctx, insertUsageSQL,
		u.ID(), u.OfferID(), u.UserID(), u.ActivationID(),
		u.Status().String(), u.UsedAt(), u.OrderCents(), u.DiscountCents(),
	)
	if err != nil {
		return false, infra.WrapRepoErr("failed to insert usage", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *UsageRepository) InsertBatch(ctx context.Context, usages []offer.Usage) (int64, error) {
	if len(usages) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, u := range usages {
		batch.Queue(insertUsageSQL,
			u.ID(), u.OfferID(), u.UserID(), u.ActivationID(),
			u.Status().String(), u.UsedAt(), u.OrderCents(), u.DiscountCents(),
		)
	}

	var inserted int64
	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range usages {
		tag, err := results.Exec()
		if err != nil {
			return inserted, infra.WrapRepoErr("failed to insert usage batch", err)
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}

// CountByOfferAndUser counts every ledger status; expired attempts consume
// the per-user allowance just like redeemed ones.
const countUsagesSQL = `
	SELECT count(*)
	FROM offer_usages
	WHERE offer_id = $1 AND user_id = $2`

func (r *UsageRepository) CountByOfferAndUser(ctx context.Context, offerID, userID uuid.UUID) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, countUsagesSQL, offerID, userID).Scan(&count); err != nil {
		return 0, infra.WrapRepoErr("failed to count offer usages", err)
	}
	return count, nil
}
