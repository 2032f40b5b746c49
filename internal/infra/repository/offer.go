package repository

import (
	"context"

	"airdine/internal/domain/offer"
	"airdine/internal/infra"
	"airdine/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type OfferRepository struct {
	db infra.DBTX
}

func NewOfferRepository(db infra.DBTX) *OfferRepository {
	return &OfferRepository{db: db}
}

const offerColumns = `
	id, restaurant_id, title, description, offer_type, percent_off,
	amount_off_cents, valid_from, valid_until, valid_days,
	minimum_order_cents, maximum_discount_cents, max_uses,
	max_uses_per_user, current_uses, is_active, is_featured,
	terms, image_url, created_at, updated_at`

const findOfferForUpdateSQL = `
	SELECT` + offerColumns + `
	FROM offers
	WHERE id = $1
	FOR UPDATE`

func (r *OfferRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*offer.Offer, error) {
	row := r.db.QueryRow(ctx, findOfferForUpdateSQL, id)

	o, err := scanOffer(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("offer not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find offer for update", err)
	}
	return o, nil
}

// TryIncrementUses is the atomic redemption counter: the WHERE clause keeps
// the bump and the cap check in one statement so concurrent redemptions
// cannot oversell a limited offer.
const tryIncrementUsesSQL = `
	UPDATE offers
	SET current_uses = current_uses + 1, updated_at = now()
	WHERE id = $1
	  AND is_active
	  AND (max_uses IS NULL OR current_uses < max_uses)`

func (r *OfferRepository) TryIncrementUses(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, tryIncrementUsesSQL, id)
	if err != nil {
		return false, infra.WrapRepoErr("failed to increment offer uses", err)
	}
	return tag.RowsAffected() == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOffer(row rowScanner) (*offer.Offer, error) {
	var (
		id                   uuid.UUID
		restaurantID         uuid.UUID
		title                string
		description          string
		offerType            string
		percentOff           pgtype.Numeric
		amountOffCents       pgtype.Int8
		validFrom            pgtype.Timestamptz
		validUntil           pgtype.Timestamptz
		validDays            []string
		minimumOrderCents    pgtype.Int8
		maximumDiscountCents pgtype.Int8
		maxUses              pgtype.Int4
		maxUsesPerUser       int32
		currentUses          int32
		isActive             bool
		isFeatured           bool
		terms                pgtype.Text
		imageURL             pgtype.Text
		createdAt            pgtype.Timestamptz
		updatedAt            pgtype.Timestamptz
	)

	if err := row.Scan(
		&id, &restaurantID, &title, &description, &offerType, &percentOff,
		&amountOffCents, &validFrom, &validUntil, &validDays,
		&minimumOrderCents, &maximumDiscountCents, &maxUses,
		&maxUsesPerUser, &currentUses, &isActive, &isFeatured,
		&terms, &imageURL, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	percent, err := pgconv.Float64PtrFromNumeric(percentOff)
	if err != nil {
		return nil, err
	}

	typ, err := offer.NewType(offerType)
	if err != nil {
		return nil, err
	}
	discount, err := offer.NewDiscount(typ, percent, pgconv.Int64PtrFromPgtype(amountOffCents))
	if err != nil {
		return nil, err
	}

	return offer.ReconstructOffer(
		id,
		restaurantID,
		title,
		description,
		discount,
		validFrom.Time,
		validUntil.Time,
		validDays,
		pgconv.Int64PtrFromPgtype(minimumOrderCents),
		pgconv.Int64PtrFromPgtype(maximumDiscountCents),
		pgconv.Int32PtrFromPgtype(maxUses),
		maxUsesPerUser,
		currentUses,
		isActive,
		isFeatured,
		pgconv.StringPtrFromPgtype(terms),
		pgconv.StringPtrFromPgtype(imageURL),
		createdAt.Time,
		updatedAt.Time,
	), nil
}
