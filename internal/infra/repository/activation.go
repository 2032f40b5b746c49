package repository

import (
	"context"
	"time"

	"airdine/internal/domain/offer"
	"airdine/internal/infra"
	"airdine/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type ActivationRepository struct {
	db infra.DBTX
}

func NewActivationRepository(db infra.DBTX) *ActivationRepository {
	return &ActivationRepository{db: db}
}

// ON CONFLICT DO NOTHING keeps a unique violation (code collision or a lost
// race on the one-pending-per-user slot) from aborting the surrounding
// transaction, so callers can re-check and retry inside it.
const createActivationSQL = `
	INSERT INTO offer_activations (
		id, offer_id, user_id, code, status, created_at, expires_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT DO NOTHING`

func (r *ActivationRepository) Create(ctx context.Context, a *offer.Activation) error {
	tag, err := r.db.Exec(ctx, createActivationSQL,
		a.ID(), a.OfferID(), a.UserID(), a.Code().String(),
		a.Status().String(), a.CreatedAt(), a.ExpiresAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create activation", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("activation conflicts with an existing row", nil, infra.KindDuplicateKey)
	}
	return nil
}

const activationColumns = `
	id, offer_id, user_id, code, status, created_at, expires_at,
	redeemed_at, redeemed_by`

const findActivationByIDForUpdateSQL = `
	SELECT` + activationColumns + `
	FROM offer_activations
	WHERE id = $1
	FOR UPDATE`

func (r *ActivationRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*offer.Activation, error) {
	row := r.db.QueryRow(ctx, findActivationByIDForUpdateSQL, id)

	a, err := scanActivation(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("activation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find activation for update", err)
	}
	return a, nil
}

const findActivationByCodeForUpdateSQL = `
	SELECT` + activationColumns + `
	FROM offer_activations
	WHERE code = $1
	FOR UPDATE`

func (r *ActivationRepository) FindByCodeForUpdate(ctx context.Context, code offer.Code) (*offer.Activation, error) {
	row := r.db.QueryRow(ctx, findActivationByCodeForUpdateSQL, code.String())

	a, err := scanActivation(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("activation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find activation by code", err)
	}
	return a, nil
}

const findPendingByOfferAndUserSQL = `
	SELECT` + activationColumns + `
	FROM offer_activations
	WHERE offer_id = $1 AND user_id = $2 AND status = 'pending'
	FOR UPDATE`

func (r *ActivationRepository) FindPendingByOfferAndUser(ctx context.Context, offerID, userID uuid.UUID) (*offer.Activation, error) {
	row := r.db.QueryRow(ctx, findPendingByOfferAndUserSQL, offerID, userID)

	a, err := scanActivation(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("pending activation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find pending activation", err)
	}
	return a, nil
}

const updateActivationStatusSQL = `
	UPDATE offer_activations
	SET status = $2, redeemed_at = $3, redeemed_by = $4
	WHERE id = $1`

func (r *ActivationRepository) UpdateStatus(ctx context.Context, a *offer.Activation) error {
	tag, err := r.db.Exec(ctx, updateActivationStatusSQL,
		a.ID(), a.Status().String(),
		pgconv.TimePtrToPgtype(a.RedeemedAt()),
		pgconv.UUIDPtrToPgtype(a.RedeemedBy()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update activation status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("activation not found", nil, infra.KindNotFound)
	}
	return nil
}

// SKIP LOCKED lets concurrent sweeps partition the backlog instead of
// serializing on the same rows.
const lockExpiredPendingSQL = `
	SELECT` + activationColumns + `
	FROM offer_activations
	WHERE status = 'pending' AND expires_at <= $1
	ORDER BY expires_at
	LIMIT $2
	FOR UPDATE SKIP LOCKED`

func (r *ActivationRepository) LockExpiredPending(ctx context.Context, now time.Time, limit int32) ([]*offer.Activation, error) {
	rows, err := r.db.Query(ctx, lockExpiredPendingSQL, now, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to lock expired activations", err)
	}
	defer rows.Close()

	var result []*offer.Activation
	for rows.Next() {
		a, err := scanActivation(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan expired activation", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read expired activations", err)
	}
	return result, nil
}

const markExpiredByIDsSQL = `
	UPDATE offer_activations
	SET status = 'expired'
	WHERE id = ANY($1) AND status = 'pending'`

func (r *ActivationRepository) MarkExpiredByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx, markExpiredByIDsSQL, ids)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to mark activations expired", err)
	}
	return tag.RowsAffected(), nil
}

func scanActivation(row rowScanner) (*offer.Activation, error) {
	var (
		id         uuid.UUID
		offerID    uuid.UUID
		userID     uuid.UUID
		code       string
		status     string
		createdAt  pgtype.Timestamptz
		expiresAt  pgtype.Timestamptz
		redeemedAt pgtype.Timestamptz
		redeemedBy pgtype.UUID
	)

	if err := row.Scan(
		&id, &offerID, &userID, &code, &status,
		&createdAt, &expiresAt, &redeemedAt, &redeemedBy,
	); err != nil {
		return nil, err
	}

	return offer.ReconstructActivation(
		id, offerID, userID,
		offer.Code(code),
		offer.ActivationStatus(status),
		createdAt.Time,
		expiresAt.Time,
		pgconv.TimePtrFromPgtype(redeemedAt),
		pgconv.UUIDPtrFromPgtype(redeemedBy),
	), nil
}
