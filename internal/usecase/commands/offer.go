package commands

import (
	"context"
	"errors"
	"time"

	"airdine/internal/domain/offer"
	"airdine/internal/domain/user"
	"airdine/internal/infra"
	"airdine/internal/pkg/clock"
	"airdine/internal/pkg/config"
	"airdine/internal/pkg/errs"
	"airdine/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrOfferNotFound          = errs.New("offer not found")
	ErrOfferNotAvailable      = errs.New("offer is not currently available")
	ErrOfferExhausted         = errs.New("offer has reached its usage limit")
	ErrUsageLimitExceeded     = errs.New("per-user usage limit exceeded")
	ErrCodeGenerationFailed   = errs.New("could not generate a unique activation code")
	ErrActivationNotFound     = errs.New("activation not found")
	ErrActivationExpired      = errs.New("activation code has expired")
	ErrAlreadyRedeemed        = errs.New("activation code was already redeemed")
	ErrActivationNotValid     = errs.New("activation code is not valid")
	ErrActivationNotPending   = errs.New("activation is no longer pending")
	ErrMinimumOrderNotMet     = errs.New("order amount is below the offer minimum")
	ErrRedeemForbidden        = errs.New("not allowed to redeem codes for this offer")
	ErrCancelForbidden        = errs.New("not allowed to cancel this activation")
	ErrUsageRecordingConflict = errs.New("usage was already recorded for this activation")
)

// ActivationResult is the write-side outcome of Activate. Reused is set when
// the user already held a pending code for the offer and got it back instead
// of a fresh one.
type ActivationResult struct {
	ActivationID uuid.UUID
	OfferID      uuid.UUID
	Code         string
	Status       string
	CreatedAt    time.Time
	ExpiresAt    time.Time
	Reused       bool
}

type RedeemResult struct {
	ActivationID  uuid.UUID
	OfferID       uuid.UUID
	UserID        uuid.UUID
	DiscountText  string
	DiscountCents int64
	RedeemedAt    time.Time
}

// Redeemer carries the authenticated staff context for a redemption.
type Redeemer struct {
	ID           uuid.UUID
	Role         user.Role
	RestaurantID *uuid.UUID
}

type OfferCommands interface {
	Activate(ctx context.Context, offerID, userID uuid.UUID) (*ActivationResult, error)
	Redeem(ctx context.Context, code string, redeemer Redeemer, orderCents int64) (*RedeemResult, error)
	Cancel(ctx context.Context, activationID, userID uuid.UUID) error
}

type offerCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
	cfg   config.OffersConfig
}

func NewOfferCommands(uow shared.UnitOfWork, clk clock.Clock, cfg config.OffersConfig) OfferCommands {
	return &offerCommandsImpl{
		uow:   uow,
		clock: clk,
		cfg:   cfg,
	}
}

func (c *offerCommandsImpl) Activate(ctx context.Context, offerID, userID uuid.UUID) (*ActivationResult, error) {
	var result *ActivationResult

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := c.clock.Now()

		o, err := tx.Offers().FindByIDForUpdate(ctx, offerID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrOfferNotFound
			}
			return err
		}
		if !o.IsValidAt(now) {
			return ErrOfferNotAvailable
		}

		// An existing pending code is handed back rather than rejected, so
		// activate is idempotent while a code is outstanding.
		existing, err := tx.Activations().FindPendingByOfferAndUser(ctx, offerID, userID)
		if err == nil {
			if !existing.IsExpiredAt(now) {
				result = activationResult(existing, true)
				return nil
			}
			if err := c.expirePending(ctx, tx, existing, now); err != nil {
				return err
			}
		} else if !infra.IsKind(err, infra.KindNotFound) {
			return err
		}

		usageCount, err := tx.Usages().CountByOfferAndUser(ctx, offerID, userID)
		if err != nil {
			return err
		}
		if !o.CanUseWith(usageCount) {
			return ErrUsageLimitExceeded
		}

		a, reused, err := c.createWithFreshCode(ctx, tx, offerID, userID, now)
		if err != nil {
			return err
		}
		result = activationResult(a, reused)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// createWithFreshCode retries on code collisions; the retry budget is the
// only retry policy in this flow. A conflict on the one-pending-per-user
// slot means a concurrent activation won the race, so its code is handed
// back as a reuse instead of burning retries on it.
func (c *offerCommandsImpl) createWithFreshCode(
	ctx context.Context,
	tx shared.Tx,
	offerID, userID uuid.UUID,
	now time.Time,
) (*offer.Activation, bool, error) {
	for attempt := 0; attempt < c.cfg.CodeMaxAttempts; attempt++ {
		code, err := offer.GenerateCode(c.cfg.CodeLength)
		if err != nil {
			return nil, false, errs.Mark(err, ErrCodeGenerationFailed)
		}

		a := offer.NewActivation(uuid.New(), offerID, userID, code, now, c.cfg.ActivationTTL)
		err = tx.Activations().Create(ctx, a)
		if err == nil {
			return a, false, nil
		}
		if !infra.IsKind(err, infra.KindDuplicateKey) {
			return nil, false, err
		}
		existing, ferr := tx.Activations().FindPendingByOfferAndUser(ctx, offerID, userID)
		if ferr == nil {
			return existing, true, nil
		}
		if !infra.IsKind(ferr, infra.KindNotFound) {
			return nil, false, ferr
		}
	}
	return nil, false, ErrCodeGenerationFailed
}

func (c *offerCommandsImpl) Redeem(ctx context.Context, code string, redeemer Redeemer, orderCents int64) (*RedeemResult, error) {
	parsedCode, err := offer.NewCode(code)
	if err != nil {
		return nil, errs.Mark(err, ErrActivationNotValid)
	}

	var result *RedeemResult

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := c.clock.Now()

		a, err := tx.Activations().FindByCodeForUpdate(ctx, parsedCode)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrActivationNotFound
			}
			return err
		}

		o, err := tx.Offers().FindByIDForUpdate(ctx, a.OfferID())
		if err != nil {
			return err
		}

		if !redeemer.Role.CanRedeemCodes() {
			return ErrRedeemForbidden
		}
		// Staff redeem only for their own restaurant; admins for any.
		if redeemer.Role != user.RoleAdmin {
			if redeemer.RestaurantID == nil || *redeemer.RestaurantID != o.RestaurantID() {
				return ErrRedeemForbidden
			}
		}

		// A pending code past its TTL is settled here instead of waiting
		// for the sweeper.
		if a.Status() == offer.ActivationPending && a.IsExpiredAt(now) {
			if err := c.expirePending(ctx, tx, a, now); err != nil {
				return err
			}
			return ErrActivationExpired
		}

		if err := a.Redeem(now, redeemer.ID); err != nil {
			return mapActivationErr(err)
		}

		// The offer is re-validated at redemption time: the validity window
		// may have closed and other attempts may have consumed the user's
		// cap since the code was issued.
		if !o.IsValidAt(now) {
			return ErrOfferNotAvailable
		}
		usageCount, err := tx.Usages().CountByOfferAndUser(ctx, o.ID(), a.UserID())
		if err != nil {
			return err
		}
		if !o.CanUseWith(usageCount) {
			return ErrUsageLimitExceeded
		}

		// Zero means the redemption is not tied to an order; the ledger
		// then records zero amounts the way the sweeper does for expiries.
		var discountCents int64
		if orderCents > 0 {
			discountCents, err = o.DiscountCentsFor(orderCents)
			if err != nil {
				if errors.Is(err, offer.ErrMinimumOrderNotMet) {
					return ErrMinimumOrderNotMet
				}
				return err
			}
		}

		ok, err := tx.Offers().TryIncrementUses(ctx, o.ID())
		if err != nil {
			return err
		}
		if !ok {
			return ErrOfferExhausted
		}

		if err := tx.Activations().UpdateStatus(ctx, a); err != nil {
			return err
		}

		inserted, err := tx.Usages().Insert(ctx, offer.NewRedeemedUsage(uuid.New(), a, now, orderCents, discountCents))
		if err != nil {
			return err
		}
		if !inserted {
			return ErrUsageRecordingConflict
		}

		result = &RedeemResult{
			ActivationID:  a.ID(),
			OfferID:       o.ID(),
			UserID:        a.UserID(),
			DiscountText:  o.DiscountText(),
			DiscountCents: discountCents,
			RedeemedAt:    now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *offerCommandsImpl) Cancel(ctx context.Context, activationID, userID uuid.UUID) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		a, err := tx.Activations().FindByIDForUpdate(ctx, activationID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrActivationNotFound
			}
			return err
		}
		if a.UserID() != userID {
			return ErrCancelForbidden
		}
		if err := a.Cancel(); err != nil {
			return mapActivationErr(err)
		}
		return tx.Activations().UpdateStatus(ctx, a)
	})
}

// expirePending settles a single stale activation: status flip plus ledger
// entry, inside the caller's transaction.
func (c *offerCommandsImpl) expirePending(ctx context.Context, tx shared.Tx, a *offer.Activation, now time.Time) error {
	if err := a.MarkExpired(now); err != nil {
		return mapActivationErr(err)
	}
	if err := tx.Activations().UpdateStatus(ctx, a); err != nil {
		return err
	}
	if _, err := tx.Usages().Insert(ctx, offer.NewExpiredUsage(uuid.New(), a)); err != nil {
		return err
	}
	return nil
}

func activationResult(a *offer.Activation, reused bool) *ActivationResult {
	return &ActivationResult{
		ActivationID: a.ID(),
		OfferID:      a.OfferID(),
		Code:         a.Code().String(),
		Status:       a.Status().String(),
		CreatedAt:    a.CreatedAt(),
		ExpiresAt:    a.ExpiresAt(),
		Reused:       reused,
	}
}

func mapActivationErr(err error) error {
	switch {
	case errors.Is(err, offer.ErrActivationExpired):
		return errs.Mark(err, ErrActivationExpired)
	case errors.Is(err, offer.ErrActivationAlreadyRedeemed):
		return errs.Mark(err, ErrAlreadyRedeemed)
	case errors.Is(err, offer.ErrActivationNotPending):
		return errs.Mark(err, ErrActivationNotPending)
	case errors.Is(err, offer.ErrActivationNotValid):
		return errs.Mark(err, ErrActivationNotValid)
	default:
		return err
	}
}
