package offer

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrActivationExpired         = errors.New("activation code has expired")
	ErrActivationAlreadyRedeemed = errors.New("activation code was already redeemed")
	ErrActivationNotValid        = errors.New("activation code is not valid")
	ErrActivationNotPending      = errors.New("activation is not pending")
)

// Activation is a single attempt by a user to use an offer. It is created
// pending with a short TTL and either gets redeemed by restaurant staff,
// cancelled by its owner, or swept to expired once the TTL passes.
type Activation struct {
	id         uuid.UUID
	offerID    uuid.UUID
	userID     uuid.UUID
	code       Code
	status     ActivationStatus
	createdAt  time.Time
	expiresAt  time.Time
	redeemedAt *time.Time
	redeemedBy *uuid.UUID
}

func NewActivation(id, offerID, userID uuid.UUID, code Code, now time.Time, ttl time.Duration) *Activation {
	return &Activation{
		id:        id,
		offerID:   offerID,
		userID:    userID,
		code:      code,
		status:    ActivationPending,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
}

func ReconstructActivation(
	id, offerID, userID uuid.UUID,
	code Code,
	status ActivationStatus,
	createdAt, expiresAt time.Time,
	redeemedAt *time.Time,
	redeemedBy *uuid.UUID,
) *Activation {
	return &Activation{
		id:         id,
		offerID:    offerID,
		userID:     userID,
		code:       code,
		status:     status,
		createdAt:  createdAt,
		expiresAt:  expiresAt,
		redeemedAt: redeemedAt,
		redeemedBy: redeemedBy,
	}
}

// IsExpiredAt reports whether the TTL has passed, regardless of status.
func (a *Activation) IsExpiredAt(now time.Time) bool {
	return !now.Before(a.expiresAt)
}

// ValidateRedeemableAt checks whether the code can be redeemed at now.
func (a *Activation) ValidateRedeemableAt(now time.Time) error {
	switch a.status {
	case ActivationRedeemed:
		return ErrActivationAlreadyRedeemed
	case ActivationExpired, ActivationCancelled:
		return ErrActivationNotValid
	}
	if a.IsExpiredAt(now) {
		return ErrActivationExpired
	}
	return nil
}

// Redeem transitions a pending, unexpired activation to redeemed, recording
// the redeeming staff member.
func (a *Activation) Redeem(now time.Time, staffID uuid.UUID) error {
	if err := a.ValidateRedeemableAt(now); err != nil {
		return err
	}
	a.status = ActivationRedeemed
	a.redeemedAt = &now
	a.redeemedBy = &staffID
	return nil
}

// MarkExpired transitions a pending activation whose TTL has passed.
func (a *Activation) MarkExpired(now time.Time) error {
	if a.status != ActivationPending {
		return ErrActivationNotPending
	}
	if !a.IsExpiredAt(now) {
		return ErrActivationNotValid
	}
	a.status = ActivationExpired
	return nil
}

// Cancel lets the owner withdraw a still-pending code. A cancelled code
// never counted as a usage attempt, so no ledger entry follows.
func (a *Activation) Cancel() error {
	if a.status != ActivationPending {
		return ErrActivationNotPending
	}
	a.status = ActivationCancelled
	return nil
}

func (a *Activation) ID() uuid.UUID            { return a.id }
func (a *Activation) OfferID() uuid.UUID       { return a.offerID }
func (a *Activation) UserID() uuid.UUID        { return a.userID }
func (a *Activation) Code() Code               { return a.code }
func (a *Activation) Status() ActivationStatus { return a.status }
func (a *Activation) CreatedAt() time.Time     { return a.createdAt }
func (a *Activation) ExpiresAt() time.Time     { return a.expiresAt }
func (a *Activation) RedeemedAt() *time.Time   { return a.redeemedAt }
func (a *Activation) RedeemedBy() *uuid.UUID   { return a.redeemedBy }
