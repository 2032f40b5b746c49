package offer

import (
	"time"

	"github.com/google/uuid"
)

// Usage is one row of the per-user ledger. Both redeemed and swept-expired
// activations produce entries; the per-user cap counts every status.
type Usage struct {
	id            uuid.UUID
	offerID       uuid.UUID
	userID        uuid.UUID
	activationID  *uuid.UUID
	status        UsageStatus
	usedAt        time.Time
	orderCents    int64
	discountCents int64
}

// NewRedeemedUsage records a successful redemption at now, together with
// the order amount the code was applied to and the discount it earned.
// Both are zero when the redemption is not tied to an order.
func NewRedeemedUsage(id uuid.UUID, a *Activation, now time.Time, orderCents, discountCents int64) Usage {
	activationID := a.ID()
	return Usage{
		id:            id,
		offerID:       a.OfferID(),
		userID:        a.UserID(),
		activationID:  &activationID,
		status:        UsageUsed,
		usedAt:        now,
		orderCents:    orderCents,
		discountCents: discountCents,
	}
}

// NewExpiredUsage records an activation the sweeper expired. The ledger
// timestamp is the moment the code stopped being usable, not sweep time.
func NewExpiredUsage(id uuid.UUID, a *Activation) Usage {
	activationID := a.ID()
	return Usage{
		id:           id,
		offerID:      a.OfferID(),
		userID:       a.UserID(),
		activationID: &activationID,
		status:       UsageExpired,
		usedAt:       a.ExpiresAt(),
	}
}

func (u Usage) ID() uuid.UUID            { return u.id }
func (u Usage) OfferID() uuid.UUID       { return u.offerID }
func (u Usage) UserID() uuid.UUID        { return u.userID }
func (u Usage) ActivationID() *uuid.UUID { return u.activationID }
func (u Usage) Status() UsageStatus      { return u.status }
func (u Usage) UsedAt() time.Time        { return u.usedAt }
func (u Usage) OrderCents() int64        { return u.orderCents }
func (u Usage) DiscountCents() int64     { return u.discountCents }
