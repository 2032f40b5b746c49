//go:build unit || e2e

package builder

import (
	"time"

	domoffer "airdine/internal/domain/offer"

	"github.com/google/uuid"
)

type OfferBuilder struct {
	ID                   uuid.UUID
	RestaurantID         uuid.UUID
	Title                string
	Description          string
	OfferType            domoffer.Type
	PercentOff           *float64
	AmountOffCents       *int64
	ValidFrom            time.Time
	ValidUntil           time.Time
	ValidDays            []string
	MinimumOrderCents    *int64
	MaximumDiscountCents *int64
	MaxUses              *int32
	MaxUsesPerUser       int32
	CurrentUses          int32
	IsActive             bool
	IsFeatured           bool
}

func NewOfferBuilder() *OfferBuilder {
	percent := 20.0
	now := time.Now()
	return &OfferBuilder{
		ID:             uuid.New(),
		RestaurantID:   uuid.New(),
		Title:          "Weekday Lunch Deal",
		Description:    "20% off lunch mains",
		OfferType:      domoffer.TypePercentage,
		PercentOff:     &percent,
		ValidFrom:      now.Add(-24 * time.Hour),
		ValidUntil:     now.Add(30 * 24 * time.Hour),
		MaxUsesPerUser: 1,
		IsActive:       true,
	}
}

func (b *OfferBuilder) With(mutate func(*OfferBuilder)) *OfferBuilder {
	mutate(b)
	return b
}

func (b *OfferBuilder) BuildDomain() (*domoffer.Offer, error) {
	discount, err := domoffer.NewDiscount(b.OfferType, b.PercentOff, b.AmountOffCents)
	if err != nil {
		return nil, err
	}
	return domoffer.NewOffer(
		b.ID,
		b.RestaurantID,
		b.Title,
		b.Description,
		discount,
		b.ValidFrom,
		b.ValidUntil,
		b.ValidDays,
		b.MinimumOrderCents,
		b.MaximumDiscountCents,
		b.MaxUses,
		b.MaxUsesPerUser,
	)
}

// BuildReconstructed skips creation validation and honours CurrentUses,
// IsActive and IsFeatured, for tests exercising persisted state.
func (b *OfferBuilder) BuildReconstructed() *domoffer.Offer {
	discount, err := domoffer.NewDiscount(b.OfferType, b.PercentOff, b.AmountOffCents)
	if err != nil {
		panic(err)
	}
	now := time.Now()
	return domoffer.ReconstructOffer(
		b.ID,
		b.RestaurantID,
		b.Title,
		b.Description,
		discount,
		b.ValidFrom,
		b.ValidUntil,
		b.ValidDays,
		b.MinimumOrderCents,
		b.MaximumDiscountCents,
		b.MaxUses,
		b.MaxUsesPerUser,
		b.CurrentUses,
		b.IsActive,
		b.IsFeatured,
		nil,
		nil,
		now,
		now,
	)
}

type ActivationBuilder struct {
	ID        uuid.UUID
	OfferID   uuid.UUID
	UserID    uuid.UUID
	Code      domoffer.Code
	Status    domoffer.ActivationStatus
	CreatedAt time.Time
	ExpiresAt time.Time
}

func NewActivationBuilder() *ActivationBuilder {
	now := time.Now()
	return &ActivationBuilder{
		ID:        uuid.New(),
		OfferID:   uuid.New(),
		UserID:    uuid.New(),
		Code:      domoffer.Code("A1B2C3"),
		Status:    domoffer.ActivationPending,
		CreatedAt: now,
		ExpiresAt: now.Add(2 * time.Minute),
	}
}

func (b *ActivationBuilder) With(mutate func(*ActivationBuilder)) *ActivationBuilder {
	mutate(b)
	return b
}

func (b *ActivationBuilder) BuildDomain() *domoffer.Activation {
	return domoffer.ReconstructActivation(
		b.ID,
		b.OfferID,
		b.UserID,
		b.Code,
		b.Status,
		b.CreatedAt,
		b.ExpiresAt,
		nil,
		nil,
	)
}
