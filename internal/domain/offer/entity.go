package offer

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidTitle       = errors.New("offer title cannot be empty")
	ErrInvalidWindow      = errors.New("offer validity window must start before it ends")
	ErrInvalidUsesLimit   = errors.New("offer usage limits must be positive")
	ErrInvalidValidDay    = errors.New("invalid weekday name in valid days")
	ErrMinimumOrderNotMet = errors.New("order amount is below the offer minimum")
)

var weekdayNames = map[string]struct{}{
	"monday": {}, "tuesday": {}, "wednesday": {}, "thursday": {},
	"friday": {}, "saturday": {}, "sunday": {},
}

type Offer struct {
	id                   uuid.UUID
	restaurantID         uuid.UUID
	title                string
	description          string
	discount             Discount
	validFrom            time.Time
	validUntil           time.Time
	validDays            []string
	minimumOrderCents    *int64
	maximumDiscountCents *int64
	maxUses              *int32
	maxUsesPerUser       int32
	currentUses          int32
	isActive             bool
	isFeatured           bool
	terms                *string
	imageURL             *string
	createdAt            time.Time
	updatedAt            time.Time
}

func NewOffer(
	id uuid.UUID,
	restaurantID uuid.UUID,
	title string,
	description string,
	discount Discount,
	validFrom, validUntil time.Time,
	validDays []string,
	minimumOrderCents *int64,
	maximumDiscountCents *int64,
	maxUses *int32,
	maxUsesPerUser int32,
) (*Offer, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrInvalidTitle
	}
	if !validFrom.Before(validUntil) {
		return nil, ErrInvalidWindow
	}
	if maxUsesPerUser < 1 || (maxUses != nil && *maxUses < 1) {
		return nil, ErrInvalidUsesLimit
	}
	for _, d := range validDays {
		if _, ok := weekdayNames[strings.ToLower(d)]; !ok {
			return nil, ErrInvalidValidDay
		}
	}

	return &Offer{
		id:                   id,
		restaurantID:         restaurantID,
		title:                title,
		description:          description,
		discount:             discount,
		validFrom:            validFrom,
		validUntil:           validUntil,
		validDays:            normalizeDays(validDays),
		minimumOrderCents:    minimumOrderCents,
		maximumDiscountCents: maximumDiscountCents,
		maxUses:              maxUses,
		maxUsesPerUser:       maxUsesPerUser,
		isActive:             true,
	}, nil
}

// ReconstructOffer rebuilds an offer from persisted state without re-running
// creation validation.
func ReconstructOffer(
	id uuid.UUID,
	restaurantID uuid.UUID,
	title string,
	description string,
	discount Discount,
	validFrom, validUntil time.Time,
	validDays []string,
	minimumOrderCents *int64,
	maximumDiscountCents *int64,
	maxUses *int32,
	maxUsesPerUser int32,
	currentUses int32,
	isActive bool,
	isFeatured bool,
	terms *string,
	imageURL *string,
	createdAt, updatedAt time.Time,
) *Offer {
	return &Offer{
		id:                   id,
		restaurantID:         restaurantID,
		title:                title,
		description:          description,
		discount:             discount,
		validFrom:            validFrom,
		validUntil:           validUntil,
		validDays:            normalizeDays(validDays),
		minimumOrderCents:    minimumOrderCents,
		maximumDiscountCents: maximumDiscountCents,
		maxUses:              maxUses,
		maxUsesPerUser:       maxUsesPerUser,
		currentUses:          currentUses,
		isActive:             isActive,
		isFeatured:           isFeatured,
		terms:                terms,
		imageURL:             imageURL,
		createdAt:            createdAt,
		updatedAt:            updatedAt,
	}
}

func normalizeDays(days []string) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, strings.ToLower(d))
	}
	return out
}

// IsValidAt reports whether the offer can be activated at t: active,
// inside [validFrom, validUntil), on an allowed weekday, and under the
// global usage cap.
func (o *Offer) IsValidAt(t time.Time) bool {
	if !o.isActive {
		return false
	}
	if t.Before(o.validFrom) || !t.Before(o.validUntil) {
		return false
	}
	if !o.IsDayValidAt(t) {
		return false
	}
	return o.HasGlobalUsesLeft()
}

// IsDayValidAt reports whether t falls on an allowed weekday. An empty
// valid days list means every day is allowed.
func (o *Offer) IsDayValidAt(t time.Time) bool {
	if len(o.validDays) == 0 {
		return true
	}
	day := DayName(t)
	for _, d := range o.validDays {
		if d == day {
			return true
		}
	}
	return false
}

func (o *Offer) HasGlobalUsesLeft() bool {
	return o.maxUses == nil || o.currentUses < *o.maxUses
}

// CanUseWith reports whether a user with the given prior usage count (any
// ledger status) may activate the offer again.
func (o *Offer) CanUseWith(userUsageCount int) bool {
	return int32(userUsageCount) < o.maxUsesPerUser
}

// DiscountCentsFor computes the discount for an order amount, honouring the
// minimum order threshold and the maximum discount cap. Non-monetary offer
// types (bogo, combo, special) always yield zero.
func (o *Offer) DiscountCentsFor(orderCents int64) (int64, error) {
	if o.minimumOrderCents != nil && orderCents < *o.minimumOrderCents {
		return 0, ErrMinimumOrderNotMet
	}

	var amount int64
	switch o.discount.OfferType() {
	case TypePercentage:
		amount = int64(float64(orderCents) * (*o.discount.PercentOff() / 100.0))
	case TypeFixed:
		amount = *o.discount.AmountOffCents()
	default:
		return 0, nil
	}

	if o.maximumDiscountCents != nil && amount > *o.maximumDiscountCents {
		amount = *o.maximumDiscountCents
	}
	if amount > orderCents {
		amount = orderCents
	}
	return amount, nil
}

func (o *Offer) DiscountText() string {
	return o.discount.Text()
}

func (o *Offer) ID() uuid.UUID                { return o.id }
func (o *Offer) RestaurantID() uuid.UUID      { return o.restaurantID }
func (o *Offer) Title() string                { return o.title }
func (o *Offer) Description() string          { return o.description }
func (o *Offer) Discount() Discount           { return o.discount }
func (o *Offer) ValidFrom() time.Time         { return o.validFrom }
func (o *Offer) ValidUntil() time.Time        { return o.validUntil }
func (o *Offer) ValidDays() []string          { return o.validDays }
func (o *Offer) MinimumOrderCents() *int64    { return o.minimumOrderCents }
func (o *Offer) MaximumDiscountCents() *int64 { return o.maximumDiscountCents }
func (o *Offer) MaxUses() *int32              { return o.maxUses }
func (o *Offer) MaxUsesPerUser() int32        { return o.maxUsesPerUser }
func (o *Offer) CurrentUses() int32           { return o.currentUses }
func (o *Offer) IsActive() bool               { return o.isActive }
func (o *Offer) IsFeatured() bool             { return o.isFeatured }
func (o *Offer) Terms() *string               { return o.terms }
func (o *Offer) ImageURL() *string            { return o.imageURL }
func (o *Offer) CreatedAt() time.Time         { return o.createdAt }
func (o *Offer) UpdatedAt() time.Time         { return o.updatedAt }
