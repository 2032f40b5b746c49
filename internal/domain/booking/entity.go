package booking

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrBookingNotActive = errors.New("booking is not active")
	ErrBookingNotEnded  = errors.New("booking has not ended yet")
)

type RestaurantSpec struct {
	ID          uuid.UUID
	LeadTimeMin int
}

type Booking struct {
	id           uuid.UUID
	restaurantID uuid.UUID
	userID       uuid.UUID
	timeSlot     TimeSlot
	partySize    PartySize
	status       Status
	note         Note
	createdAt    time.Time
	updatedAt    time.Time
}

func NewBooking(
	now time.Time,
	restaurant RestaurantSpec,
	userID uuid.UUID,
	slot TimeSlot,
	partySize PartySize,
	note Note,
) (*Booking, error) {
	lead := restaurant.LeadTimeMin
	if lead < 0 {
		lead = 0
	}
	if err := slot.ValidateLeadTimeAt(now, lead); err != nil {
		return nil, err
	}

	return &Booking{
		id:           uuid.New(),
		restaurantID: restaurant.ID,
		userID:       userID,
		timeSlot:     slot,
		partySize:    partySize,
		status:       StatusConfirmed,
		note:         note,
	}, nil
}

func ReconstructBooking(
	id, restaurantID, userID uuid.UUID,
	timeSlot TimeSlot,
	partySize PartySize,
	status Status,
	note Note,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:           id,
		restaurantID: restaurantID,
		userID:       userID,
		timeSlot:     timeSlot,
		partySize:    partySize,
		status:       status,
		note:         note,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (b *Booking) IsActive() bool {
	return b.status == StatusConfirmed
}

func (b *Booking) HasEnded(now time.Time) bool {
	return now.After(b.timeSlot.End())
}

// Cancel withdraws a confirmed booking before it takes place.
func (b *Booking) Cancel() error {
	if b.status != StatusConfirmed {
		return ErrBookingNotActive
	}
	b.status = StatusCancelled
	return nil
}

// Complete closes out a confirmed booking once its slot has passed.
func (b *Booking) Complete(now time.Time) error {
	if b.status != StatusConfirmed {
		return ErrBookingNotActive
	}
	if !b.HasEnded(now) {
		return ErrBookingNotEnded
	}
	b.status = StatusCompleted
	return nil
}

func (b *Booking) ID() uuid.UUID           { return b.id }
func (b *Booking) RestaurantID() uuid.UUID { return b.restaurantID }
func (b *Booking) UserID() uuid.UUID       { return b.userID }
func (b *Booking) TimeSlot() TimeSlot      { return b.timeSlot }
func (b *Booking) PartySize() PartySize    { return b.partySize }
func (b *Booking) Status() Status          { return b.status }
func (b *Booking) Note() Note              { return b.note }
func (b *Booking) CreatedAt() time.Time    { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time    { return b.updatedAt }
