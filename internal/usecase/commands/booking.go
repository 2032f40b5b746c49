package commands

import (
	"context"
	"errors"
	"time"

	"airdine/internal/domain/booking"
	"airdine/internal/infra"
	"airdine/internal/pkg/clock"
	"airdine/internal/pkg/errs"
	"airdine/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrRestaurantNotFound   = errs.New("restaurant not found")
	ErrRestaurantInactive   = errs.New("restaurant is not accepting bookings")
	ErrBookingNotFound      = errs.New("booking not found")
	ErrBookingForbidden     = errs.New("not allowed to modify this booking")
	ErrBookingValidation    = errs.New("booking validation failed")
	ErrBookingNotCancelable = errs.New("booking can no longer be cancelled")
)

type CreateBookingInput struct {
	RestaurantID uuid.UUID
	StartsAt     time.Time
	EndsAt       time.Time
	PartySize    int
	Note         string
}

type BookingCommands interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateBookingInput) (uuid.UUID, error)
	Cancel(ctx context.Context, bookingID, userID uuid.UUID) error
}

type bookingCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewBookingCommands(uow shared.UnitOfWork, clk clock.Clock) BookingCommands {
	return &bookingCommandsImpl{uow: uow, clock: clk}
}

func (c *bookingCommandsImpl) Create(ctx context.Context, userID uuid.UUID, input CreateBookingInput) (uuid.UUID, error) {
	slot, err := booking.NewTimeSlot(input.StartsAt, input.EndsAt)
	if err != nil {
		return uuid.Nil, errs.Mark(err, ErrBookingValidation)
	}
	partySize, err := booking.NewPartySize(input.PartySize)
	if err != nil {
		return uuid.Nil, errs.Mark(err, ErrBookingValidation)
	}

	var id uuid.UUID
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		restaurant, err := tx.Reads().RestaurantByID(ctx, input.RestaurantID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrRestaurantNotFound
			}
			return err
		}
		if !restaurant.IsActive {
			return ErrRestaurantInactive
		}

		b, err := booking.NewBooking(
			c.clock.Now(),
			booking.RestaurantSpec{ID: restaurant.ID, LeadTimeMin: restaurant.LeadTimeMin},
			userID,
			slot,
			partySize,
			booking.NewNote(input.Note),
		)
		if err != nil {
			return errs.Mark(err, ErrBookingValidation)
		}

		id, err = tx.Bookings().Create(ctx, b)
		return err
	})
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (c *bookingCommandsImpl) Cancel(ctx context.Context, bookingID, userID uuid.UUID) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := tx.Bookings().FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrBookingNotFound
			}
			return err
		}
		if b.UserID() != userID {
			return ErrBookingForbidden
		}
		if err := b.Cancel(); err != nil {
			if errors.Is(err, booking.ErrBookingNotActive) {
				return errs.Mark(err, ErrBookingNotCancelable)
			}
			return err
		}
		return tx.Bookings().UpdateStatus(ctx, b)
	})
}
