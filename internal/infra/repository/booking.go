package repository

import (
	"context"

	dombooking "airdine/internal/domain/booking"
	"airdine/internal/infra"
	"airdine/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type BookingRepository struct {
	db infra.DBTX
}

func NewBookingRepository(db infra.DBTX) *BookingRepository {
	return &BookingRepository{db: db}
}

const createBookingSQL = `
	INSERT INTO bookings (id, restaurant_id, user_id, slot, party_size, status, note)
	VALUES ($1, $2, $3, $4::tstzrange, $5, $6, $7)
	RETURNING id`

func (r *BookingRepository) Create(ctx context.Context, b *dombooking.Booking) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx, createBookingSQL,
		b.ID(), b.RestaurantID(), b.UserID(),
		b.TimeSlot().ToTstzrange(), b.PartySize().Value(),
		b.Status().String(), b.Note().String(),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create booking", err)
	}
	return id, nil
}

const findBookingForUpdateSQL = `
	SELECT id, restaurant_id, user_id,
	       lower(slot), upper(slot), party_size, status, note,
	       created_at, updated_at
	FROM bookings
	WHERE id = $1
	FOR UPDATE`

func (r *BookingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*dombooking.Booking, error) {
	var (
		bookingID    uuid.UUID
		restaurantID uuid.UUID
		userID       uuid.UUID
		slotStart    pgtype.Timestamptz
		slotEnd      pgtype.Timestamptz
		partySize    int
		status       string
		note         string
		createdAt    pgtype.Timestamptz
		updatedAt    pgtype.Timestamptz
	)

	err := r.db.QueryRow(ctx, findBookingForUpdateSQL, id).Scan(
		&bookingID, &restaurantID, &userID,
		&slotStart, &slotEnd, &partySize, &status, &note,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking for update", err)
	}

	slot, err := dombooking.NewTimeSlot(slotStart.Time, slotEnd.Time)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid booking slot in storage", err)
	}
	size, err := dombooking.NewPartySize(partySize)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid party size in storage", err)
	}

	return dombooking.ReconstructBooking(
		bookingID, restaurantID, userID,
		slot, size,
		dombooking.Status(status),
		dombooking.NewNote(note),
		createdAt.Time, updatedAt.Time,
	), nil
}

const updateBookingStatusSQL = `
	UPDATE bookings
	SET status = $2, updated_at = now()
	WHERE id = $1`

func (r *BookingRepository) UpdateStatus(ctx context.Context, b *dombooking.Booking) error {
	tag, err := r.db.Exec(ctx, updateBookingStatusSQL, b.ID(), b.Status().String())
	if err != nil {
		return infra.WrapRepoErr("failed to update booking status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return nil
}
