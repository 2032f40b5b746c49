package readstore

import (
	"context"
	"time"

	"airdine/internal/infra"
	"airdine/internal/pkg/pgconv"
	"airdine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type BookingReadStore struct {
	db infra.DBTX
}

func NewBookingReadStore(db infra.DBTX) *BookingReadStore {
	return &BookingReadStore{db: db}
}

const bookingViewColumns = `
	SELECT b.id, b.restaurant_id, r.name, b.user_id,
	       lower(b.slot), upper(b.slot),
	       b.party_size, b.status, nullif(b.note, ''),
	       b.created_at, b.updated_at
	FROM bookings b
	JOIN restaurants r ON r.id = b.restaurant_id`

const bookingByIDSQL = bookingViewColumns + `
	WHERE b.id = $1`

func (s *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	view, err := scanBookingView(s.db.QueryRow(ctx, bookingByIDSQL, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking by ID", err)
	}
	return view, nil
}

const bookingsByUserSQL = bookingViewColumns + `
	WHERE b.user_id = $1
	ORDER BY lower(b.slot) DESC
	LIMIT $2`

func (s *BookingReadStore) FindByUserID(ctx context.Context, userID uuid.UUID, limit int32) ([]*queries.BookingView, error) {
	rows, err := s.db.Query(ctx, bookingsByUserSQL, userID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list bookings", err)
	}
	defer rows.Close()

	var result []*queries.BookingView
	for rows.Next() {
		view, err := scanBookingView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking", err)
		}
		result = append(result, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read bookings", err)
	}
	return result, nil
}

func scanBookingView(row pgx.Row) (*queries.BookingView, error) {
	var (
		v         queries.BookingView
		slotStart pgtype.Timestamptz
		slotEnd   pgtype.Timestamptz
		note      pgtype.Text
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	if err := row.Scan(
		&v.ID, &v.RestaurantID, &v.RestaurantName, &v.UserID,
		&slotStart, &slotEnd, &v.PartySize, &v.Status, &note,
		&createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	v.Slot = slotStart.Time.Format(time.RFC3339) + "/" + slotEnd.Time.Format(time.RFC3339)
	v.Note = pgconv.StringPtrFromPgtype(note)
	v.CreatedAt = createdAt.Time
	v.UpdatedAt = updatedAt.Time
	return &v, nil
}
