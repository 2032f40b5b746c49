//go:build unit

package booking_test

import (
	"testing"
	"time"

	"airdine/internal/domain/booking"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSlot(t *testing.T, start, end time.Time) booking.TimeSlot {
	t.Helper()
	slot, err := booking.NewTimeSlot(start, end)
	require.NoError(t, err)
	return slot
}

func TestNewBooking(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	restaurant := booking.RestaurantSpec{ID: uuid.New(), LeadTimeMin: 60}
	userID := uuid.New()
	party, err := booking.NewPartySize(4)
	require.NoError(t, err)

	t.Run("confirmed when lead time met", func(t *testing.T) {
		slot := mustSlot(t, now.Add(2*time.Hour), now.Add(4*time.Hour))

		b, err := booking.NewBooking(now, restaurant, userID, slot, party, booking.NewNote(""))
		require.NoError(t, err)

		assert.Equal(t, booking.StatusConfirmed, b.Status())
		assert.Equal(t, restaurant.ID, b.RestaurantID())
		assert.Equal(t, 4, b.PartySize().Value())
		assert.True(t, b.IsActive())
	})

	t.Run("lead time not met", func(t *testing.T) {
		slot := mustSlot(t, now.Add(30*time.Minute), now.Add(2*time.Hour))

		_, err := booking.NewBooking(now, restaurant, userID, slot, party, booking.NewNote(""))
		require.ErrorIs(t, err, booking.ErrLeadTimeNotMet)
	})

	t.Run("negative lead time treated as zero", func(t *testing.T) {
		loose := booking.RestaurantSpec{ID: uuid.New(), LeadTimeMin: -5}
		slot := mustSlot(t, now.Add(time.Minute), now.Add(time.Hour))

		_, err := booking.NewBooking(now, loose, userID, slot, party, booking.NewNote(""))
		require.NoError(t, err)
	})
}

func TestTimeSlot(t *testing.T) {
	now := time.Now()

	t.Run("start must precede end", func(t *testing.T) {
		_, err := booking.NewTimeSlot(now.Add(time.Hour), now)
		require.ErrorIs(t, err, booking.ErrInvalidTimeSlot)

		_, err = booking.NewTimeSlot(now, now)
		require.ErrorIs(t, err, booking.ErrInvalidTimeSlot)
	})

	t.Run("tstzrange rendering", func(t *testing.T) {
		start := time.Date(2026, 8, 24, 18, 0, 0, 0, time.UTC)
		slot := mustSlot(t, start, start.Add(2*time.Hour))

		assert.Equal(t, "[2026-08-24T18:00:00Z,2026-08-24T20:00:00Z)", slot.ToTstzrange())
	})
}

func TestPartySize(t *testing.T) {
	cases := []struct {
		name  string
		value int
		errIs error
	}{
		{name: "minimum", value: 1},
		{name: "maximum", value: 20},
		{name: "zero", value: 0, errIs: booking.ErrInvalidPartySize},
		{name: "above maximum", value: 21, errIs: booking.ErrInvalidPartySize},
		{name: "negative", value: -1, errIs: booking.ErrInvalidPartySize},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p, err := booking.NewPartySize(c.value)
			if c.errIs == nil {
				require.NoError(t, err)
				assert.Equal(t, c.value, p.Value())
			} else {
				require.ErrorIs(t, err, c.errIs)
			}
		})
	}
}

func TestBookingTransitions(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	party, _ := booking.NewPartySize(2)

	build := func(status booking.Status, end time.Time) *booking.Booking {
		slot := mustSlot(t, end.Add(-2*time.Hour), end)
		return booking.ReconstructBooking(
			uuid.New(), uuid.New(), uuid.New(),
			slot, party, status, booking.NewNote(""), now, now,
		)
	}

	t.Run("cancel confirmed booking", func(t *testing.T) {
		b := build(booking.StatusConfirmed, now.Add(4*time.Hour))
		require.NoError(t, b.Cancel())
		assert.Equal(t, booking.StatusCancelled, b.Status())
	})

	t.Run("cancel is not idempotent", func(t *testing.T) {
		b := build(booking.StatusCancelled, now.Add(4*time.Hour))
		require.ErrorIs(t, b.Cancel(), booking.ErrBookingNotActive)
	})

	t.Run("complete after slot end", func(t *testing.T) {
		b := build(booking.StatusConfirmed, now.Add(-time.Hour))
		require.NoError(t, b.Complete(now))
		assert.Equal(t, booking.StatusCompleted, b.Status())
	})

	t.Run("complete before slot end rejected", func(t *testing.T) {
		b := build(booking.StatusConfirmed, now.Add(time.Hour))
		require.ErrorIs(t, b.Complete(now), booking.ErrBookingNotEnded)
	})

	t.Run("complete cancelled booking rejected", func(t *testing.T) {
		b := build(booking.StatusCancelled, now.Add(-time.Hour))
		require.ErrorIs(t, b.Complete(now), booking.ErrBookingNotActive)
	})
}
