//go:build unit

package offer_test

import (
	"testing"
	"time"

	"airdine/internal/domain/offer"
	"airdine/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewActivation(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	offerID := uuid.New()
	userID := uuid.New()

	a := offer.NewActivation(uuid.New(), offerID, userID, offer.Code("XK29ZQ"), now, 2*time.Minute)

	assert.Equal(t, offer.ActivationPending, a.Status())
	assert.Equal(t, offerID, a.OfferID())
	assert.Equal(t, userID, a.UserID())
	assert.Equal(t, now, a.CreatedAt())
	assert.Equal(t, now.Add(2*time.Minute), a.ExpiresAt())
	assert.Nil(t, a.RedeemedAt())
	assert.Nil(t, a.RedeemedBy())
}

func TestActivationExpiry(t *testing.T) {
	now := time.Now()
	a := builder.NewActivationBuilder().With(func(b *builder.ActivationBuilder) {
		b.ExpiresAt = now.Add(time.Minute)
	}).BuildDomain()

	assert.False(t, a.IsExpiredAt(now))
	assert.True(t, a.IsExpiredAt(now.Add(time.Minute)), "boundary instant counts as expired")
	assert.True(t, a.IsExpiredAt(now.Add(2*time.Minute)))
}

func TestActivationRedeem(t *testing.T) {
	now := time.Now()
	staffID := uuid.New()

	t.Run("pending unexpired code redeems", func(t *testing.T) {
		a := builder.NewActivationBuilder().BuildDomain()

		err := a.Redeem(now, staffID)
		require.NoError(t, err)

		assert.Equal(t, offer.ActivationRedeemed, a.Status())
		require.NotNil(t, a.RedeemedAt())
		assert.Equal(t, now, *a.RedeemedAt())
		require.NotNil(t, a.RedeemedBy())
		assert.Equal(t, staffID, *a.RedeemedBy())
	})

	t.Run("expired TTL rejects redemption", func(t *testing.T) {
		a := builder.NewActivationBuilder().With(func(b *builder.ActivationBuilder) {
			b.ExpiresAt = now.Add(-time.Second)
		}).BuildDomain()

		err := a.Redeem(now, staffID)
		require.ErrorIs(t, err, offer.ErrActivationExpired)
		assert.Equal(t, offer.ActivationPending, a.Status())
	})

	t.Run("double redemption rejected", func(t *testing.T) {
		a := builder.NewActivationBuilder().BuildDomain()
		require.NoError(t, a.Redeem(now, staffID))

		err := a.Redeem(now, staffID)
		require.ErrorIs(t, err, offer.ErrActivationAlreadyRedeemed)
	})

	t.Run("cancelled code rejected", func(t *testing.T) {
		a := builder.NewActivationBuilder().With(func(b *builder.ActivationBuilder) {
			b.Status = offer.ActivationCancelled
		}).BuildDomain()

		err := a.Redeem(now, staffID)
		require.ErrorIs(t, err, offer.ErrActivationNotValid)
	})

	t.Run("already expired status rejected", func(t *testing.T) {
		a := builder.NewActivationBuilder().With(func(b *builder.ActivationBuilder) {
			b.Status = offer.ActivationExpired
		}).BuildDomain()

		err := a.Redeem(now, staffID)
		require.ErrorIs(t, err, offer.ErrActivationNotValid)
	})
}

func TestActivationMarkExpired(t *testing.T) {
	now := time.Now()

	t.Run("pending past TTL expires", func(t *testing.T) {
		a := builder.NewActivationBuilder().With(func(b *builder.ActivationBuilder) {
			b.ExpiresAt = now.Add(-time.Minute)
		}).BuildDomain()

		require.NoError(t, a.MarkExpired(now))
		assert.Equal(t, offer.ActivationExpired, a.Status())
	})

	t.Run("pending before TTL stays pending", func(t *testing.T) {
		a := builder.NewActivationBuilder().With(func(b *builder.ActivationBuilder) {
			b.ExpiresAt = now.Add(time.Minute)
		}).BuildDomain()

		err := a.MarkExpired(now)
		require.ErrorIs(t, err, offer.ErrActivationNotValid)
		assert.Equal(t, offer.ActivationPending, a.Status())
	})

	t.Run("redeemed code never expires", func(t *testing.T) {
		a := builder.NewActivationBuilder().With(func(b *builder.ActivationBuilder) {
			b.Status = offer.ActivationRedeemed
			b.ExpiresAt = now.Add(-time.Minute)
		}).BuildDomain()

		err := a.MarkExpired(now)
		require.ErrorIs(t, err, offer.ErrActivationNotPending)
		assert.Equal(t, offer.ActivationRedeemed, a.Status())
	})
}

func TestActivationCancel(t *testing.T) {
	t.Run("pending code cancels", func(t *testing.T) {
		a := builder.NewActivationBuilder().BuildDomain()

		require.NoError(t, a.Cancel())
		assert.Equal(t, offer.ActivationCancelled, a.Status())
	})

	t.Run("terminal statuses cannot cancel", func(t *testing.T) {
		for _, status := range []offer.ActivationStatus{
			offer.ActivationRedeemed,
			offer.ActivationExpired,
			offer.ActivationCancelled,
		} {
			a := builder.NewActivationBuilder().With(func(b *builder.ActivationBuilder) {
				b.Status = status
			}).BuildDomain()

			err := a.Cancel()
			require.ErrorIs(t, err, offer.ErrActivationNotPending)
			assert.Equal(t, status, a.Status())
		}
	})
}

func TestUsageConstructors(t *testing.T) {
	now := time.Now()

	t.Run("redeemed usage records redemption time", func(t *testing.T) {
		a := builder.NewActivationBuilder().BuildDomain()
		id := uuid.New()

		u := offer.NewRedeemedUsage(id, a, now)

		assert.Equal(t, id, u.ID())
		assert.Equal(t, a.OfferID(), u.OfferID())
		assert.Equal(t, a.UserID(), u.UserID())
		require.NotNil(t, u.ActivationID())
		assert.Equal(t, a.ID(), *u.ActivationID())
		assert.Equal(t, offer.UsageUsed, u.Status())
		assert.Equal(t, now, u.UsedAt())
	})

	t.Run("expired usage backdates to TTL instant", func(t *testing.T) {
		a := builder.NewActivationBuilder().With(func(b *builder.ActivationBuilder) {
			b.ExpiresAt = now.Add(-10 * time.Minute)
		}).BuildDomain()

		u := offer.NewExpiredUsage(uuid.New(), a)

		assert.Equal(t, offer.UsageExpired, u.Status())
		assert.Equal(t, a.ExpiresAt(), u.UsedAt())
	})
}

func TestGenerateCode(t *testing.T) {
	t.Run("draws from the uppercase alphanumeric charset", func(t *testing.T) {
		for range 50 {
			code, err := offer.GenerateCode(6)
			require.NoError(t, err)
			require.Len(t, code.String(), 6)

			parsed, err := offer.NewCode(code.String())
			require.NoError(t, err)
			assert.Equal(t, code, parsed)
		}
	})

	t.Run("rejects out-of-range lengths", func(t *testing.T) {
		_, err := offer.GenerateCode(3)
		require.ErrorIs(t, err, offer.ErrInvalidCode)

		_, err = offer.GenerateCode(13)
		require.ErrorIs(t, err, offer.ErrInvalidCode)
	})
}

func TestNewCode(t *testing.T) {
	cases := []struct {
		name  string
		input string
		errIs error
	}{
		{name: "valid six characters", input: "XK29ZQ"},
		{name: "lowercase rejected", input: "xk29zq", errIs: offer.ErrInvalidCode},
		{name: "too short", input: "ABC", errIs: offer.ErrInvalidCode},
		{name: "symbols rejected", input: "AB-12!", errIs: offer.ErrInvalidCode},
		{name: "empty", input: "", errIs: offer.ErrInvalidCode},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := offer.NewCode(c.input)
			if c.errIs == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, c.errIs)
			}
		})
	}
}
