//go:build unit

package offer_test

import (
	"testing"
	"time"

	"airdine/internal/domain/offer"
	"airdine/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCase struct {
	name   string
	mutate func(*builder.OfferBuilder)
	errIs  error
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			actual, err := builder.NewOfferBuilder().With(c.mutate).BuildDomain()

			if c.errIs == nil {
				require.NotNil(t, actual)
				require.NoError(t, err)
			} else {
				require.Nil(t, actual)
				require.Error(t, err)
				require.ErrorIs(t, err, c.errIs)
			}
		})
	}
}

func TestOffer(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		actual, err := builder.NewOfferBuilder().BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.Equal(t, "Weekday Lunch Deal", actual.Title())
		assert.Equal(t, offer.TypePercentage, actual.Discount().OfferType())
		assert.True(t, actual.IsActive())
		assert.Equal(t, int32(1), actual.MaxUsesPerUser())
	})

	t.Run("creation validation", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "empty title",
				mutate: func(b *builder.OfferBuilder) { b.Title = "  " },
				errIs:  offer.ErrInvalidTitle,
			},
			{
				name: "window ends before it starts",
				mutate: func(b *builder.OfferBuilder) {
					b.ValidFrom = time.Now()
					b.ValidUntil = time.Now().Add(-time.Hour)
				},
				errIs: offer.ErrInvalidWindow,
			},
			{
				name:   "zero per-user limit",
				mutate: func(b *builder.OfferBuilder) { b.MaxUsesPerUser = 0 },
				errIs:  offer.ErrInvalidUsesLimit,
			},
			{
				name: "zero global limit",
				mutate: func(b *builder.OfferBuilder) {
					zero := int32(0)
					b.MaxUses = &zero
				},
				errIs: offer.ErrInvalidUsesLimit,
			},
			{
				name:   "unknown weekday name",
				mutate: func(b *builder.OfferBuilder) { b.ValidDays = []string{"monday", "someday"} },
				errIs:  offer.ErrInvalidValidDay,
			},
			{
				name:   "mixed-case weekday names",
				mutate: func(b *builder.OfferBuilder) { b.ValidDays = []string{"Monday", "FRIDAY"} },
			},
		})
	})

	t.Run("discount type consistency", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name: "percentage without percent",
				mutate: func(b *builder.OfferBuilder) {
					b.PercentOff = nil
				},
				errIs: offer.ErrInvalidDiscount,
			},
			{
				name: "percentage above 100",
				mutate: func(b *builder.OfferBuilder) {
					p := 150.0
					b.PercentOff = &p
				},
				errIs: offer.ErrInvalidDiscount,
			},
			{
				name: "fixed with positive amount",
				mutate: func(b *builder.OfferBuilder) {
					b.OfferType = offer.TypeFixed
					b.PercentOff = nil
					amount := int64(500)
					b.AmountOffCents = &amount
				},
			},
			{
				name: "fixed without amount",
				mutate: func(b *builder.OfferBuilder) {
					b.OfferType = offer.TypeFixed
					b.PercentOff = nil
				},
				errIs: offer.ErrInvalidDiscount,
			},
			{
				name: "bogo with stray percent",
				mutate: func(b *builder.OfferBuilder) {
					b.OfferType = offer.TypeBogo
				},
				errIs: offer.ErrInvalidDiscount,
			},
			{
				name: "special with no parameters",
				mutate: func(b *builder.OfferBuilder) {
					b.OfferType = offer.TypeSpecial
					b.PercentOff = nil
				},
			},
		})
	})
}

func TestOfferIsValidAt(t *testing.T) {
	// a fixed Monday at noon UTC
	monday := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	base := func() *builder.OfferBuilder {
		return builder.NewOfferBuilder().With(func(b *builder.OfferBuilder) {
			b.ValidFrom = monday.Add(-48 * time.Hour)
			b.ValidUntil = monday.Add(48 * time.Hour)
		})
	}

	t.Run("valid inside window", func(t *testing.T) {
		o := base().BuildReconstructed()
		assert.True(t, o.IsValidAt(monday))
	})

	t.Run("inactive offer never valid", func(t *testing.T) {
		o := base().With(func(b *builder.OfferBuilder) { b.IsActive = false }).BuildReconstructed()
		assert.False(t, o.IsValidAt(monday))
	})

	t.Run("before validity window", func(t *testing.T) {
		o := base().BuildReconstructed()
		assert.False(t, o.IsValidAt(monday.Add(-72*time.Hour)))
	})

	t.Run("window start is inclusive", func(t *testing.T) {
		o := base().BuildReconstructed()
		assert.True(t, o.IsValidAt(monday.Add(-48*time.Hour)))
	})

	t.Run("window end is exclusive", func(t *testing.T) {
		o := base().BuildReconstructed()
		assert.False(t, o.IsValidAt(monday.Add(48*time.Hour)))
	})

	t.Run("weekday restriction", func(t *testing.T) {
		o := base().With(func(b *builder.OfferBuilder) {
			b.ValidDays = []string{"tuesday", "wednesday"}
		}).BuildReconstructed()

		assert.False(t, o.IsValidAt(monday))
		assert.True(t, o.IsValidAt(monday.Add(24*time.Hour)))
	})

	t.Run("empty valid days allows every day", func(t *testing.T) {
		o := base().BuildReconstructed()
		assert.True(t, o.IsDayValidAt(monday))
		assert.True(t, o.IsDayValidAt(monday.Add(24*time.Hour)))
	})

	t.Run("global cap exhausted", func(t *testing.T) {
		o := base().With(func(b *builder.OfferBuilder) {
			limit := int32(10)
			b.MaxUses = &limit
			b.CurrentUses = 10
		}).BuildReconstructed()
		assert.False(t, o.IsValidAt(monday))
	})

	t.Run("nil global cap is unlimited", func(t *testing.T) {
		o := base().With(func(b *builder.OfferBuilder) { b.CurrentUses = 100000 }).BuildReconstructed()
		assert.True(t, o.IsValidAt(monday))
	})
}

func TestOfferCanUseWith(t *testing.T) {
	o := builder.NewOfferBuilder().With(func(b *builder.OfferBuilder) {
		b.MaxUsesPerUser = 2
	}).BuildReconstructed()

	assert.True(t, o.CanUseWith(0))
	assert.True(t, o.CanUseWith(1))
	assert.False(t, o.CanUseWith(2))
	assert.False(t, o.CanUseWith(3))
}

func TestOfferDiscountCentsFor(t *testing.T) {
	t.Run("percentage discount", func(t *testing.T) {
		o := builder.NewOfferBuilder().BuildReconstructed()

		amount, err := o.DiscountCentsFor(5000)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), amount)
	})

	t.Run("fixed discount capped at order amount", func(t *testing.T) {
		o := builder.NewOfferBuilder().With(func(b *builder.OfferBuilder) {
			b.OfferType = offer.TypeFixed
			b.PercentOff = nil
			amount := int64(2000)
			b.AmountOffCents = &amount
		}).BuildReconstructed()

		amount, err := o.DiscountCentsFor(1500)
		require.NoError(t, err)
		assert.Equal(t, int64(1500), amount)
	})

	t.Run("maximum discount cap applies", func(t *testing.T) {
		o := builder.NewOfferBuilder().With(func(b *builder.OfferBuilder) {
			maxDiscount := int64(500)
			b.MaximumDiscountCents = &maxDiscount
		}).BuildReconstructed()

		amount, err := o.DiscountCentsFor(10000)
		require.NoError(t, err)
		assert.Equal(t, int64(500), amount)
	})

	t.Run("minimum order enforced", func(t *testing.T) {
		o := builder.NewOfferBuilder().With(func(b *builder.OfferBuilder) {
			minOrder := int64(3000)
			b.MinimumOrderCents = &minOrder
		}).BuildReconstructed()

		_, err := o.DiscountCentsFor(2999)
		require.ErrorIs(t, err, offer.ErrMinimumOrderNotMet)
	})

	t.Run("non-monetary types yield zero", func(t *testing.T) {
		o := builder.NewOfferBuilder().With(func(b *builder.OfferBuilder) {
			b.OfferType = offer.TypeBogo
			b.PercentOff = nil
		}).BuildReconstructed()

		amount, err := o.DiscountCentsFor(5000)
		require.NoError(t, err)
		assert.Equal(t, int64(0), amount)
	})
}

func TestOfferDiscountText(t *testing.T) {
	percent := 15.0
	fixedAmount := int64(750)

	cases := []struct {
		name     string
		mutate   func(*builder.OfferBuilder)
		expected string
	}{
		{
			name:     "percentage",
			mutate:   func(b *builder.OfferBuilder) { b.PercentOff = &percent },
			expected: "15% OFF",
		},
		{
			name: "fixed",
			mutate: func(b *builder.OfferBuilder) {
				b.OfferType = offer.TypeFixed
				b.PercentOff = nil
				b.AmountOffCents = &fixedAmount
			},
			expected: "$7.50 OFF",
		},
		{
			name: "bogo",
			mutate: func(b *builder.OfferBuilder) {
				b.OfferType = offer.TypeBogo
				b.PercentOff = nil
			},
			expected: "Buy 1 Get 1",
		},
		{
			name: "combo",
			mutate: func(b *builder.OfferBuilder) {
				b.OfferType = offer.TypeCombo
				b.PercentOff = nil
			},
			expected: "Combo Deal",
		},
		{
			name: "special",
			mutate: func(b *builder.OfferBuilder) {
				b.OfferType = offer.TypeSpecial
				b.PercentOff = nil
			},
			expected: "Special Offer",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			o := builder.NewOfferBuilder().With(c.mutate).BuildReconstructed()
			assert.Equal(t, c.expected, o.DiscountText())
		})
	}
}
