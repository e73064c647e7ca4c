package reservation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardPricingQuote(t *testing.T) {
	strategy := NewStandardPricingStrategy(1000, 500, "USD") // 10% tax, 5% service

	b, err := strategy.Quote(PricingParams{
		NightlyRatesCents: []int64{100000, 100000, 120000},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(320000), b.RoomRateCents)
	assert.Equal(t, int64(32000), b.TaxCents)
	assert.Equal(t, int64(16000), b.ServiceChargeCents)
	assert.Equal(t, int64(0), b.DiscountCents)
	assert.Equal(t, int64(368000), b.TotalCents)
	assert.Equal(t, "USD", b.Currency)
	assert.NoError(t, b.Validate())
}

func TestStandardPricingQuoteWithDiscount(t *testing.T) {
	strategy := NewStandardPricingStrategy(1000, 500, "USD")

	b, err := strategy.Quote(PricingParams{
		NightlyRatesCents: []int64{100000},
		DiscountCents:     15000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100000), b.RoomRateCents)
	assert.Equal(t, int64(100000+10000+5000-15000), b.TotalCents)
}

func TestStandardPricingQuoteRejections(t *testing.T) {
	strategy := NewStandardPricingStrategy(1000, 500, "USD")

	_, err := strategy.Quote(PricingParams{})
	assert.Error(t, err, "empty stay")

	_, err = strategy.Quote(PricingParams{NightlyRatesCents: []int64{100000}, DiscountCents: -1})
	assert.Error(t, err, "negative discount")

	_, err = strategy.Quote(PricingParams{NightlyRatesCents: []int64{-100}})
	assert.Error(t, err, "negative rate")

	_, err = strategy.Quote(PricingParams{NightlyRatesCents: []int64{1000}, DiscountCents: 9999999})
	assert.Error(t, err, "discount above total")
}

func TestStandardPricingIntegerMathRoundsDown(t *testing.T) {
	strategy := NewStandardPricingStrategy(1000, 500, "USD")

	b, err := strategy.Quote(PricingParams{NightlyRatesCents: []int64{99}})
	require.NoError(t, err)
	assert.Equal(t, int64(9), b.TaxCents)
	assert.Equal(t, int64(4), b.ServiceChargeCents)
}
