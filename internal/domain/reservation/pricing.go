package reservation

import (
	"github.com/roomhive/service-reservation/internal/common/domain"
)

// PricingStrategy computes the monetary breakdown for a stay.
type PricingStrategy interface {
	// Quote returns the breakdown for the given parameters.
	Quote(params PricingParams) (Breakdown, error)
}

// PricingParams holds the inputs for a stay quote. NightlyRatesCents carries
// one entry per occupied night, taken from the inventory ledger.
type PricingParams struct {
	NightlyRatesCents []int64
	DiscountCents     int64
}

// StandardPricingStrategy applies flat tax and service-charge rates on the
// room subtotal. Rates are expressed in basis points so money math stays in
// integers.
type StandardPricingStrategy struct {
	taxRateBps           int64
	serviceChargeRateBps int64
	currency             string
}

// NewStandardPricingStrategy creates the default pricing strategy.
func NewStandardPricingStrategy(taxRateBps, serviceChargeRateBps int64, currency string) *StandardPricingStrategy {
	return &StandardPricingStrategy{
		taxRateBps:           taxRateBps,
		serviceChargeRateBps: serviceChargeRateBps,
		currency:             currency,
	}
}

// Quote computes subtotal, tax, service charge and total for the stay.
func (s *StandardPricingStrategy) Quote(params PricingParams) (Breakdown, error) {
	if len(params.NightlyRatesCents) == 0 {
		return Breakdown{}, domain.NewValidationError("stay must cover at least one night")
	}
	if params.DiscountCents < 0 {
		return Breakdown{}, domain.NewValidationError("discount cannot be negative")
	}

	var subtotal int64
	for _, rate := range params.NightlyRatesCents {
		if rate < 0 {
			return Breakdown{}, domain.NewValidationError("nightly rate cannot be negative")
		}
		subtotal += rate
	}

	tax := subtotal * s.taxRateBps / 10000
	service := subtotal * s.serviceChargeRateBps / 10000

	if params.DiscountCents > subtotal+tax+service {
		return Breakdown{}, domain.NewValidationError("discount exceeds stay total")
	}

	return NewBreakdown(subtotal, tax, service, params.DiscountCents, s.currency), nil
}
