package reservation

import (
	"sort"
	"time"
)

// RefundTier maps a minimum number of days before check-in to the refundable
// percentage of the total amount.
type RefundTier struct {
	MinDaysBefore int
	Percent       int64
}

// RefundPolicy is an ordered set of refund tiers. It is pure configuration;
// Calculate has no side effects.
type RefundPolicy struct {
	tiers []RefundTier
}

// NewRefundPolicy builds a policy from tiers, ordered most-generous first.
func NewRefundPolicy(tiers []RefundTier) RefundPolicy {
	sorted := make([]RefundTier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinDaysBefore > sorted[j].MinDaysBefore
	})
	return RefundPolicy{tiers: sorted}
}

// DefaultRefundPolicy returns the standard tiers: 7+ days 100%, 3+ days 50%,
// 1+ day 20%, same day 0%.
func DefaultRefundPolicy() RefundPolicy {
	return NewRefundPolicy([]RefundTier{
		{MinDaysBefore: 7, Percent: 100},
		{MinDaysBefore: 3, Percent: 50},
		{MinDaysBefore: 1, Percent: 20},
	})
}

// DaysUntil returns the whole calendar days from today until checkIn.
// Negative when the check-in date has passed.
func DaysUntil(now, checkIn time.Time) int {
	return NightCount(NormalizeDate(now), NormalizeDate(checkIn))
}

// Calculate returns the refundable amount in minor units for a cancellation
// at time now. Amounts round down on partial percentages.
func (p RefundPolicy) Calculate(totalCents int64, now, checkIn time.Time) int64 {
	days := DaysUntil(now, checkIn)
	for _, tier := range p.tiers {
		if days >= tier.MinDaysBefore {
			return totalCents * tier.Percent / 100
		}
	}
	return 0
}

// Tiers returns a copy of the policy tiers, most-generous first.
func (p RefundPolicy) Tiers() []RefundTier {
	out := make([]RefundTier, len(p.tiers))
	copy(out, p.tiers)
	return out
}
