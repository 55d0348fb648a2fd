/*
planner.go - Planner-fee step function over guest count

PURPOSE:
  The planning service bills a flat fee per guest-count bracket. When a
  couple raises their count across a bracket boundary, they owe the fee
  difference. The table is ordered ascending; the top tier is open ended.

ESCALATION ONLY:
  PlannerTierDelta never returns a negative amount. A count decrease
  (which the lock otherwise prevents) must never produce a refund here.
*/
package pricing

import "github.com/shopspring/decimal"

// PlannerTier is one bracket of the planner fee table. A MaxGuests of
// zero marks the open-ended top bracket.
type PlannerTier struct {
	MaxGuests int
	Fee       decimal.Decimal
}

// DefaultPlannerTiers is the standard planning-package fee table.
func DefaultPlannerTiers() []PlannerTier {
	return []PlannerTier{
		{MaxGuests: 100, Fee: decimal.NewFromInt(1550)},
		{MaxGuests: 150, Fee: decimal.NewFromInt(1850)},
		{MaxGuests: 0, Fee: decimal.NewFromInt(2150)}, // open-ended top
	}
}

// PlannerFeeFor resolves a guest count to its bracket fee: the first tier
// whose MaxGuests covers the count, else the last (highest) tier. An
// empty table resolves to zero.
func PlannerFeeFor(tiers []PlannerTier, count int) decimal.Decimal {
	if len(tiers) == 0 {
		return decimal.Zero
	}
	for _, t := range tiers {
		if t.MaxGuests > 0 && t.MaxGuests >= count {
			return t.Fee
		}
	}
	return tiers[len(tiers)-1].Fee
}

// PlannerTierDelta is the escalation owed when the count moves between
// brackets: max(0, fee(to) - fee(from)).
func PlannerTierDelta(tiers []PlannerTier, fromCount, toCount int) decimal.Decimal {
	delta := PlannerFeeFor(tiers, toCount).Sub(PlannerFeeFor(tiers, fromCount))
	if delta.IsNegative() {
		return decimal.Zero
	}
	return delta
}
