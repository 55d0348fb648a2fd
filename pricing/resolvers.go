/*
resolvers.go - Pure functions from pricing rules to dollar amounts

PURPOSE:
  Each resolver answers one question: given this rule and these guest
  counts, what does the customer owe? They are pure, take no context,
  and never return negative amounts.

ROUNDING:
  Dollar results are rounded half-up at the cent. Intermediate per-guest
  rates keep full precision until the final multiplication.

THRESHOLD GATING (per-guest catering):
  Guests between the booked count and the venue minimum are free; only
  guests strictly above the minimum are billed. A raise from 150 to 190
  against a 200-guest minimum owes nothing; 150 to 220 owes 20 guests.
  This asymmetry is the venues' published policy, not an accident.
*/
package pricing

import "github.com/shopspring/decimal"

// roundCents rounds half-up at the cent.
func roundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// =============================================================================
// TIER RESOLUTION
// =============================================================================

// ResolveTier returns the price of the first tier whose threshold covers
// count. Counts above every threshold clamp to the highest tier; an empty
// tier list resolves to zero.
func ResolveTier(tiers []Tier, count int) decimal.Decimal {
	if len(tiers) == 0 {
		return decimal.Zero
	}
	for _, t := range tiers {
		if t.Threshold >= count {
			return t.Price
		}
	}
	return tiers[len(tiers)-1].Price
}

// TierMapDelta diffs a tier map between two counts. The delta is the
// difference between tier totals, never negative.
func TierMapDelta(tiers []Tier, fromCount, toCount int) decimal.Decimal {
	delta := ResolveTier(tiers, toCount).Sub(ResolveTier(tiers, fromCount))
	if delta.IsNegative() {
		return decimal.Zero
	}
	return roundCents(delta)
}

// =============================================================================
// PRORATION
// =============================================================================

// ProratedSiteFeeDelta derives an implied per-head rate from a booked
// flat price and charges it for each added guest.
func ProratedSiteFeeDelta(bookedFlatPrice decimal.Decimal, bookedGuestCount, addedGuests int) decimal.Decimal {
	if bookedGuestCount <= 0 || addedGuests <= 0 {
		return decimal.Zero
	}
	perGuest := bookedFlatPrice.Div(decimal.NewFromInt(int64(bookedGuestCount)))
	return roundCents(perGuest.Mul(decimal.NewFromInt(int64(addedGuests))))
}

// =============================================================================
// PER-GUEST CATERING WITH MINIMUM
// =============================================================================

// PerGuestCateringDelta charges rate for each effective added guest,
// where guests at or below minGuests are never billed:
//
//	effectiveAdded = toCount - max(fromCount, minGuests)
//
// A toCount at or below minGuests owes nothing regardless of fromCount.
func PerGuestCateringDelta(rate decimal.Decimal, minGuests, fromCount, toCount int) decimal.Decimal {
	if toCount <= fromCount {
		return decimal.Zero
	}
	if toCount <= minGuests {
		return decimal.Zero
	}
	floor := fromCount
	if minGuests > floor {
		floor = minGuests
	}
	effectiveAdded := toCount - floor
	if effectiveAdded <= 0 {
		return decimal.Zero
	}
	return roundCents(rate.Mul(decimal.NewFromInt(int64(effectiveAdded))))
}
