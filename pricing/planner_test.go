package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/bloomday/pricing-engine/pricing"
)

// =============================================================================
// PLANNER FEE LOOKUP TESTS
// =============================================================================

func TestPlannerFeeFor_BracketResolution(t *testing.T) {
	// GIVEN: the default table {100:1550, 150:1850, open:2150}
	// THEN: a count resolves to the first bracket covering it, the open
	//       top bracket catching everything beyond 150

	tiers := pricing.DefaultPlannerTiers()

	assertEqualAmount(t, dollars(1550), pricing.PlannerFeeFor(tiers, 80))
	assertEqualAmount(t, dollars(1550), pricing.PlannerFeeFor(tiers, 100))
	assertEqualAmount(t, dollars(1850), pricing.PlannerFeeFor(tiers, 101))
	assertEqualAmount(t, dollars(1850), pricing.PlannerFeeFor(tiers, 150))
	assertEqualAmount(t, dollars(2150), pricing.PlannerFeeFor(tiers, 160))
	assertEqualAmount(t, dollars(2150), pricing.PlannerFeeFor(tiers, 400))
}

func TestPlannerFeeFor_EmptyTable_ResolvesToZero(t *testing.T) {
	assertEqualAmount(t, decimal.Zero, pricing.PlannerFeeFor(nil, 120))
}

// =============================================================================
// PLANNER DELTA TESTS
// =============================================================================

func TestPlannerTierDelta_BracketEscalation(t *testing.T) {
	// GIVEN: 100 -> 160 crosses from the first bracket to the open top
	// THEN: delta = 2150 - 1550 = 600

	tiers := pricing.DefaultPlannerTiers()
	assertEqualAmount(t, dollars(600), pricing.PlannerTierDelta(tiers, 100, 160))
}

func TestPlannerTierDelta_SameBracket_NoDelta(t *testing.T) {
	tiers := pricing.DefaultPlannerTiers()
	assertEqualAmount(t, decimal.Zero, pricing.PlannerTierDelta(tiers, 60, 90))
}

func TestPlannerTierDelta_NeverNegative(t *testing.T) {
	// A count decrease must never produce a refund delta
	tiers := pricing.DefaultPlannerTiers()
	assertEqualAmount(t, decimal.Zero, pricing.PlannerTierDelta(tiers, 160, 100))
}
