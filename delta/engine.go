/*
Package delta computes the incremental dollars a couple owes when they
raise their guest count after services are already booked.

PURPOSE:
  Each booked service prices added guests its own way: catering and
  dessert from the per-guest rate implied by their signed contracts, the
  venue by one of three published strategies (flat-package proration,
  an ascending tier sheet, or a tier sheet keyed by day of week), and the
  planner by a fee-bracket step function. The engine runs all applicable
  resolvers over one old/new count pair and returns a per-service
  breakdown plus a grand total.

GUARANTEES:
  - The engine never permits an effective decrease: the new count is
    clamped at the locked count, so every line is >= 0.
  - newCount <= lockedCount (or no locked count at all) is the base case:
    an empty result, not an error.
  - Missing or malformed data for one bucket yields no line for that
    bucket. The only propagated failure is total inability to load the
    user's booking record.
  - A venue's own tax rate applies to the venue+catering portion of its
    line only, never to the planner delta. All other tax treatment is the
    caller's pricing context.

The engine is purely functional over its inputs; no mutable state is
shared between computations.
*/
package delta

import (
	"context"
	"math"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bloomday/pricing-engine/booking"
	"github.com/bloomday/pricing-engine/guestcount"
	"github.com/bloomday/pricing-engine/pricing"
)

// =============================================================================
// RESULT TYPES
// =============================================================================

// Bucket names one row of the breakdown.
type Bucket string

const (
	BucketCatering Bucket = "catering"
	BucketDessert  Bucket = "dessert"
	BucketVenue    Bucket = "venue"
	BucketPlanner  Bucket = "planner"
)

// Line is one row of the per-service breakdown. Lines are produced fresh
// per computation and never persisted; the booking record stays the
// source of truth.
type Line struct {
	Bucket      Bucket
	Label       string
	PerGuest    *decimal.Decimal // nil for tier-diffed amounts
	AddedGuests int
	AddedTotal  decimal.Decimal
}

// Result is the computation's output, owned by the caller. Persisting the
// new locked count is a separate, caller-driven step.
type Result struct {
	LockedGuestCount int
	NewGuestCount    int
	AddedGuests      int
	Lines            []Line
	TotalDelta       decimal.Decimal
}

// =============================================================================
// ENGINE
// =============================================================================

// CountSource supplies the authoritative locked guest count.
// guestcount.Store satisfies it.
type CountSource interface {
	GetState(ctx context.Context, userID string) guestcount.State
}

// Engine orchestrates the store, booking records, and rule registry into
// a DeltaResult.
type Engine struct {
	Bookings     booking.Store
	Counts       CountSource
	Venues       *pricing.Registry
	PlannerTiers []pricing.PlannerTier

	// Rates supplies externally-sourced per-guest catering rates for
	// venues whose sheet marks the rate External. Optional; absent rates
	// simply produce no catering component.
	Rates pricing.RateSource

	Log *zap.SugaredLogger
}

// NewEngine wires an engine with the default planner table.
func NewEngine(bookings booking.Store, counts CountSource, venues *pricing.Registry) *Engine {
	return &Engine{
		Bookings:     bookings,
		Counts:       counts,
		Venues:       venues,
		PlannerTiers: pricing.DefaultPlannerTiers(),
		Log:          zap.NewNop().Sugar(),
	}
}

// ComputeDeltas produces the per-service breakdown of additional cost for
// raising userID's guest count to newGuestCount.
func (e *Engine) ComputeDeltas(ctx context.Context, userID string, newGuestCount float64) (*Result, error) {
	rec, err := e.Bookings.LoadRecord(ctx, userID)
	if err != nil {
		return nil, err
	}

	// The remote store value takes precedence over the record's own
	// guest-count field; the record is the fallback for sessions whose
	// store has nothing cached.
	locked := rec.GuestCount
	if e.Counts != nil {
		if st := e.Counts.GetState(ctx, userID); st.Value > 0 {
			locked = st.Value
		}
	}

	if locked <= 0 {
		return emptyResult(locked), nil
	}

	// Never an effective decrease.
	newCount := int(math.Floor(newGuestCount))
	if newCount < locked {
		newCount = locked
	}
	added := newCount - locked
	if added == 0 {
		return emptyResult(locked), nil
	}

	result := &Result{
		LockedGuestCount: locked,
		NewGuestCount:    newCount,
		AddedGuests:      added,
		TotalDelta:       decimal.Zero,
	}

	if line, ok := e.historicalRateLine(rec, BucketCatering, "Catering", locked, added); ok {
		result.Lines = append(result.Lines, line)
	}
	if line, ok := e.historicalRateLine(rec, BucketDessert, "Dessert", locked, added); ok {
		result.Lines = append(result.Lines, line)
	}
	if line, ok := e.venueLine(rec, locked, newCount, added); ok {
		result.Lines = append(result.Lines, line)
	}
	if line, ok := e.plannerLine(rec, locked, newCount, added); ok {
		result.Lines = append(result.Lines, line)
	}

	for _, line := range result.Lines {
		result.TotalDelta = result.TotalDelta.Add(line.AddedTotal)
	}
	return result, nil
}

func emptyResult(locked int) *Result {
	if locked < 0 {
		locked = 0
	}
	return &Result{
		LockedGuestCount: locked,
		NewGuestCount:    locked,
		Lines:            []Line{},
		TotalDelta:       decimal.Zero,
	}
}

// =============================================================================
// CATERING / DESSERT - Historical per-guest rate from signed contracts
// =============================================================================

// historicalRateLine derives a per-guest rate from the sum of a service's
// contract totals divided by the locked count. A zero or unavailable rate
// emits no line rather than a zero line.
func (e *Engine) historicalRateLine(rec *booking.Record, bucket Bucket, label string, locked, added int) (Line, bool) {
	if !rec.Booked(booking.Service(bucket)) {
		return Line{}, false
	}
	total := rec.PurchaseTotal(string(bucket))
	if !total.IsPositive() || locked <= 0 {
		return Line{}, false
	}
	perGuest := total.Div(decimal.NewFromInt(int64(locked)))
	addedTotal := perGuest.Mul(decimal.NewFromInt(int64(added))).Round(2)
	if !addedTotal.IsPositive() {
		return Line{}, false
	}
	rate := perGuest.Round(2)
	return Line{
		Bucket:      bucket,
		Label:       label,
		PerGuest:    &rate,
		AddedGuests: added,
		AddedTotal:  addedTotal,
	}, true
}

// =============================================================================
// VENUE - Dispatch over the venue's declarative rule set
// =============================================================================

func (e *Engine) venueLine(rec *booking.Record, locked, newCount, added int) (Line, bool) {
	if !rec.Booked(booking.ServiceVenue) {
		return Line{}, false
	}
	rules := e.Venues.Rules(rec.VenueID)

	site := decimal.Zero
	switch rule := rules.SiteFee.(type) {
	case pricing.SiteFeeNone:
		// no site-fee component
	case pricing.SiteFeeProrated:
		flat := rec.PurchaseTotal(string(BucketVenue))
		site = pricing.ProratedSiteFeeDelta(flat, locked, added)
	case pricing.SiteFeeTierMap:
		site = pricing.TierMapDelta(rule.Tiers, locked, newCount)
	case pricing.SiteFeeDayTierMap:
		tiers := rule.Tiers[pricing.DayBucketFor(rec.VenueDay)]
		site = pricing.TierMapDelta(tiers, locked, newCount)
	}

	catering := decimal.Zero
	switch rule := rules.Catering.(type) {
	case pricing.CateringNone, pricing.CateringIncluded:
		// bundled or absent: no separate catering delta
	case pricing.CateringPerGuest:
		rate := rule.Rate
		if rule.External {
			rate = decimal.Zero
			if e.Rates != nil {
				if r, ok := e.Rates.PerGuestRate(rec.VenueID); ok {
					rate = r
				}
			}
		}
		catering = pricing.PerGuestCateringDelta(rate, rule.MinGuests, locked, newCount)
	}

	total := site.Add(catering)
	if !total.IsPositive() {
		return Line{}, false
	}
	if rules.TaxRate.IsPositive() {
		total = total.Mul(decimal.NewFromInt(1).Add(rules.TaxRate)).Round(2)
	}

	label := rules.Name
	if label == "" {
		label = "Venue"
	}
	return Line{
		Bucket:      BucketVenue,
		Label:       label,
		AddedGuests: added,
		AddedTotal:  total,
	}, true
}

// =============================================================================
// PLANNER - Fee-bracket escalation
// =============================================================================

func (e *Engine) plannerLine(rec *booking.Record, locked, newCount, added int) (Line, bool) {
	if !rec.Booked(booking.ServicePlanner) {
		return Line{}, false
	}
	tiers := e.PlannerTiers
	if tiers == nil {
		tiers = pricing.DefaultPlannerTiers()
	}
	d := pricing.PlannerTierDelta(tiers, locked, newCount)
	if !d.IsPositive() {
		return Line{}, false
	}
	return Line{
		Bucket:      BucketPlanner,
		Label:       "Planner",
		AddedGuests: added,
		AddedTotal:  d,
	}, true
}
