/*
Package pricing models how each wedding vendor's cost scales with guest
count, and resolves those rules into incremental dollar amounts.

PURPOSE:
  Every venue prices differently: some bill a flat package prorated per
  head, some publish an "up to N guests" tier sheet, some key that sheet
  by day of week as well. Catering is bundled, per-guest, or per-guest
  above a minimum. This package expresses each axis as a closed set of
  rule variants so a resolver can match exhaustively; adding a venue
  strategy is a new variant, not a runtime field-presence guess.

KEY CONCEPTS IN THIS FILE (rules.go):
  - SiteFeeRule: how the venue's site fee scales (none/prorated/tiers/day tiers)
  - CateringRule: how the venue's own catering scales (none/included/per guest)
  - Tier: one {threshold, price} step of an ascending tier map
  - DayBucket: saturday / friday-or-sunday / weekday pricing buckets

All prices use decimal.Decimal. Floats never touch money.

SEE ALSO:
  - resolvers.go: Pure functions turning rules + counts into deltas
  - registry.go: Venue-id lookup for rule sets
  - planner.go: The planner-fee step function
*/
package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TIER MAPS
// =============================================================================

// Tier is one step of an ascending tier map: the price that applies up to
// and including Threshold guests.
type Tier struct {
	Threshold int
	Price     decimal.Decimal
}

// =============================================================================
// DAY BUCKETS
// =============================================================================

// DayBucket groups weekdays into the pricing buckets venues publish.
type DayBucket string

const (
	BucketSaturday       DayBucket = "saturday"
	BucketFridayOrSunday DayBucket = "friday_or_sunday"
	BucketWeekday        DayBucket = "weekday"
)

// DayBucketFor maps a weekday to its pricing bucket.
func DayBucketFor(day time.Weekday) DayBucket {
	switch day {
	case time.Saturday:
		return BucketSaturday
	case time.Friday, time.Sunday:
		return BucketFridayOrSunday
	default:
		return BucketWeekday
	}
}

// =============================================================================
// SITE FEE RULES - One variant per scaling strategy
// =============================================================================

// SiteFeeRule describes how a venue's site fee scales with guest count.
// The set of variants is closed; resolvers type-switch exhaustively.
type SiteFeeRule interface {
	isSiteFeeRule()
}

// SiteFeeNone: the site fee does not depend on guest count.
type SiteFeeNone struct{}

// SiteFeeProrated: the venue bills a flat package that bundles catering;
// later additions pay the booked price divided by the booked headcount.
type SiteFeeProrated struct{}

// SiteFeeTierMap: an ascending "up to N guests" tier sheet. Deltas are
// the difference between tier totals, not a per-guest rate.
type SiteFeeTierMap struct {
	Tiers []Tier
}

// SiteFeeDayTierMap: a two-axis sheet keyed by day bucket and guest
// bracket. Missing buckets contribute nothing.
type SiteFeeDayTierMap struct {
	Tiers map[DayBucket][]Tier
}

func (SiteFeeNone) isSiteFeeRule()       {}
func (SiteFeeProrated) isSiteFeeRule()   {}
func (SiteFeeTierMap) isSiteFeeRule()    {}
func (SiteFeeDayTierMap) isSiteFeeRule() {}

// =============================================================================
// CATERING RULES
// =============================================================================

// CateringRule describes how the venue's own catering scales.
type CateringRule interface {
	isCateringRule()
}

// CateringNone: the venue provides no catering of its own.
type CateringNone struct{}

// CateringIncluded: catering is bundled into the site fee; guest-count
// increases produce no separate catering delta.
type CateringIncluded struct{}

// CateringPerGuest: each guest above MinGuests is billed at Rate.
// When External is set the rate is not printed on the rule sheet and is
// supplied by a RateSource at computation time.
type CateringPerGuest struct {
	Rate      decimal.Decimal
	MinGuests int
	External  bool
}

func (CateringNone) isCateringRule()     {}
func (CateringIncluded) isCateringRule() {}
func (CateringPerGuest) isCateringRule() {}

// RateSource supplies externally-sourced per-guest catering rates for
// venues whose rule sheet marks the rate External.
type RateSource interface {
	PerGuestRate(venueID string) (decimal.Decimal, bool)
}

// StaticRates is a RateSource backed by a fixed map.
type StaticRates map[string]decimal.Decimal

func (r StaticRates) PerGuestRate(venueID string) (decimal.Decimal, bool) {
	rate, ok := r[venueID]
	return rate, ok
}
