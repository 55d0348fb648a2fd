/*
Package booking holds the per-user booking record the pricing engine
reads: which services are booked, which venue on which day, and the
purchase history used to reconstruct historical per-guest rates.

The record also carries the persisted guest-count fields; the sqlite and
memory stores expose those to guestcount.Store through its RemoteStore
interface so both layers share one document.
*/
package booking

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bloomday/pricing-engine/guestcount"
)

// =============================================================================
// SERVICES
// =============================================================================

// Service identifies one bookable boutique flow.
type Service string

const (
	ServiceVenue    Service = "venue"
	ServiceCatering Service = "catering"
	ServiceDessert  Service = "dessert"
	ServicePlanner  Service = "planner"
)

// =============================================================================
// PURCHASES
// =============================================================================

// Purchase is one signed-contract record. ContractTotal is the amount on
// the contract at signing; the engine divides sums of these by the locked
// guest count to recover per-guest rates.
type Purchase struct {
	ID            string
	Label         string
	Category      string // matches a delta bucket: "venue", "catering", "dessert", "planner"
	Boutique      string
	ContractTotal decimal.Decimal
	SignedAt      *time.Time
}

// =============================================================================
// RECORD
// =============================================================================

// Record is the per-user booking document.
type Record struct {
	UserID string

	// Guest-count fields persisted alongside the bookings. The remote
	// value read through guestcount.Store takes precedence over these
	// when both are available.
	GuestCount            int
	GuestCountLocked      bool
	GuestCountLockedBy    []guestcount.LockReason
	GuestCountLockedAt    *time.Time
	GuestCountConfirmedAt *time.Time

	// Bookings flags which services are booked.
	Bookings map[Service]bool

	// VenueID and VenueDay are set when the venue service is booked.
	VenueID  string
	VenueDay time.Weekday

	Purchases []Purchase
}

// Booked reports whether a service is booked.
func (r *Record) Booked(svc Service) bool {
	if r == nil || r.Bookings == nil {
		return false
	}
	return r.Bookings[svc]
}

// PurchaseTotal sums the contract totals recorded under a category.
func (r *Record) PurchaseTotal(category string) decimal.Decimal {
	total := decimal.Zero
	if r == nil {
		return total
	}
	for _, p := range r.Purchases {
		if p.Category == category {
			total = total.Add(p.ContractTotal)
		}
	}
	return total
}

// GuestState converts the record's persisted guest-count fields into a
// guestcount.State.
func (r *Record) GuestState() guestcount.State {
	return guestcount.State{
		Value:       r.GuestCount,
		Locked:      r.GuestCountLocked,
		LockedBy:    append([]guestcount.LockReason(nil), r.GuestCountLockedBy...),
		LockedAt:    r.GuestCountLockedAt,
		ConfirmedAt: r.GuestCountConfirmedAt,
	}
}

// ApplyGuestState writes a guestcount.State back onto the record fields.
func (r *Record) ApplyGuestState(st guestcount.State) {
	r.GuestCount = st.Value
	r.GuestCountLocked = st.Locked
	r.GuestCountLockedBy = append([]guestcount.LockReason(nil), st.LockedBy...)
	r.GuestCountLockedAt = st.LockedAt
	r.GuestCountConfirmedAt = st.ConfirmedAt
}
