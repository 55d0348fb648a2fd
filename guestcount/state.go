/*
Package guestcount tracks the single authoritative guest count a couple
shares across independently-booked wedding services.

PURPOSE:
  Venue, catering, dessert, and planner boutiques all price against the
  same headcount. This package owns that number: its current value, the
  lock that freezes it once a guest-count-dependent purchase completes,
  and the reasons the lock was applied.

KEY CONCEPTS IN THIS FILE (state.go):
  - State: the guest count plus its lock lifecycle fields
  - LockReason: a tag recording WHY the count became immutable
  - The core invariant: Locked is true exactly when LockedBy is non-empty

LIFECYCLE:
  A user's state starts implicitly as {0, unlocked, no reasons}. The plain
  setter mutates the value until the first booking locks it. From then on
  only SetAndLock (at a purchase) or the administrative Unlock may change
  the value. Lock reasons accumulate as a union; they are never replaced.

SEE ALSO:
  - store.go: The store mediating local cache and the remote record
  - signals.go: Observer interface for UI notification
*/
package guestcount

import "time"

// =============================================================================
// LOCK REASONS
// =============================================================================

// LockReason records which booking froze the guest count.
// Boutique-scoped reasons use a prefix, e.g. "yum:catering".
type LockReason string

const (
	ReasonVenue    LockReason = "venue"
	ReasonCatering LockReason = "catering"
	ReasonDessert  LockReason = "dessert"
	ReasonPlanner  LockReason = "planner"
)

// =============================================================================
// STATE
// =============================================================================

// State is the authoritative guest count and its lock lifecycle.
//
// Invariant: Locked == true exactly when LockedBy is non-empty. Once
// Locked, Value changes only through the atomic SetAndLock path.
type State struct {
	// Value is the current guest count, always >= 0.
	Value int

	// Locked blocks increases through the plain setter path.
	Locked bool

	// LockedBy holds every reason a lock was applied. Union semantics:
	// reasons accumulate and are never overwritten.
	LockedBy []LockReason

	// LockedAt is stamped when the first lock reason is applied.
	LockedAt *time.Time

	// ConfirmedAt is stamped only by SetAndLock, at the moment a
	// guest-count-dependent purchase completes.
	ConfirmedAt *time.Time
}

// HasReason reports whether the given reason is already in LockedBy.
func (s State) HasReason(reason LockReason) bool {
	for _, r := range s.LockedBy {
		if r == reason {
			return true
		}
	}
	return false
}

// withReason returns a copy of the state with reason unioned into
// LockedBy and the lock fields set. LockedAt is stamped only on the
// first lock so repeated locks stay idempotent.
func (s State) withReason(reason LockReason, now time.Time) State {
	next := s.clone()
	if !next.HasReason(reason) {
		next.LockedBy = append(next.LockedBy, reason)
	}
	next.Locked = true
	if next.LockedAt == nil {
		at := now
		next.LockedAt = &at
	}
	return next
}

// clone returns a deep copy so cached states never share slices.
func (s State) clone() State {
	next := s
	if s.LockedBy != nil {
		next.LockedBy = append([]LockReason(nil), s.LockedBy...)
	}
	if s.LockedAt != nil {
		at := *s.LockedAt
		next.LockedAt = &at
	}
	if s.ConfirmedAt != nil {
		at := *s.ConfirmedAt
		next.ConfirmedAt = &at
	}
	return next
}

// clampCount floors a requested count at zero.
func clampCount(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
