/*
registry.go - Venue-id lookup for declarative rule sets

PURPOSE:
  Each venue carries exactly one SiteFeeRule and one CateringRule, plus an
  optional tax rate applied to the venue+catering portion of a delta.
  Unknown venue identifiers resolve to {none, none}: they contribute no
  delta rather than failing a computation.

POPULATION:
  Rule sets come from the factory package's JSON sheets at startup, or
  from Register calls in tests and scenarios.
*/
package pricing

import (
	"sync"

	"github.com/shopspring/decimal"
)

// VenueRules is the complete declarative rule set for one venue.
type VenueRules struct {
	Name     string
	SiteFee  SiteFeeRule
	Catering CateringRule

	// TaxRate, when positive, is applied to this venue's site-fee and
	// catering deltas only. Never to the planner delta.
	TaxRate decimal.Decimal
}

// normalized fills nil rule axes with their none variants so resolvers
// can type-switch without nil cases.
func (v VenueRules) normalized() VenueRules {
	if v.SiteFee == nil {
		v.SiteFee = SiteFeeNone{}
	}
	if v.Catering == nil {
		v.Catering = CateringNone{}
	}
	return v
}

// Registry maps venue identifiers to their rule sets.
type Registry struct {
	mu     sync.RWMutex
	venues map[string]VenueRules
}

func NewRegistry() *Registry {
	return &Registry{venues: make(map[string]VenueRules)}
}

// Register adds or replaces a venue's rule set.
func (r *Registry) Register(venueID string, rules VenueRules) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.venues[venueID] = rules.normalized()
}

// Rules resolves a venue identifier. Unknown venues get {none, none}.
func (r *Registry) Rules(venueID string) VenueRules {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rules, ok := r.venues[venueID]; ok {
		return rules
	}
	return VenueRules{SiteFee: SiteFeeNone{}, Catering: CateringNone{}}
}

// Known reports whether a venue identifier has registered rules.
func (r *Registry) Known(venueID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.venues[venueID]
	return ok
}

// VenueIDs returns the registered identifiers (unordered).
func (r *Registry) VenueIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.venues))
	for id := range r.venues {
		ids = append(ids, id)
	}
	return ids
}
