/*
Package factory provides JSON to Go pricing-rule conversion.

PURPOSE:
  Converts JSON rule sheets into pricing.Registry entries and planner
  tier tables. This enables venue onboarding without code changes - the
  vendor team can publish a sheet, and the factory builds the proper
  rule variants.

JSON SCHEMA:
  {
    "venues": [
      {
        "id": "grand-oak-hall",
        "name": "Grand Oak Hall",
        "site_fee": {"type": "tier_map",
                     "tiers": [{"threshold": 50, "price": 1250},
                               {"threshold": 100, "price": 1550}]},
        "catering": {"type": "per_guest", "rate": 25, "min_guests": 200},
        "tax_rate": 0.0825
      }
    ],
    "planner_tiers": [
      {"max_guests": 100, "fee": 1550},
      {"max_guests": 150, "fee": 1850},
      {"max_guests": 0, "fee": 2150}
    ]
  }

SITE FEE TYPES:
  none | prorated | tier_map | day_tier_map
  day_tier_map carries "day_tiers" keyed by saturday / friday_or_sunday /
  weekday instead of "tiers".

CATERING TYPES:
  none | included | per_guest
  per_guest with "external": true defers the rate to a RateSource.

SEE ALSO:
  - pricing/rules.go: The rule variants this factory produces
  - api/scenarios.go: Demo data registered through this factory
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bloomday/pricing-engine/pricing"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// SheetJSON is the top-level rule sheet.
type SheetJSON struct {
	Venues       []VenueJSON       `json:"venues"`
	PlannerTiers []PlannerTierJSON `json:"planner_tiers,omitempty"`
}

// VenueJSON is one venue's rule set.
type VenueJSON struct {
	ID       string        `json:"id"`
	Name     string        `json:"name,omitempty"`
	SiteFee  *SiteFeeJSON  `json:"site_fee,omitempty"`
	Catering *CateringJSON `json:"catering,omitempty"`
	TaxRate  float64       `json:"tax_rate,omitempty"`
}

// SiteFeeJSON selects a site-fee strategy.
type SiteFeeJSON struct {
	Type     string                `json:"type"` // none, prorated, tier_map, day_tier_map
	Tiers    []TierJSON            `json:"tiers,omitempty"`
	DayTiers map[string][]TierJSON `json:"day_tiers,omitempty"`
}

// CateringJSON selects a catering strategy.
type CateringJSON struct {
	Type      string  `json:"type"` // none, included, per_guest
	Rate      float64 `json:"rate,omitempty"`
	MinGuests int     `json:"min_guests,omitempty"`
	External  bool    `json:"external,omitempty"`
}

// TierJSON is one {threshold, price} step.
type TierJSON struct {
	Threshold int     `json:"threshold"`
	Price     float64 `json:"price"`
}

// PlannerTierJSON is one planner fee bracket; max_guests 0 marks the
// open-ended top bracket.
type PlannerTierJSON struct {
	MaxGuests int     `json:"max_guests"`
	Fee       float64 `json:"fee"`
}

// =============================================================================
// SHEET FACTORY
// =============================================================================

// RuleFactory converts JSON rule sheets into pricing structures.
type RuleFactory struct{}

func NewRuleFactory() *RuleFactory {
	return &RuleFactory{}
}

// ParseSheet parses a JSON sheet into a populated registry and planner
// table. An absent planner_tiers section falls back to the default table.
func (f *RuleFactory) ParseSheet(jsonStr string) (*pricing.Registry, []pricing.PlannerTier, error) {
	var sheet SheetJSON
	if err := json.Unmarshal([]byte(jsonStr), &sheet); err != nil {
		return nil, nil, fmt.Errorf("failed to parse rule sheet JSON: %w", err)
	}
	return f.FromJSON(sheet)
}

// FromJSON converts a SheetJSON into a registry and planner table.
func (f *RuleFactory) FromJSON(sheet SheetJSON) (*pricing.Registry, []pricing.PlannerTier, error) {
	registry := pricing.NewRegistry()
	for _, vj := range sheet.Venues {
		if vj.ID == "" {
			return nil, nil, fmt.Errorf("venue with empty id in rule sheet")
		}
		rules, err := parseVenue(vj)
		if err != nil {
			return nil, nil, fmt.Errorf("venue %q: %w", vj.ID, err)
		}
		registry.Register(vj.ID, rules)
	}

	planner := pricing.DefaultPlannerTiers()
	if len(sheet.PlannerTiers) > 0 {
		planner = make([]pricing.PlannerTier, 0, len(sheet.PlannerTiers))
		for _, tj := range sheet.PlannerTiers {
			planner = append(planner, pricing.PlannerTier{
				MaxGuests: tj.MaxGuests,
				Fee:       decimal.NewFromFloat(tj.Fee),
			})
		}
	}
	return registry, planner, nil
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseVenue(vj VenueJSON) (pricing.VenueRules, error) {
	rules := pricing.VenueRules{
		Name:    vj.Name,
		TaxRate: decimal.NewFromFloat(vj.TaxRate),
	}

	if vj.SiteFee != nil {
		siteFee, err := parseSiteFee(*vj.SiteFee)
		if err != nil {
			return rules, err
		}
		rules.SiteFee = siteFee
	}

	if vj.Catering != nil {
		catering, err := parseCatering(*vj.Catering)
		if err != nil {
			return rules, err
		}
		rules.Catering = catering
	}
	return rules, nil
}

func parseSiteFee(sj SiteFeeJSON) (pricing.SiteFeeRule, error) {
	switch sj.Type {
	case "", "none":
		return pricing.SiteFeeNone{}, nil
	case "prorated":
		return pricing.SiteFeeProrated{}, nil
	case "tier_map":
		return pricing.SiteFeeTierMap{Tiers: parseTiers(sj.Tiers)}, nil
	case "day_tier_map":
		tiers := make(map[pricing.DayBucket][]pricing.Tier, len(sj.DayTiers))
		for bucket, tj := range sj.DayTiers {
			db, err := parseDayBucket(bucket)
			if err != nil {
				return nil, err
			}
			tiers[db] = parseTiers(tj)
		}
		return pricing.SiteFeeDayTierMap{Tiers: tiers}, nil
	default:
		return nil, fmt.Errorf("unknown site_fee type: %s", sj.Type)
	}
}

func parseCatering(cj CateringJSON) (pricing.CateringRule, error) {
	switch cj.Type {
	case "", "none":
		return pricing.CateringNone{}, nil
	case "included":
		return pricing.CateringIncluded{}, nil
	case "per_guest":
		return pricing.CateringPerGuest{
			Rate:      decimal.NewFromFloat(cj.Rate),
			MinGuests: cj.MinGuests,
			External:  cj.External,
		}, nil
	default:
		return nil, fmt.Errorf("unknown catering type: %s", cj.Type)
	}
}

func parseTiers(tiers []TierJSON) []pricing.Tier {
	out := make([]pricing.Tier, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, pricing.Tier{
			Threshold: t.Threshold,
			Price:     decimal.NewFromFloat(t.Price),
		})
	}
	return out
}

func parseDayBucket(s string) (pricing.DayBucket, error) {
	switch s {
	case "saturday":
		return pricing.BucketSaturday, nil
	case "friday_or_sunday":
		return pricing.BucketFridayOrSunday, nil
	case "weekday":
		return pricing.BucketWeekday, nil
	default:
		return "", fmt.Errorf("unknown day bucket: %s", s)
	}
}
