/*
presets.go - Built-in rule sheet for development and demos

The default sheet covers one venue per site-fee strategy so the demo
scenarios and handler tests can exercise every dispatch branch. Real
deployments load their own sheet via RULES_PATH.
*/
package factory

import "github.com/bloomday/pricing-engine/pricing"

// DefaultSheetJSON is the built-in rule sheet.
const DefaultSheetJSON = `{
  "venues": [
    {
      "id": "harborlight-estate",
      "name": "Harborlight Estate",
      "site_fee": {"type": "prorated"},
      "catering": {"type": "included"}
    },
    {
      "id": "grand-oak-hall",
      "name": "Grand Oak Hall",
      "site_fee": {
        "type": "tier_map",
        "tiers": [
          {"threshold": 50, "price": 1250},
          {"threshold": 100, "price": 1550},
          {"threshold": 150, "price": 1850}
        ]
      },
      "catering": {"type": "per_guest", "rate": 25, "min_guests": 200},
      "tax_rate": 0.0825
    },
    {
      "id": "the-conservatory",
      "name": "The Conservatory",
      "site_fee": {
        "type": "day_tier_map",
        "day_tiers": {
          "saturday": [
            {"threshold": 100, "price": 7500},
            {"threshold": 150, "price": 8900},
            {"threshold": 200, "price": 10400}
          ],
          "friday_or_sunday": [
            {"threshold": 100, "price": 6200},
            {"threshold": 150, "price": 7300},
            {"threshold": 200, "price": 8600}
          ],
          "weekday": [
            {"threshold": 100, "price": 4800},
            {"threshold": 150, "price": 5600},
            {"threshold": 200, "price": 6500}
          ]
        }
      },
      "catering": {"type": "per_guest", "external": true, "min_guests": 120}
    }
  ],
  "planner_tiers": [
    {"max_guests": 100, "fee": 1550},
    {"max_guests": 150, "fee": 1850},
    {"max_guests": 0, "fee": 2150}
  ]
}`

// SheetResult bundles a parsed sheet's outputs.
type SheetResult struct {
	Registry     *pricing.Registry
	PlannerTiers []pricing.PlannerTier
}

// DefaultSheet parses the built-in sheet. Failure means the constant
// above was edited into invalidity.
func DefaultSheet() (*SheetResult, error) {
	registry, planner, err := NewRuleFactory().ParseSheet(DefaultSheetJSON)
	if err != nil {
		return nil, err
	}
	return &SheetResult{Registry: registry, PlannerTiers: planner}, nil
}
