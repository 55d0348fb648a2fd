/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
  Provides pre-built scenarios that populate the store with realistic
  booking records. Each scenario exercises one venue pricing strategy so
  the checkout screens can be demoed against every dispatch branch.

AVAILABLE SCENARIOS:
  prorated-venue:   Flat-package venue billed per head (bundled catering)
  tiered-venue:     "Up to N guests" tier sheet + per-guest catering minimum
  day-tiered-venue: Two-axis sheet (day bucket x guest bracket), Saturday
  full-wedding:     Catering + dessert + planner + tiered venue

HOW SCENARIOS WORK:
 1. Reset the store (when the backend supports it)
 2. Save a booking record with purchases
 3. SetAndLock the guest count at the booked headcount

NOTE:
  Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler context
  - factory/presets.go: The venue rule sheet these records price against
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bloomday/pricing-engine/booking"
	"github.com/bloomday/pricing-engine/guestcount"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "prorated-venue",
		Name:        "Prorated Venue",
		Description: "Harborlight Estate: flat package divided by headcount, catering bundled",
	},
	{
		ID:          "tiered-venue",
		Name:        "Tiered Venue",
		Description: "Grand Oak Hall: up-to-N tier sheet, per-guest catering above 200",
	},
	{
		ID:          "day-tiered-venue",
		Name:        "Day-Tiered Venue",
		Description: "The Conservatory: Saturday pricing bracket, externally-rated catering",
	},
	{
		ID:          "full-wedding",
		Name:        "Full Wedding",
		Description: "Venue + catering + dessert + planner all booked at 100 guests",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the store and loads the requested scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	if err := h.resetStore(ctx); err != nil {
		h.Log.Errorw("scenario reset failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to reset store")
		return
	}

	var err error
	switch req.ScenarioID {
	case "prorated-venue":
		err = h.loadProratedVenueScenario(ctx)
	case "tiered-venue":
		err = h.loadTieredVenueScenario(ctx)
	case "day-tiered-venue":
		err = h.loadDayTieredVenueScenario(ctx)
	case "full-wedding":
		err = h.loadFullWeddingScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, "unknown scenario: "+req.ScenarioID)
		return
	}
	if err != nil {
		h.Log.Errorw("scenario load failed", "scenario", req.ScenarioID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load scenario")
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]string{"loaded": req.ScenarioID})
}

type resettable interface {
	Reset(ctx context.Context) error
}

func (h *Handler) resetStore(ctx context.Context) error {
	if r, ok := h.Bookings.(resettable); ok {
		return r.Reset(ctx)
	}
	return nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// DemoUserID is the user every scenario seeds.
const DemoUserID = "demo-couple"

func (h *Handler) loadProratedVenueScenario(ctx context.Context) error {
	rec := &booking.Record{
		UserID:   DemoUserID,
		Bookings: map[booking.Service]bool{booking.ServiceVenue: true},
		VenueID:  "harborlight-estate",
		VenueDay: time.Saturday,
		Purchases: []booking.Purchase{
			purchase("Harborlight all-inclusive package", "venue", "venue", 15995),
		},
	}
	return h.seed(ctx, rec, 100, guestcount.ReasonVenue)
}

func (h *Handler) loadTieredVenueScenario(ctx context.Context) error {
	rec := &booking.Record{
		UserID:   DemoUserID,
		Bookings: map[booking.Service]bool{booking.ServiceVenue: true},
		VenueID:  "grand-oak-hall",
		VenueDay: time.Saturday,
		Purchases: []booking.Purchase{
			purchase("Grand Oak site fee", "venue", "venue", 1550),
		},
	}
	return h.seed(ctx, rec, 90, guestcount.ReasonVenue)
}

func (h *Handler) loadDayTieredVenueScenario(ctx context.Context) error {
	rec := &booking.Record{
		UserID:   DemoUserID,
		Bookings: map[booking.Service]bool{booking.ServiceVenue: true},
		VenueID:  "the-conservatory",
		VenueDay: time.Saturday,
		Purchases: []booking.Purchase{
			purchase("Conservatory Saturday site fee", "venue", "venue", 8900),
		},
	}
	return h.seed(ctx, rec, 120, guestcount.ReasonVenue)
}

func (h *Handler) loadFullWeddingScenario(ctx context.Context) error {
	rec := &booking.Record{
		UserID: DemoUserID,
		Bookings: map[booking.Service]bool{
			booking.ServiceVenue:    true,
			booking.ServiceCatering: true,
			booking.ServiceDessert:  true,
			booking.ServicePlanner:  true,
		},
		VenueID:  "grand-oak-hall",
		VenueDay: time.Saturday,
		Purchases: []booking.Purchase{
			purchase("Grand Oak site fee", "venue", "venue", 1550),
			purchase("Seasonal dinner service", "catering", "yum", 3000),
			purchase("Dessert table", "dessert", "yum", 800),
			purchase("Full planning package", "planner", "planning", 1550),
		},
	}
	return h.seed(ctx, rec, 100, guestcount.ReasonVenue)
}

func (h *Handler) seed(ctx context.Context, rec *booking.Record, guests int, reason guestcount.LockReason) error {
	if err := h.Bookings.SaveRecord(ctx, rec); err != nil {
		return err
	}
	h.Counts.SetAndLock(ctx, rec.UserID, guests, reason)
	return nil
}

func purchase(label, category, boutique string, total float64) booking.Purchase {
	now := time.Now().UTC()
	return booking.Purchase{
		ID:            uuid.NewString(),
		Label:         label,
		Category:      category,
		Boutique:      boutique,
		ContractTotal: decimal.NewFromFloat(total),
		SignedAt:      &now,
	}
}
