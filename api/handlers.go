/*
handlers.go - HTTP API handlers for the guest-count and pricing engine

PURPOSE:
  Exposes the guest-count store and delta engine via REST. Handles HTTP
  request/response and JSON serialization, delegating all business rules
  to the domain packages.

ENDPOINTS:
  Guest count:
    GET    /api/users/{id}/guest-count          Current state
    PUT    /api/users/{id}/guest-count          Plain setter (blocked when locked)
    POST   /api/users/{id}/guest-count/lock     Apply a lock reason
    POST   /api/users/{id}/guest-count/confirm  Atomic set-and-lock (purchase)
    DELETE /api/users/{id}/guest-count/lock     Administrative unlock

  Pricing:
    POST   /api/users/{id}/deltas               Cost of raising the count

  Scenarios:
    GET    /api/scenarios                       List demo scenarios
    POST   /api/scenarios/load                  Load a demo scenario

ERROR HANDLING:
  Blocked setter writes are NOT errors; they return 200 with blocked=true
  so the UI can show the lock notice. 404 covers a missing booking record
  on delta computation, the subsystem's only propagated failure.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bloomday/pricing-engine/booking"
	"github.com/bloomday/pricing-engine/delta"
	"github.com/bloomday/pricing-engine/guestcount"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Bookings booking.Store
	Counts   *guestcount.Store
	Engine   *delta.Engine
	Log      *zap.SugaredLogger

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a handler over the given stores and engine.
func NewHandler(bookings booking.Store, counts *guestcount.Store, engine *delta.Engine, log *zap.SugaredLogger) *Handler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Handler{Bookings: bookings, Counts: counts, Engine: engine, Log: log}
}

// =============================================================================
// GUEST COUNT HANDLERS
// =============================================================================

// GetGuestCount returns the user's current guest-count state.
func (h *Handler) GetGuestCount(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	st := h.Counts.GetState(r.Context(), userID)
	writeJSON(w, http.StatusOK, guestCountDTO(st))
}

// SetGuestCount writes a count through the normal input path.
func (h *Handler) SetGuestCount(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	var req SetGuestCountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	st, blocked := h.Counts.SetCount(r.Context(), userID, req.Count)
	writeJSON(w, http.StatusOK, SetGuestCountResponse{
		State:   guestCountDTO(st),
		Blocked: blocked,
	})
}

// LockGuestCount applies a lock reason.
func (h *Handler) LockGuestCount(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	var req LockGuestCountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Reason == "" {
		writeError(w, http.StatusBadRequest, "reason is required")
		return
	}

	st := h.Counts.Lock(r.Context(), userID, guestcount.LockReason(req.Reason))
	writeJSON(w, http.StatusOK, guestCountDTO(st))
}

// ConfirmGuestCount atomically sets the count and locks it, the path a
// boutique checkout calls when a guest-count-dependent purchase completes.
func (h *Handler) ConfirmGuestCount(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	var req ConfirmGuestCountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Reason == "" {
		writeError(w, http.StatusBadRequest, "reason is required")
		return
	}

	st := h.Counts.SetAndLock(r.Context(), userID, req.Count, guestcount.LockReason(req.Reason))
	writeJSON(w, http.StatusOK, guestCountDTO(st))
}

// UnlockGuestCount clears the lock lifecycle. Administrative path only.
func (h *Handler) UnlockGuestCount(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	st := h.Counts.Unlock(r.Context(), userID)
	writeJSON(w, http.StatusOK, guestCountDTO(st))
}

// =============================================================================
// DELTA HANDLERS
// =============================================================================

// ComputeDeltas returns the per-service cost breakdown for raising the
// user's guest count.
func (h *Handler) ComputeDeltas(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	var req ComputeDeltasRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Engine.ComputeDeltas(r.Context(), userID, req.NewGuestCount)
	if err != nil {
		if errors.Is(err, booking.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "booking record not found")
			return
		}
		h.Log.Errorw("delta computation failed", "user", userID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to compute deltas")
		return
	}
	writeJSON(w, http.StatusOK, deltaResultDTO(result))
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorDTO{Error: msg})
}
