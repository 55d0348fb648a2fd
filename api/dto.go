/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/bloomday/pricing-engine/delta"
	"github.com/bloomday/pricing-engine/guestcount"
)

// =============================================================================
// GUEST COUNT
// =============================================================================

// GuestCountDTO represents guest-count state in API responses.
type GuestCountDTO struct {
	Value       int      `json:"value"`
	Locked      bool     `json:"locked"`
	LockedBy    []string `json:"locked_by"`
	LockedAt    string   `json:"locked_at,omitempty"`
	ConfirmedAt string   `json:"confirmed_at,omitempty"`
}

func guestCountDTO(st guestcount.State) GuestCountDTO {
	dto := GuestCountDTO{
		Value:    st.Value,
		Locked:   st.Locked,
		LockedBy: make([]string, 0, len(st.LockedBy)),
	}
	for _, r := range st.LockedBy {
		dto.LockedBy = append(dto.LockedBy, string(r))
	}
	if st.LockedAt != nil {
		dto.LockedAt = st.LockedAt.UTC().Format(time.RFC3339)
	}
	if st.ConfirmedAt != nil {
		dto.ConfirmedAt = st.ConfirmedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

// SetGuestCountRequest is the plain-setter request body.
type SetGuestCountRequest struct {
	Count int `json:"count"`
}

// SetGuestCountResponse reports the resulting state and whether the
// write was blocked by the lock.
type SetGuestCountResponse struct {
	State   GuestCountDTO `json:"state"`
	Blocked bool          `json:"blocked"`
}

// LockGuestCountRequest applies a lock reason.
type LockGuestCountRequest struct {
	Reason string `json:"reason"`
}

// ConfirmGuestCountRequest is the atomic set-and-lock body, sent at the
// moment a guest-count-dependent purchase completes.
type ConfirmGuestCountRequest struct {
	Count  int    `json:"count"`
	Reason string `json:"reason"`
}

// =============================================================================
// DELTAS
// =============================================================================

// ComputeDeltasRequest asks for the cost of raising the guest count.
type ComputeDeltasRequest struct {
	NewGuestCount float64 `json:"new_guest_count"`
}

// DeltaLineDTO is one row of the breakdown.
type DeltaLineDTO struct {
	Bucket      string   `json:"bucket"`
	Label       string   `json:"label"`
	PerGuest    *float64 `json:"per_guest,omitempty"`
	AddedGuests int      `json:"added_guests"`
	AddedTotal  float64  `json:"added_total"`
}

// DeltaResultDTO is the full breakdown plus grand total.
type DeltaResultDTO struct {
	LockedGuestCount int            `json:"locked_guest_count"`
	NewGuestCount    int            `json:"new_guest_count"`
	AddedGuests      int            `json:"added_guests"`
	Lines            []DeltaLineDTO `json:"lines"`
	TotalDelta       float64        `json:"total_delta"`
}

func deltaResultDTO(res *delta.Result) DeltaResultDTO {
	dto := DeltaResultDTO{
		LockedGuestCount: res.LockedGuestCount,
		NewGuestCount:    res.NewGuestCount,
		AddedGuests:      res.AddedGuests,
		Lines:            make([]DeltaLineDTO, 0, len(res.Lines)),
	}
	dto.TotalDelta, _ = res.TotalDelta.Float64()
	for _, line := range res.Lines {
		l := DeltaLineDTO{
			Bucket:      string(line.Bucket),
			Label:       line.Label,
			AddedGuests: line.AddedGuests,
		}
		l.AddedTotal, _ = line.AddedTotal.Float64()
		if line.PerGuest != nil {
			v, _ := line.PerGuest.Float64()
			l.PerGuest = &v
		}
		dto.Lines = append(dto.Lines, l)
	}
	return dto
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes one demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorDTO is the uniform error body.
type ErrorDTO struct {
	Error string `json:"error"`
}
