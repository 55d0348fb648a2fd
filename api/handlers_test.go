package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloomday/pricing-engine/api"
	"github.com/bloomday/pricing-engine/delta"
	"github.com/bloomday/pricing-engine/factory"
	"github.com/bloomday/pricing-engine/guestcount"
	"github.com/bloomday/pricing-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	store := memory.New()
	counts := guestcount.NewStore(guestcount.NewMemoryCache(), store)

	sheet, err := factory.DefaultSheet()
	require.NoError(t, err)

	engine := delta.NewEngine(store, counts, sheet.Registry)
	engine.PlannerTiers = sheet.PlannerTiers

	h := api.NewHandler(store, counts, engine, nil)
	return api.NewRouter(h)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if out != nil && rr.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), out))
	}
	return rr
}

// =============================================================================
// GUEST COUNT ENDPOINT TESTS
// =============================================================================

func TestGuestCount_SetAndGet(t *testing.T) {
	router := newTestRouter(t)

	var set api.SetGuestCountResponse
	rr := doJSON(t, router, http.MethodPut, "/api/users/u1/guest-count",
		api.SetGuestCountRequest{Count: 120}, &set)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, set.Blocked)
	assert.Equal(t, 120, set.State.Value)
	assert.False(t, set.State.Locked)

	var got api.GuestCountDTO
	rr = doJSON(t, router, http.MethodGet, "/api/users/u1/guest-count", nil, &got)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 120, got.Value)
	assert.Empty(t, got.LockedBy)
}

func TestGuestCount_DefaultState(t *testing.T) {
	router := newTestRouter(t)

	var got api.GuestCountDTO
	rr := doJSON(t, router, http.MethodGet, "/api/users/unseen/guest-count", nil, &got)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, got.Value)
	assert.False(t, got.Locked)
}

func TestGuestCount_LockBlocksSetter(t *testing.T) {
	// GIVEN: a count of 100 locked by a venue purchase
	router := newTestRouter(t)
	doJSON(t, router, http.MethodPut, "/api/users/u1/guest-count",
		api.SetGuestCountRequest{Count: 100}, nil)

	var locked api.GuestCountDTO
	rr := doJSON(t, router, http.MethodPost, "/api/users/u1/guest-count/lock",
		api.LockGuestCountRequest{Reason: "venue"}, &locked)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, locked.Locked)
	assert.Equal(t, []string{"venue"}, locked.LockedBy)
	assert.NotEmpty(t, locked.LockedAt)

	// WHEN: the plain setter tries to change it
	var set api.SetGuestCountResponse
	rr = doJSON(t, router, http.MethodPut, "/api/users/u1/guest-count",
		api.SetGuestCountRequest{Count: 50}, &set)

	// THEN: 200 with blocked=true, value untouched
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, set.Blocked)
	assert.Equal(t, 100, set.State.Value)
}

func TestGuestCount_LockRequiresReason(t *testing.T) {
	router := newTestRouter(t)

	rr := doJSON(t, router, http.MethodPost, "/api/users/u1/guest-count/lock",
		api.LockGuestCountRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, router, http.MethodPost, "/api/users/u1/guest-count/confirm",
		api.ConfirmGuestCountRequest{Count: 100}, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGuestCount_ConfirmSetsAndLocks(t *testing.T) {
	router := newTestRouter(t)

	var got api.GuestCountDTO
	rr := doJSON(t, router, http.MethodPost, "/api/users/u1/guest-count/confirm",
		api.ConfirmGuestCountRequest{Count: 140, Reason: "catering"}, &got)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 140, got.Value)
	assert.True(t, got.Locked)
	assert.Equal(t, []string{"catering"}, got.LockedBy)
	assert.NotEmpty(t, got.ConfirmedAt)
}

func TestGuestCount_UnlockReopensSetter(t *testing.T) {
	router := newTestRouter(t)
	doJSON(t, router, http.MethodPost, "/api/users/u1/guest-count/confirm",
		api.ConfirmGuestCountRequest{Count: 140, Reason: "catering"}, nil)

	var unlocked api.GuestCountDTO
	rr := doJSON(t, router, http.MethodDelete, "/api/users/u1/guest-count/lock", nil, &unlocked)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, unlocked.Locked)
	assert.Empty(t, unlocked.LockedBy)
	assert.Empty(t, unlocked.LockedAt)

	var set api.SetGuestCountResponse
	doJSON(t, router, http.MethodPut, "/api/users/u1/guest-count",
		api.SetGuestCountRequest{Count: 90}, &set)
	assert.False(t, set.Blocked)
	assert.Equal(t, 90, set.State.Value)
}

// =============================================================================
// DELTA ENDPOINT TESTS
// =============================================================================

func TestComputeDeltas_MissingRecord_NotFound(t *testing.T) {
	router := newTestRouter(t)

	rr := doJSON(t, router, http.MethodPost, "/api/users/ghost/deltas",
		api.ComputeDeltasRequest{NewGuestCount: 150}, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestComputeDeltas_FullWedding(t *testing.T) {
	// GIVEN: the full-wedding scenario (4 services at 100 locked guests)
	router := newTestRouter(t)
	rr := doJSON(t, router, http.MethodPost, "/api/scenarios/load",
		api.LoadScenarioRequest{ScenarioID: "full-wedding"}, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	// WHEN: asking for the cost of 100 -> 160
	var res api.DeltaResultDTO
	rr = doJSON(t, router, http.MethodPost, "/api/users/demo-couple/deltas",
		api.ComputeDeltasRequest{NewGuestCount: 160}, &res)
	require.Equal(t, http.StatusOK, rr.Code)

	// THEN: catering 1800 (implied $30/guest), dessert 480 ($8/guest),
	// venue 324.75 (tier step 300 + 8.25% tax), planner 600 (2150-1550)
	assert.Equal(t, 100, res.LockedGuestCount)
	assert.Equal(t, 160, res.NewGuestCount)
	assert.Equal(t, 60, res.AddedGuests)
	require.Len(t, res.Lines, 4)

	byBucket := make(map[string]api.DeltaLineDTO, len(res.Lines))
	for _, line := range res.Lines {
		byBucket[line.Bucket] = line
	}
	assert.InDelta(t, 1800, byBucket["catering"].AddedTotal, 0.001)
	assert.InDelta(t, 480, byBucket["dessert"].AddedTotal, 0.001)
	assert.InDelta(t, 324.75, byBucket["venue"].AddedTotal, 0.001)
	assert.Equal(t, "Grand Oak Hall", byBucket["venue"].Label)
	assert.InDelta(t, 600, byBucket["planner"].AddedTotal, 0.001)
	assert.InDelta(t, 3204.75, res.TotalDelta, 0.001)
}

func TestComputeDeltas_NoIncrease_EmptyBreakdown(t *testing.T) {
	router := newTestRouter(t)
	doJSON(t, router, http.MethodPost, "/api/scenarios/load",
		api.LoadScenarioRequest{ScenarioID: "prorated-venue"}, nil)

	var res api.DeltaResultDTO
	rr := doJSON(t, router, http.MethodPost, "/api/users/demo-couple/deltas",
		api.ComputeDeltasRequest{NewGuestCount: 80}, &res)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, res.AddedGuests)
	assert.Empty(t, res.Lines)
	assert.Zero(t, res.TotalDelta)
}

func TestComputeDeltas_ProratedScenario(t *testing.T) {
	router := newTestRouter(t)
	doJSON(t, router, http.MethodPost, "/api/scenarios/load",
		api.LoadScenarioRequest{ScenarioID: "prorated-venue"}, nil)

	var res api.DeltaResultDTO
	rr := doJSON(t, router, http.MethodPost, "/api/users/demo-couple/deltas",
		api.ComputeDeltasRequest{NewGuestCount: 110}, &res)
	require.Equal(t, http.StatusOK, rr.Code)

	// 15995 / 100 booked guests * 10 added = 1599.50
	require.Len(t, res.Lines, 1)
	assert.Equal(t, "venue", res.Lines[0].Bucket)
	assert.InDelta(t, 1599.50, res.Lines[0].AddedTotal, 0.001)
}

// =============================================================================
// SCENARIO ENDPOINT TESTS
// =============================================================================

func TestScenarios_ListAndCurrent(t *testing.T) {
	router := newTestRouter(t)

	var list []api.ScenarioDTO
	rr := doJSON(t, router, http.MethodGet, "/api/scenarios/", nil, &list)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, list, 4)

	// Nothing loaded yet
	rr = doJSON(t, router, http.MethodGet, "/api/scenarios/current", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "null\n", rr.Body.String())

	doJSON(t, router, http.MethodPost, "/api/scenarios/load",
		api.LoadScenarioRequest{ScenarioID: "tiered-venue"}, nil)

	var current api.ScenarioDTO
	rr = doJSON(t, router, http.MethodGet, "/api/scenarios/current", nil, &current)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "tiered-venue", current.ID)
}

func TestScenarios_UnknownID_Rejected(t *testing.T) {
	router := newTestRouter(t)

	rr := doJSON(t, router, http.MethodPost, "/api/scenarios/load",
		api.LoadScenarioRequest{ScenarioID: "honeymoon"}, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
