package guestcount_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloomday/pricing-engine/guestcount"
	"github.com/bloomday/pricing-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore() (*guestcount.Store, *memory.Store) {
	remote := memory.New()
	store := guestcount.NewStore(guestcount.NewMemoryCache(), remote)
	return store, remote
}

// signalRecorder captures observer callbacks.
type signalRecorder struct {
	changed int
	locked  int
	blocked int
}

func (r *signalRecorder) observer() guestcount.ObserverFuncs {
	return guestcount.ObserverFuncs{
		OnChanged: func(string, guestcount.State) { r.changed++ },
		OnLocked:  func(string, guestcount.State) { r.locked++ },
		OnBlocked: func(string, guestcount.State) { r.blocked++ },
	}
}

// =============================================================================
// LIFECYCLE TESTS
// =============================================================================

func TestGetState_FirstRead_DefaultsToZeroUnlocked(t *testing.T) {
	store, _ := newTestStore()

	st := store.GetState(context.Background(), "user-1")

	assert.Equal(t, 0, st.Value)
	assert.False(t, st.Locked)
	assert.Empty(t, st.LockedBy)
	assert.Nil(t, st.LockedAt)
	assert.Nil(t, st.ConfirmedAt)
}

func TestSetCount_WritesLocallyAndPersistsRemotely(t *testing.T) {
	store, remote := newTestStore()
	ctx := context.Background()

	st, blocked := store.SetCount(ctx, "user-1", 120)

	assert.False(t, blocked)
	assert.Equal(t, 120, st.Value)

	// Remote write is asynchronous best-effort
	require.Eventually(t, func() bool {
		remoteSt, found, err := remote.LoadGuestCount(ctx, "user-1")
		return err == nil && found && remoteSt.Value == 120
	}, time.Second, 10*time.Millisecond)
}

func TestSetCount_ClampsNegativeToZero(t *testing.T) {
	store, _ := newTestStore()

	st, blocked := store.SetCount(context.Background(), "user-1", -5)

	assert.False(t, blocked)
	assert.Equal(t, 0, st.Value)
}

// =============================================================================
// LOCK MONOTONICITY TESTS
// =============================================================================

func TestSetCount_WhileLocked_NoOpWithBlockedSignal(t *testing.T) {
	// GIVEN: a locked count of 100
	// WHEN: any sequence of SetCount calls arrives
	// THEN: value and reasons are unchanged; only the blocked signal fires

	store, _ := newTestStore()
	ctx := context.Background()
	rec := &signalRecorder{}
	store.Subscribe(rec.observer())

	store.SetAndLock(ctx, "user-1", 100, guestcount.ReasonVenue)

	for _, n := range []int{150, 90, 0, 300} {
		st, blocked := store.SetCount(ctx, "user-1", n)
		assert.True(t, blocked)
		assert.Equal(t, 100, st.Value)
		assert.Equal(t, []guestcount.LockReason{guestcount.ReasonVenue}, st.LockedBy)
	}
	assert.Equal(t, 4, rec.blocked)
}

func TestLock_Idempotent_ReasonsUnion(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	st := store.Lock(ctx, "user-1", guestcount.ReasonVenue)
	firstLockedAt := st.LockedAt
	require.NotNil(t, firstLockedAt)

	st = store.Lock(ctx, "user-1", guestcount.ReasonVenue)
	assert.Equal(t, []guestcount.LockReason{guestcount.ReasonVenue}, st.LockedBy)

	st = store.Lock(ctx, "user-1", guestcount.ReasonCatering)
	assert.ElementsMatch(t,
		[]guestcount.LockReason{guestcount.ReasonVenue, guestcount.ReasonCatering},
		st.LockedBy)
	assert.True(t, st.Locked)
	// Re-locking does not restamp LockedAt
	assert.Equal(t, *firstLockedAt, *st.LockedAt)
}

func TestLockedImpliesNonEmptyReasons(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	st := store.Lock(ctx, "user-1", guestcount.ReasonDessert)
	assert.True(t, st.Locked)
	assert.NotEmpty(t, st.LockedBy)

	st = store.Unlock(ctx, "user-1")
	assert.False(t, st.Locked)
	assert.Empty(t, st.LockedBy)
}

// =============================================================================
// SET-AND-LOCK TESTS
// =============================================================================

func TestSetAndLock_AtomicWriteWithConfirmation(t *testing.T) {
	store, remote := newTestStore()
	ctx := context.Background()

	st := store.SetAndLock(ctx, "user-1", 140, guestcount.ReasonVenue)

	assert.Equal(t, 140, st.Value)
	assert.True(t, st.Locked)
	assert.NotNil(t, st.LockedAt)
	assert.NotNil(t, st.ConfirmedAt)

	// Persisted synchronously on both layers
	remoteSt, found, err := remote.LoadGuestCount(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 140, remoteSt.Value)
	assert.True(t, remoteSt.Locked)
}

func TestSetAndLock_MayChangeLockedValue(t *testing.T) {
	// SetAndLock is the only path that changes a locked value
	store, _ := newTestStore()
	ctx := context.Background()

	store.SetAndLock(ctx, "user-1", 100, guestcount.ReasonVenue)
	st := store.SetAndLock(ctx, "user-1", 130, guestcount.ReasonCatering)

	assert.Equal(t, 130, st.Value)
	assert.ElementsMatch(t,
		[]guestcount.LockReason{guestcount.ReasonVenue, guestcount.ReasonCatering},
		st.LockedBy)
}

func TestUnlock_ClearsWholeLifecycle(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	store.SetAndLock(ctx, "user-1", 100, guestcount.ReasonVenue)
	st := store.Unlock(ctx, "user-1")

	assert.Equal(t, 100, st.Value) // value survives the unlock
	assert.False(t, st.Locked)
	assert.Empty(t, st.LockedBy)
	assert.Nil(t, st.LockedAt)
	assert.Nil(t, st.ConfirmedAt)

	// Plain setter works again
	st, blocked := store.SetCount(ctx, "user-1", 110)
	assert.False(t, blocked)
	assert.Equal(t, 110, st.Value)
}

// =============================================================================
// RECONCILIATION TESTS
// =============================================================================

func TestGetState_RemoteWinsOverCache(t *testing.T) {
	// GIVEN: the cache holds 80 but the remote record says 120
	// THEN: GetState serves 120 and repairs the cache

	cache := guestcount.NewMemoryCache()
	remote := memory.New()
	store := guestcount.NewStore(cache, remote)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "user-1", guestcount.State{Value: 80}))
	require.NoError(t, remote.SaveGuestCount(ctx, "user-1", guestcount.State{Value: 120}))

	st := store.GetState(ctx, "user-1")
	assert.Equal(t, 120, st.Value)

	cached, found, err := cache.Get(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 120, cached.Value)
}

func TestGetState_RemoteFailure_FallsBackToCache(t *testing.T) {
	cache := guestcount.NewMemoryCache()
	remote := memory.New()
	store := guestcount.NewStore(cache, remote)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "user-1", guestcount.State{Value: 95}))
	remote.FailLoads = true

	st := store.GetState(ctx, "user-1")
	assert.Equal(t, 95, st.Value)
}

func TestSetCount_RemoteFailure_LocalWriteStillApplies(t *testing.T) {
	store, remote := newTestStore()
	ctx := context.Background()
	remote.FailSaves = true

	st, blocked := store.SetCount(ctx, "user-1", 75)

	assert.False(t, blocked)
	assert.Equal(t, 75, st.Value)
	assert.Equal(t, 75, store.GetState(ctx, "user-1").Value)
}

func TestGetState_NoRemote_CacheOnly(t *testing.T) {
	// Unauthenticated sessions run without a remote record
	store := guestcount.NewStore(guestcount.NewMemoryCache(), nil)
	ctx := context.Background()

	store.SetCount(ctx, "anon", 60)
	assert.Equal(t, 60, store.GetState(ctx, "anon").Value)
}

// =============================================================================
// SIGNAL TESTS
// =============================================================================

func TestSignals_FireForEachTransition(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()
	rec := &signalRecorder{}
	store.Subscribe(rec.observer())

	store.SetCount(ctx, "user-1", 50)                          // changed
	store.Lock(ctx, "user-1", guestcount.ReasonVenue)          // locked
	store.SetCount(ctx, "user-1", 70)                          // blocked
	store.SetAndLock(ctx, "user-1", 90, guestcount.ReasonVenue) // changed + locked
	store.Unlock(ctx, "user-1")                                // changed

	assert.Equal(t, 3, rec.changed)
	assert.Equal(t, 2, rec.locked)
	assert.Equal(t, 1, rec.blocked)
}
