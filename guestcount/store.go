/*
store.go - The guest-count store: local cache + remote record mediation

PURPOSE:
  Single source of truth for a user's guest count and lock state. Reads
  come from the local cache first and are then reconciled against the
  remote per-user record (remote wins on conflict). Writes land in the
  cache synchronously so the UI stays responsive; the remote write is
  best effort.

OPERATIONS:
  GetState:   cache-first read, remote reconciliation when available
  SetCount:   plain setter, a no-op + ChangeBlocked signal when locked
  Lock:       unions a reason into LockedBy, stamps LockedAt
  SetAndLock: atomic count write + lock + ConfirmedAt (purchase moment)
  Unlock:     administrative reset of the whole lock lifecycle

CONSISTENCY MODEL:
  The lock is a business state, not a mutex. Within one session writes are
  single-flow; two sessions racing on SetCount resolve as last network
  write wins, and the next GetState reconciles from remote. A crash
  between the cache write and the remote write leaves the layers diverged
  until that reconciliation. This relaxed model is intentional.

ERRORS:
  No I/O failure is surfaced to the caller. Remote read failures fall back
  to the cached state; remote write failures are logged and dropped.
*/
package guestcount

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// =============================================================================
// REMOTE RECORD
// =============================================================================

// RemoteStore persists guest-count state on the per-user booking record.
// Implementations: store/sqlite (production), store/memory (tests/dev).
type RemoteStore interface {
	// LoadGuestCount returns the persisted state and whether a record exists.
	LoadGuestCount(ctx context.Context, userID string) (State, bool, error)

	// SaveGuestCount upserts the guest-count fields of the user's record.
	SaveGuestCount(ctx context.Context, userID string, state State) error
}

// =============================================================================
// STORE
// =============================================================================

// Store mediates between the local cache and the remote record.
// Construct one per process and inject it; it is safe for concurrent use.
type Store struct {
	cache  Cache
	remote RemoteStore // nil when no authenticated session exists
	log    *zap.SugaredLogger
	now    func() time.Time

	mu        sync.Mutex // serializes read-modify-write cycles
	observers []Observer
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for swallowed I/O failures.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *Store) { s.log = log }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a store over the given cache and remote record.
// Pass a nil remote for unauthenticated sessions; the store then runs
// cache-only.
func NewStore(cache Cache, remote RemoteStore, opts ...Option) *Store {
	s := &Store{
		cache:  cache,
		remote: remote,
		log:    zap.NewNop().Sugar(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers an observer for state signals.
func (s *Store) Subscribe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// =============================================================================
// READS
// =============================================================================

// GetState returns the current state for a user. The local cache answers
// first; when a remote record exists its value overwrites the cache.
// On remote failure the (possibly stale) cached state is returned.
func (s *Store) GetState(ctx context.Context, userID string) State {
	st, cached, err := s.cache.Get(ctx, userID)
	if err != nil {
		s.log.Warnw("guest count cache read failed", "user", userID, "err", err)
		cached = false
	}
	if !cached {
		st = State{}
	}

	if s.remote != nil {
		remote, found, err := s.remote.LoadGuestCount(ctx, userID)
		switch {
		case err != nil:
			s.log.Warnw("guest count remote read failed, serving cache",
				"user", userID, "err", err)
		case found:
			st = remote
			if err := s.cache.Put(ctx, userID, st); err != nil {
				s.log.Warnw("guest count cache write failed", "user", userID, "err", err)
			}
		}
	}
	return st
}

// =============================================================================
// WRITES
// =============================================================================

// SetCount writes a new guest count through the normal input path.
// When the state is locked the call is a no-op apart from the
// ChangeBlocked signal; blocked reports which case applied. The value is
// clamped at zero, written to the cache synchronously, and persisted to
// the remote record asynchronously best effort.
func (s *Store) SetCount(ctx context.Context, userID string, next int) (State, bool) {
	s.mu.Lock()
	st := s.GetState(ctx, userID)
	if st.Locked {
		s.mu.Unlock()
		s.notifyBlocked(userID, st)
		return st, true
	}

	st = st.clone()
	st.Value = clampCount(next)
	s.putCache(ctx, userID, st)
	s.mu.Unlock()

	s.persistAsync(ctx, userID, st)
	s.notifyChanged(userID, st)
	return st, false
}

// Lock unions reason into LockedBy and marks the state locked.
// Idempotent: repeated locks only grow the reason set. Both the cache and
// the remote record are persisted before the CountLocked signal fires.
func (s *Store) Lock(ctx context.Context, userID string, reason LockReason) State {
	s.mu.Lock()
	st := s.GetState(ctx, userID).withReason(reason, s.now())
	s.putCache(ctx, userID, st)
	s.mu.Unlock()

	s.persist(ctx, userID, st)
	s.notifyLocked(userID, st)
	return st
}

// SetAndLock atomically writes the clamped value and applies the lock,
// additionally stamping ConfirmedAt. Called exactly at the moment a
// guest-count-dependent purchase completes; it is the only path that may
// change a locked value.
func (s *Store) SetAndLock(ctx context.Context, userID string, value int, reason LockReason) State {
	s.mu.Lock()
	now := s.now()
	st := s.GetState(ctx, userID).clone()
	st.Value = clampCount(value)
	st = st.withReason(reason, now)
	confirmed := now
	st.ConfirmedAt = &confirmed
	s.putCache(ctx, userID, st)
	s.mu.Unlock()

	s.persist(ctx, userID, st)
	s.notifyChanged(userID, st)
	s.notifyLocked(userID, st)
	return st
}

// Unlock clears the whole lock lifecycle. Administrative/debug path only;
// it is not exposed through the normal booking UI.
func (s *Store) Unlock(ctx context.Context, userID string) State {
	s.mu.Lock()
	st := s.GetState(ctx, userID).clone()
	st.Locked = false
	st.LockedBy = nil
	st.LockedAt = nil
	st.ConfirmedAt = nil
	s.putCache(ctx, userID, st)
	s.mu.Unlock()

	s.persist(ctx, userID, st)
	s.notifyChanged(userID, st)
	return st
}

// =============================================================================
// INTERNALS
// =============================================================================

func (s *Store) putCache(ctx context.Context, userID string, st State) {
	if err := s.cache.Put(ctx, userID, st); err != nil {
		s.log.Warnw("guest count cache write failed", "user", userID, "err", err)
	}
}

// persist writes the remote record, swallowing failure.
func (s *Store) persist(ctx context.Context, userID string, st State) {
	if s.remote == nil {
		return
	}
	if err := s.remote.SaveGuestCount(ctx, userID, st); err != nil {
		s.log.Warnw("guest count remote write failed", "user", userID, "err", err)
	}
}

// persistAsync dispatches the remote write after the local write has
// completed. Detached from the request context so an aborted request
// does not cancel the write mid-flight; a stale write may be overwritten
// by a later one (last write wins).
func (s *Store) persistAsync(ctx context.Context, userID string, st State) {
	if s.remote == nil {
		return
	}
	go s.persist(context.WithoutCancel(ctx), userID, st)
}

func (s *Store) snapshotObservers() []Observer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Observer(nil), s.observers...)
}

func (s *Store) notifyChanged(userID string, st State) {
	for _, o := range s.snapshotObservers() {
		o.CountChanged(userID, st)
	}
}

func (s *Store) notifyLocked(userID string, st State) {
	for _, o := range s.snapshotObservers() {
		o.CountLocked(userID, st)
	}
}

func (s *Store) notifyBlocked(userID string, st State) {
	for _, o := range s.snapshotObservers() {
		o.ChangeBlocked(userID, st)
	}
}
