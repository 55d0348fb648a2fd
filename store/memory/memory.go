// Package memory provides in-memory store implementations for tests and
// development. It implements booking.Store and guestcount.RemoteStore
// over the same per-user document, mirroring the sqlite backend.
package memory

import (
	"context"
	"sync"

	"github.com/bloomday/pricing-engine/booking"
	"github.com/bloomday/pricing-engine/guestcount"
)

// Store keeps booking records in a map with defensive copies on every
// boundary crossing.
type Store struct {
	mu      sync.RWMutex
	records map[string]*booking.Record

	// FailLoads and FailSaves make every remote guest-count operation
	// return ErrUnavailable; tests use them to exercise I/O degradation.
	FailLoads bool
	FailSaves bool
}

// ErrUnavailable simulates a remote I/O failure.
var ErrUnavailable = errUnavailable{}

type errUnavailable struct{}

func (errUnavailable) Error() string { return "remote store unavailable" }

func New() *Store {
	return &Store{records: make(map[string]*booking.Record)}
}

// =============================================================================
// booking.Store
// =============================================================================

func (s *Store) LoadRecord(_ context.Context, userID string) (*booking.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[userID]
	if !ok {
		return nil, booking.ErrRecordNotFound
	}
	return cloneRecord(rec), nil
}

func (s *Store) SaveRecord(_ context.Context, rec *booking.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.UserID] = cloneRecord(rec)
	return nil
}

func (s *Store) AddPurchase(_ context.Context, userID string, p booking.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		rec = &booking.Record{UserID: userID, Bookings: make(map[booking.Service]bool)}
		s.records[userID] = rec
	}
	rec.Purchases = append(rec.Purchases, p)
	return nil
}

// Reset drops all records (scenario loading).
func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]*booking.Record)
	return nil
}

// =============================================================================
// guestcount.RemoteStore
// =============================================================================

func (s *Store) LoadGuestCount(_ context.Context, userID string) (guestcount.State, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailLoads {
		return guestcount.State{}, false, ErrUnavailable
	}
	rec, ok := s.records[userID]
	if !ok {
		return guestcount.State{}, false, nil
	}
	return rec.GuestState(), true, nil
}

func (s *Store) SaveGuestCount(_ context.Context, userID string, st guestcount.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSaves {
		return ErrUnavailable
	}
	rec, ok := s.records[userID]
	if !ok {
		rec = &booking.Record{UserID: userID, Bookings: make(map[booking.Service]bool)}
		s.records[userID] = rec
	}
	rec.ApplyGuestState(st)
	return nil
}

// =============================================================================
// COPY HELPERS
// =============================================================================

func cloneRecord(rec *booking.Record) *booking.Record {
	out := *rec
	out.Bookings = make(map[booking.Service]bool, len(rec.Bookings))
	for k, v := range rec.Bookings {
		out.Bookings[k] = v
	}
	out.Purchases = append([]booking.Purchase(nil), rec.Purchases...)
	out.GuestCountLockedBy = append([]guestcount.LockReason(nil), rec.GuestCountLockedBy...)
	if rec.GuestCountLockedAt != nil {
		at := *rec.GuestCountLockedAt
		out.GuestCountLockedAt = &at
	}
	if rec.GuestCountConfirmedAt != nil {
		at := *rec.GuestCountConfirmedAt
		out.GuestCountConfirmedAt = &at
	}
	return &out
}
