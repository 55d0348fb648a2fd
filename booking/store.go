package booking

import (
	"context"
	"errors"
)

// ErrRecordNotFound is returned by LoadRecord when no booking record
// exists for the user. This is the only failure the pricing engine
// propagates to its caller.
var ErrRecordNotFound = errors.New("booking record not found")

// Store persists per-user booking records.
// Implementations: store/sqlite (production), store/memory (tests/dev).
// Both also implement guestcount.RemoteStore over the same document.
type Store interface {
	// LoadRecord returns the user's booking record with purchases.
	LoadRecord(ctx context.Context, userID string) (*Record, error)

	// SaveRecord upserts a booking record, replacing its purchases.
	SaveRecord(ctx context.Context, rec *Record) error

	// AddPurchase appends a purchase to the user's record, creating the
	// record if needed.
	AddPurchase(ctx context.Context, userID string, p Purchase) error
}
