/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements booking.Store and guestcount.RemoteStore over one per-user
  booking document. In production the same patterns apply to PostgreSQL -
  only minor SQL dialect differences.

KEY TABLES:
  booking_records: One row per user - guest-count fields, booked services,
                   venue id + day of week
  purchases:       Signed-contract records used to reconstruct historical
                   per-guest rates

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block and crash recovery improves.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

USAGE:
  store, err := sqlite.New("./data/bloomday.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - booking/store.go: Interface definition
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/bloomday/pricing-engine/booking"
	"github.com/bloomday/pricing-engine/guestcount"
)

// Store implements the storage interfaces using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS booking_records (
		user_id TEXT PRIMARY KEY,
		guest_count INTEGER NOT NULL DEFAULT 0,
		guest_locked INTEGER NOT NULL DEFAULT 0,
		locked_by TEXT NOT NULL DEFAULT '[]',
		locked_at TEXT,
		confirmed_at TEXT,
		bookings TEXT NOT NULL DEFAULT '{}',
		venue_id TEXT NOT NULL DEFAULT '',
		venue_day INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS purchases (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		boutique TEXT NOT NULL DEFAULT '',
		contract_total TEXT NOT NULL,
		signed_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_purchases_user ON purchases(user_id);
	CREATE INDEX IF NOT EXISTS idx_purchases_user_category ON purchases(user_id, category);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// booking.Store
// =============================================================================

// LoadRecord returns the user's booking record with its purchases.
func (s *Store) LoadRecord(ctx context.Context, userID string) (*booking.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT guest_count, guest_locked, locked_by, locked_at, confirmed_at,
		       bookings, venue_id, venue_day
		FROM booking_records WHERE user_id = ?`, userID)

	var (
		rec         = booking.Record{UserID: userID}
		locked      int
		lockedByRaw string
		lockedAt    sql.NullString
		confirmedAt sql.NullString
		bookingsRaw string
		venueDay    int
	)
	err := row.Scan(&rec.GuestCount, &locked, &lockedByRaw, &lockedAt,
		&confirmedAt, &bookingsRaw, &rec.VenueID, &venueDay)
	if err == sql.ErrNoRows {
		return nil, booking.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking record: %w", err)
	}

	rec.GuestCountLocked = locked != 0
	rec.VenueDay = time.Weekday(venueDay)
	if err := json.Unmarshal([]byte(lockedByRaw), &rec.GuestCountLockedBy); err != nil {
		rec.GuestCountLockedBy = nil
	}
	if err := json.Unmarshal([]byte(bookingsRaw), &rec.Bookings); err != nil {
		rec.Bookings = map[booking.Service]bool{}
	}
	rec.GuestCountLockedAt = parseTime(lockedAt)
	rec.GuestCountConfirmedAt = parseTime(confirmedAt)

	purchases, err := s.loadPurchases(ctx, userID)
	if err != nil {
		return nil, err
	}
	rec.Purchases = purchases
	return &rec, nil
}

// SaveRecord upserts the record row and replaces its purchases.
func (s *Store) SaveRecord(ctx context.Context, rec *booking.Record) error {
	lockedBy, err := json.Marshal(lockReasons(rec.GuestCountLockedBy))
	if err != nil {
		return err
	}
	bookings, err := json.Marshal(serviceFlags(rec.Bookings))
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO booking_records
			(user_id, guest_count, guest_locked, locked_by, locked_at,
			 confirmed_at, bookings, venue_id, venue_day, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			guest_count = excluded.guest_count,
			guest_locked = excluded.guest_locked,
			locked_by = excluded.locked_by,
			locked_at = excluded.locked_at,
			confirmed_at = excluded.confirmed_at,
			bookings = excluded.bookings,
			venue_id = excluded.venue_id,
			venue_day = excluded.venue_day,
			updated_at = excluded.updated_at`,
		rec.UserID, rec.GuestCount, boolInt(rec.GuestCountLocked), string(lockedBy),
		formatTime(rec.GuestCountLockedAt), formatTime(rec.GuestCountConfirmedAt),
		string(bookings), rec.VenueID, int(rec.VenueDay), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save booking record: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM purchases WHERE user_id = ?`, rec.UserID); err != nil {
		return fmt.Errorf("failed to clear purchases: %w", err)
	}
	for _, p := range rec.Purchases {
		if err := insertPurchase(ctx, tx, rec.UserID, p); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// AddPurchase appends a purchase, creating the record row if needed.
func (s *Store) AddPurchase(ctx context.Context, userID string, p booking.Purchase) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO booking_records (user_id, updated_at) VALUES (?, ?)
		ON CONFLICT(user_id) DO NOTHING`,
		userID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to ensure booking record: %w", err)
	}
	if err := insertPurchase(ctx, tx, userID, p); err != nil {
		return err
	}
	return tx.Commit()
}

// Reset drops all rows. Scenario loading only.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM purchases`); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM booking_records`)
	return err
}

func (s *Store) loadPurchases(ctx context.Context, userID string) ([]booking.Purchase, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label, category, boutique, contract_total, signed_at
		FROM purchases WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchases: %w", err)
	}
	defer rows.Close()

	var purchases []booking.Purchase
	for rows.Next() {
		var (
			p        booking.Purchase
			total    string
			signedAt sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Label, &p.Category, &p.Boutique, &total, &signedAt); err != nil {
			return nil, err
		}
		amount, err := decimal.NewFromString(total)
		if err != nil {
			// A malformed stored total degrades to zero; the engine then
			// emits no line for the bucket instead of failing.
			amount = decimal.Zero
		}
		p.ContractTotal = amount
		p.SignedAt = parseTime(signedAt)
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

func insertPurchase(ctx context.Context, tx *sql.Tx, userID string, p booking.Purchase) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO purchases (id, user_id, label, category, boutique, contract_total, signed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, userID, p.Label, p.Category, p.Boutique,
		p.ContractTotal.String(), formatTime(p.SignedAt))
	if err != nil {
		return fmt.Errorf("failed to insert purchase: %w", err)
	}
	return nil
}

// =============================================================================
// guestcount.RemoteStore
// =============================================================================

// LoadGuestCount reads the guest-count fields from the user's record.
func (s *Store) LoadGuestCount(ctx context.Context, userID string) (guestcount.State, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT guest_count, guest_locked, locked_by, locked_at, confirmed_at
		FROM booking_records WHERE user_id = ?`, userID)

	var (
		st          guestcount.State
		locked      int
		lockedByRaw string
		lockedAt    sql.NullString
		confirmedAt sql.NullString
	)
	err := row.Scan(&st.Value, &locked, &lockedByRaw, &lockedAt, &confirmedAt)
	if err == sql.ErrNoRows {
		return guestcount.State{}, false, nil
	}
	if err != nil {
		return guestcount.State{}, false, fmt.Errorf("failed to load guest count: %w", err)
	}

	st.Locked = locked != 0
	if err := json.Unmarshal([]byte(lockedByRaw), &st.LockedBy); err != nil {
		st.LockedBy = nil
	}
	st.LockedAt = parseTime(lockedAt)
	st.ConfirmedAt = parseTime(confirmedAt)
	return st, true, nil
}

// SaveGuestCount upserts the guest-count fields of the user's record.
func (s *Store) SaveGuestCount(ctx context.Context, userID string, st guestcount.State) error {
	lockedBy, err := json.Marshal(lockReasons(st.LockedBy))
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO booking_records
			(user_id, guest_count, guest_locked, locked_by, locked_at, confirmed_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			guest_count = excluded.guest_count,
			guest_locked = excluded.guest_locked,
			locked_by = excluded.locked_by,
			locked_at = excluded.locked_at,
			confirmed_at = excluded.confirmed_at,
			updated_at = excluded.updated_at`,
		userID, st.Value, boolInt(st.Locked), string(lockedBy),
		formatTime(st.LockedAt), formatTime(st.ConfirmedAt),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save guest count: %w", err)
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// lockReasons normalizes nil to an empty slice so the column holds '[]'.
func lockReasons(reasons []guestcount.LockReason) []guestcount.LockReason {
	if reasons == nil {
		return []guestcount.LockReason{}
	}
	return reasons
}

func serviceFlags(bookings map[booking.Service]bool) map[booking.Service]bool {
	if bookings == nil {
		return map[booking.Service]bool{}
	}
	return bookings
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(v sql.NullString) *time.Time {
	if !v.Valid || v.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, v.String)
	if err != nil {
		return nil
	}
	return &t
}
