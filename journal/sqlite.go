package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/rustyeddy/rulebook/id"
	"github.com/rustyeddy/rulebook/ledger"
)

// SQLite is the journal backed by a single SQLite file.
type SQLite struct {
	db   *sql.DB
	loc  *time.Location
	now  func() time.Time
	cost int
	log  zerolog.Logger

	hub *hub
}

// Option configures a SQLite journal.
type Option func(*SQLite)

// WithLocation sets the zone record dates are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(j *SQLite) {
		if loc != nil {
			j.loc = loc
		}
	}
}

// WithClock overrides time.Now for CreatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(j *SQLite) {
		if now != nil {
			j.now = now
		}
	}
}

// WithLogger sets the logger used for background failures.
func WithLogger(log zerolog.Logger) Option {
	return func(j *SQLite) {
		j.log = log
	}
}

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(j *SQLite) {
		j.cost = cost
	}
}

var _ Journal = (*SQLite)(nil)
var _ ProfileStore = (*SQLite)(nil)

func NewSQLite(path string, opts ...Option) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	j := &SQLite{
		db:   db,
		loc:  time.Local,
		now:  time.Now,
		cost: bcrypt.DefaultCost,
		log:  zerolog.Nop(),
		hub:  newHub(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Location is the zone record dates are read in.
func (j *SQLite) Location() *time.Location {
	return j.loc
}

// AddRecord normalizes rec, stamps its ID and CreatedAt and stores it.
// A record without a date is dated on the day it is created.
func (j *SQLite) AddRecord(ctx context.Context, rec ledger.TradeRecord) (ledger.TradeRecord, error) {
	if rec.UserID == "" {
		return ledger.TradeRecord{}, fmt.Errorf("record has no user")
	}

	rec = rec.Normalize()
	rec.CreatedAt = j.now().UTC()
	rec.ID = id.NewAt(rec.CreatedAt)
	if rec.Date.IsZero() {
		rec.Date = rec.CreatedAt.In(j.loc)
	}
	rec.Date = j.day(rec.Date)

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO trades
		(id, user_id, date, gross_pl, brokerage, tax, quantity, rules_adhered, kind, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.Date.Format(ledger.DateLayout), rec.GrossPL,
		rec.Brokerage, rec.Tax, rec.Quantity, rec.RulesAdhered, string(rec.Kind),
		rec.Notes, rec.CreatedAt.UnixNano(),
	)
	if err != nil {
		return ledger.TradeRecord{}, fmt.Errorf("insert record: %w", err)
	}

	j.notify(ctx, rec.UserID)
	return rec, nil
}

// DeleteRecord hard-deletes one of userID's records.
func (j *SQLite) DeleteRecord(ctx context.Context, userID, recordID string) error {
	res, err := j.db.ExecContext(ctx, `DELETE FROM trades WHERE id = ? AND user_id = ?`, recordID, userID)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("record %q: %w", recordID, ErrNotFound)
	}

	j.notify(ctx, userID)
	return nil
}

// ResetRecords deletes every record userID owns once password has been
// re-verified. It returns the number of records removed.
func (j *SQLite) ResetRecords(ctx context.Context, userID, password string) (int64, error) {
	if _, err := j.reauthenticate(ctx, userID, password); err != nil {
		return 0, err
	}

	res, err := j.db.ExecContext(ctx, `DELETE FROM trades WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("reset records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	j.notify(ctx, userID)
	return n, nil
}

// Close stops all watchers and closes the database.
func (j *SQLite) Close() error {
	j.hub.closeAll()
	return j.db.Close()
}

func (j *SQLite) day(t time.Time) time.Time {
	t = t.In(j.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, j.loc)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
