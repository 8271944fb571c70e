// Package journal persists rulebook profiles and ledger records in SQLite
// and notifies watchers whenever a user's record list changes.
package journal

import (
	"context"
	"errors"
	"time"

	"github.com/rustyeddy/rulebook/ledger"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

// Profile is a registered user. StartingCapital seeds the running balance.
type Profile struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	StartingCapital float64   `json:"starting_capital"`
	PasswordHash    []byte    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
}

// RecordSource yields a user's full record list ordered by creation.
type RecordSource interface {
	ListRecords(ctx context.Context, userID string) ([]ledger.TradeRecord, error)
	Watch(ctx context.Context, userID string) (<-chan []ledger.TradeRecord, error)
}

// ProfileStore owns profiles. Changing the starting capital requires the
// account password.
type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (Profile, error)
	Authenticate(ctx context.Context, email, password string) (Profile, error)
	UpdateStartingCapital(ctx context.Context, userID, password string, amount float64) error
}

// Journal is the writable record store.
type Journal interface {
	RecordSource
	AddRecord(ctx context.Context, rec ledger.TradeRecord) (ledger.TradeRecord, error)
	DeleteRecord(ctx context.Context, userID, id string) error
	Close() error
}
