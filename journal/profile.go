package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"

	"github.com/rustyeddy/rulebook/id"
)

// CreateProfile registers a new user with a bcrypt-hashed password.
func (j *SQLite) CreateProfile(ctx context.Context, name, email, password string, startingCapital float64) (Profile, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	switch {
	case email == "":
		return Profile{}, fmt.Errorf("email is required")
	case password == "":
		return Profile{}, fmt.Errorf("password is required")
	case name == "":
		return Profile{}, fmt.Errorf("name is required")
	}
	if err := validCapital(startingCapital); err != nil {
		return Profile{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), j.cost)
	if err != nil {
		return Profile{}, fmt.Errorf("hash password: %w", err)
	}

	created := j.now().UTC()
	p := Profile{
		ID:              id.NewAt(created),
		Name:            name,
		Email:           email,
		StartingCapital: startingCapital,
		PasswordHash:    hash,
		CreatedAt:       created,
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, starting_capital, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Email, p.StartingCapital, p.PasswordHash, p.CreatedAt.UnixNano(),
	)
	if err != nil {
		var se sqlite3.Error
		if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
			return Profile{}, fmt.Errorf("%s: %w", email, ErrEmailTaken)
		}
		return Profile{}, fmt.Errorf("insert profile: %w", err)
	}
	return p, nil
}

// GetProfile returns a profile by ID.
func (j *SQLite) GetProfile(ctx context.Context, userID string) (Profile, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT id, name, email, starting_capital, password_hash, created_at
		FROM users WHERE id = ?`, userID)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, fmt.Errorf("profile %q: %w", userID, ErrNotFound)
	}
	return p, err
}

// ProfileByEmail returns the profile registered under email.
func (j *SQLite) ProfileByEmail(ctx context.Context, email string) (Profile, error) {
	email = normalizeEmail(email)
	row := j.db.QueryRowContext(ctx, `
		SELECT id, name, email, starting_capital, password_hash, created_at
		FROM users WHERE email = ?`, email)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, fmt.Errorf("profile %q: %w", email, ErrNotFound)
	}
	return p, err
}

// Authenticate checks email and password. Unknown email and wrong
// password both report ErrInvalidCredentials.
func (j *SQLite) Authenticate(ctx context.Context, email, password string) (Profile, error) {
	p, err := j.ProfileByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return Profile{}, ErrInvalidCredentials
	}
	if err != nil {
		return Profile{}, err
	}
	if bcrypt.CompareHashAndPassword(p.PasswordHash, []byte(password)) != nil {
		return Profile{}, ErrInvalidCredentials
	}
	return p, nil
}

// UpdateStartingCapital changes the capital baseline after re-verifying
// the user's password.
func (j *SQLite) UpdateStartingCapital(ctx context.Context, userID, password string, amount float64) error {
	if err := validCapital(amount); err != nil {
		return err
	}
	if _, err := j.reauthenticate(ctx, userID, password); err != nil {
		return err
	}

	_, err := j.db.ExecContext(ctx, `UPDATE users SET starting_capital = ? WHERE id = ?`, amount, userID)
	if err != nil {
		return fmt.Errorf("update starting capital: %w", err)
	}
	return nil
}

func (j *SQLite) reauthenticate(ctx context.Context, userID, password string) (Profile, error) {
	if password == "" {
		return Profile{}, fmt.Errorf("password is required: %w", ErrInvalidCredentials)
	}
	p, err := j.GetProfile(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	if bcrypt.CompareHashAndPassword(p.PasswordHash, []byte(password)) != nil {
		return Profile{}, ErrInvalidCredentials
	}
	return p, nil
}

func scanProfile(row *sql.Row) (Profile, error) {
	var (
		p       Profile
		created int64
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Email, &p.StartingCapital, &p.PasswordHash, &created); err != nil {
		return Profile{}, err
	}
	p.CreatedAt = time.Unix(0, created).UTC()
	return p, nil
}

func validCapital(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("starting capital must be a non-negative number")
	}
	return nil
}
