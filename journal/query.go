package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/rulebook/id"
	"github.com/rustyeddy/rulebook/ledger"
)

const recordColumns = `id, user_id, date, gross_pl, brokerage, tax, quantity, rules_adhered, kind, notes, created_at`

type scanner interface {
	Scan(dest ...any) error
}

// GetRecord returns a single record by ID.
func (j *SQLite) GetRecord(ctx context.Context, recordID string) (ledger.TradeRecord, error) {
	if _, err := id.Time(recordID); err != nil {
		return ledger.TradeRecord{}, fmt.Errorf("record %q: %w", recordID, ErrNotFound)
	}
	row := j.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM trades WHERE id = ?`, recordID)

	rec, err := j.scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.TradeRecord{}, fmt.Errorf("record %q: %w", recordID, ErrNotFound)
		}
		return ledger.TradeRecord{}, err
	}
	return rec, nil
}

// ListRecords returns all of userID's records in insertion order.
func (j *SQLite) ListRecords(ctx context.Context, userID string) ([]ledger.TradeRecord, error) {
	return j.query(ctx, `
		SELECT `+recordColumns+`
		FROM trades
		WHERE user_id = ?
		ORDER BY created_at ASC, id ASC`, userID)
}

// ListRecordsBetween returns userID's records dated within [start, end),
// ordered by date then insertion.
func (j *SQLite) ListRecordsBetween(ctx context.Context, userID string, start, end time.Time) ([]ledger.TradeRecord, error) {
	from := j.day(start).Format(ledger.DateLayout)
	to := j.day(end)
	if !to.Equal(end.In(j.loc)) {
		// end falls inside a day: that day is included
		to = to.AddDate(0, 0, 1)
	}

	return j.query(ctx, `
		SELECT `+recordColumns+`
		FROM trades
		WHERE user_id = ? AND date >= ? AND date < ?
		ORDER BY date ASC, created_at ASC, id ASC`,
		userID, from, to.Format(ledger.DateLayout))
}

func (j *SQLite) query(ctx context.Context, q string, args ...any) ([]ledger.TradeRecord, error) {
	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ledger.TradeRecord{}
	for rows.Next() {
		rec, err := j.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (j *SQLite) scanRecord(s scanner) (ledger.TradeRecord, error) {
	var (
		rec     ledger.TradeRecord
		date    string
		kind    string
		created int64
	)
	err := s.Scan(
		&rec.ID,
		&rec.UserID,
		&date,
		&rec.GrossPL,
		&rec.Brokerage,
		&rec.Tax,
		&rec.Quantity,
		&rec.RulesAdhered,
		&kind,
		&rec.Notes,
		&created,
	)
	if err != nil {
		return ledger.TradeRecord{}, err
	}

	rec.Kind = ledger.ParseKind(kind)
	rec.CreatedAt = time.Unix(0, created).UTC()
	rec.Date, err = ledger.ParseDate(date, j.loc)
	if err != nil {
		return ledger.TradeRecord{}, fmt.Errorf("record %s: bad date %q: %w", rec.ID, date, err)
	}
	return rec, nil
}
