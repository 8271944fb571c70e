// Package ledger folds an ordered list of journal entries into the
// derived balance, performance and goal-progress figures shown on the
// dashboard.
package ledger

import (
	"strings"
	"time"
)

// Kind discriminates how a record is treated by Aggregate.
type Kind string

const (
	KindTrade      Kind = "TRADE"
	KindWithdrawal Kind = "WITHDRAWAL"
)

// ChecklistItems is the number of discipline rules a trade can satisfy.
const ChecklistItems = 3

// ParseKind maps free text onto a Kind. Anything that is not a withdrawal
// is a trade.
func ParseKind(s string) Kind {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(KindWithdrawal), "W":
		return KindWithdrawal
	default:
		return KindTrade
	}
}

func (k Kind) String() string {
	if k == KindWithdrawal {
		return string(KindWithdrawal)
	}
	return string(KindTrade)
}

// TradeRecord is one journal entry.
type TradeRecord struct {
	ID     string `json:"id" yaml:"id"`
	UserID string `json:"user_id" yaml:"user_id"`

	// Date is the user-entered calendar day used for weekly bucketing.
	// CreatedAt is the insertion time and defines ledger order.
	Date      time.Time `json:"date" yaml:"date"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	GrossPL      float64 `json:"gross_pl" yaml:"gross_pl"`
	Brokerage    float64 `json:"brokerage" yaml:"brokerage"`
	Tax          float64 `json:"tax" yaml:"tax"`
	Quantity     int     `json:"quantity" yaml:"quantity"`
	RulesAdhered int     `json:"rules_adhered" yaml:"rules_adhered"`
	Kind         Kind    `json:"kind" yaml:"kind"`
	Notes        string  `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Net is gross P&L less brokerage and tax.
func (r TradeRecord) Net() float64 {
	return r.GrossPL - r.Brokerage - r.Tax
}

// IsWithdrawal reports whether the record removes capital rather than
// recording a trade.
func (r TradeRecord) IsWithdrawal() bool {
	return r.Kind == KindWithdrawal
}

// Units is the trade count the record represents. A trade with no
// quantity counts as one.
func (r TradeRecord) Units() int {
	if r.IsWithdrawal() {
		return 0
	}
	if r.Quantity <= 0 {
		return 1
	}
	return r.Quantity
}

// WithUser returns a copy of r owned by userID.
func (r TradeRecord) WithUser(userID string) TradeRecord {
	r.UserID = userID
	return r
}

// NewWithdrawal builds a withdrawal of amount on day. The sign of amount
// is ignored; withdrawals always reduce the balance.
func NewWithdrawal(day time.Time, amount float64, notes string) TradeRecord {
	return TradeRecord{
		Date:    day,
		GrossPL: -abs(sanitize(amount)),
		Kind:    KindWithdrawal,
		Notes:   notes,
	}.Normalize()
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
