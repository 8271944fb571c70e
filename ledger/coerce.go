package ledger

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar format records are entered and exported in.
const DateLayout = "2006-01-02"

// ParseAmount reads a numeric form field. Blank, unparseable, NaN and
// infinite input all read as zero.
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return sanitize(v)
}

// ParseCount reads an integer form field with the same policy as
// ParseAmount. Fractional input is truncated.
func ParseCount(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return int(ParseAmount(s))
}

// ParseDate parses a YYYY-MM-DD day at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
}

// Normalize applies the field defaults Aggregate relies on: non-finite
// amounts become zero, costs are non-negative, the checklist count is
// kept within 0..ChecklistItems and a trade counts at least once.
// Withdrawals carry no costs, count or checklist and never add to the
// balance.
func (r TradeRecord) Normalize() TradeRecord {
	r.Kind = ParseKind(string(r.Kind))
	r.GrossPL = sanitize(r.GrossPL)
	r.Brokerage = nonNegative(sanitize(r.Brokerage))
	r.Tax = nonNegative(sanitize(r.Tax))

	if r.IsWithdrawal() {
		r.GrossPL = -abs(r.GrossPL)
		r.Brokerage, r.Tax = 0, 0
		r.Quantity, r.RulesAdhered = 0, 0
		return r
	}

	if r.Quantity <= 0 {
		r.Quantity = 1
	}
	r.RulesAdhered = min(max(r.RulesAdhered, 0), ChecklistItems)
	return r
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
