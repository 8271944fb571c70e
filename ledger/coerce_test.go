package ledger

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"   ", 0},
		{"abc", 0},
		{"12.5", 12.5},
		{" -40 ", -40},
		{"NaN", 0},
		{"Inf", 0},
		{"1e3", 1000},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAmount(tt.in))
		})
	}
}

func TestParseCount(t *testing.T) {
	assert.Equal(t, 0, ParseCount(""))
	assert.Equal(t, 3, ParseCount("3"))
	assert.Equal(t, 2, ParseCount("2.9"))
	assert.Equal(t, 0, ParseCount("x"))
}

func TestParseKind(t *testing.T) {
	assert.Equal(t, KindWithdrawal, ParseKind("withdrawal"))
	assert.Equal(t, KindWithdrawal, ParseKind(" WITHDRAWAL "))
	assert.Equal(t, KindTrade, ParseKind(""))
	assert.Equal(t, KindTrade, ParseKind("TRADE"))
	assert.Equal(t, KindTrade, ParseKind("something"))
	assert.Equal(t, "TRADE", Kind("").String())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-05-13", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("13/05/2024", time.UTC)
	assert.Error(t, err)
}

func TestNormalizeTrade(t *testing.T) {
	r := TradeRecord{
		GrossPL:      math.NaN(),
		Brokerage:    -3,
		Tax:          math.Inf(1),
		RulesAdhered: 7,
	}.Normalize()

	assert.Equal(t, KindTrade, r.Kind)
	assert.Zero(t, r.GrossPL)
	assert.Zero(t, r.Brokerage)
	assert.Zero(t, r.Tax)
	assert.Equal(t, 1, r.Quantity)
	assert.Equal(t, ChecklistItems, r.RulesAdhered)

	r = TradeRecord{RulesAdhered: -2, Quantity: 3}.Normalize()
	assert.Zero(t, r.RulesAdhered)
	assert.Equal(t, 3, r.Quantity)
}

func TestNormalizeWithdrawal(t *testing.T) {
	r := TradeRecord{
		Kind:         KindWithdrawal,
		GrossPL:      250,
		Brokerage:    5,
		Tax:          2,
		Quantity:     1,
		RulesAdhered: 3,
	}.Normalize()

	assert.Equal(t, -250.0, r.GrossPL)
	assert.Zero(t, r.Brokerage)
	assert.Zero(t, r.Tax)
	assert.Zero(t, r.Quantity)
	assert.Zero(t, r.RulesAdhered)
	assert.Zero(t, r.Units())
	assert.Equal(t, -250.0, r.Net())
}

func TestNewWithdrawal(t *testing.T) {
	d := time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC)

	for _, amount := range []float64{500, -500} {
		w := NewWithdrawal(d, amount, "payout")
		assert.True(t, w.IsWithdrawal())
		assert.Equal(t, -500.0, w.GrossPL)
		assert.Equal(t, "payout", w.Notes)
		assert.Equal(t, d, w.Date)
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want time.Time
	}{
		{"monday midday", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"monday midnight", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"wednesday", time.Date(2024, 1, 3, 23, 59, 0, 0, time.UTC), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"sunday", time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"across month", time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC), time.Date(2024, 2, 26, 0, 0, 0, 0, time.UTC)},
		{"across year", time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC), time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeekStart(tt.at)
			assert.True(t, got.Equal(tt.want), "got %s want %s", got, tt.want)
			assert.Equal(t, time.Monday, got.Weekday())
			assert.False(t, got.After(tt.at))
		})
	}
}

func TestWeekStartKeepsLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	at := time.Date(2024, 5, 15, 1, 0, 0, 0, loc)

	got := WeekStart(at)

	assert.Equal(t, loc, got.Location())
	assert.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, loc), got)
	assert.True(t, InWeek(time.Date(2024, 5, 13, 0, 0, 0, 0, loc), at))
	assert.False(t, InWeek(time.Date(2024, 5, 12, 0, 0, 0, 0, loc), at))
}
