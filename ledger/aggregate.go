package ledger

import (
	"math"
	"time"
)

// State is the derived view of a ledger. It is rebuilt from scratch on
// every change and never stored.
type State struct {
	StartingCapital float64 `json:"starting_capital"`
	WeeklyGoal      float64 `json:"weekly_goal"`
	LifetimeTarget  float64 `json:"lifetime_target"`

	// Balances[0] is the starting capital; Balances[i] is the running
	// balance after the i-th record.
	Balances []float64 `json:"balances"`
	Balance  float64   `json:"balance"`

	NetTotal        float64 `json:"net_total"`
	LifetimeNet     float64 `json:"lifetime_net"`
	TotalBrokerage  float64 `json:"total_brokerage"`
	TotalTax        float64 `json:"total_tax"`
	TotalTradeUnits int     `json:"total_trade_units"`
	TotalWithdrawn  float64 `json:"total_withdrawn"`

	RecordCount     int `json:"record_count"`
	TradeCount      int `json:"trade_count"`
	WithdrawalCount int `json:"withdrawal_count"`
	WinCount        int `json:"win_count"`

	WinRate         float64 `json:"win_rate"`         // 0..1
	DisciplineScore float64 `json:"discipline_score"` // 0..100

	WeekStart           time.Time `json:"week_start"`
	WeeklyNet           float64   `json:"weekly_net"`
	WeeklyProgressPct   float64   `json:"weekly_progress_pct"`
	LifetimeProgressPct float64   `json:"lifetime_progress_pct"`
}

// Aggregate folds records, ordered by CreatedAt, into a State.
//
// Every record moves the running balance and, when dated on or after the
// start of now's week, the weekly net. Withdrawals stop there: net total,
// costs, trade units, wins and the discipline sum only see trades. The
// discipline score is averaged over all records, withdrawals included.
//
// A goal that is zero, negative or NaN yields 0% progress.
func Aggregate(records []TradeRecord, startingCapital, weeklyGoal, lifetimeTarget float64, now time.Time) State {
	st := State{
		StartingCapital: startingCapital,
		WeeklyGoal:      weeklyGoal,
		LifetimeTarget:  lifetimeTarget,
		Balances:        make([]float64, 1, len(records)+1),
		WeekStart:       WeekStart(now),
		RecordCount:     len(records),
	}
	st.Balances[0] = startingCapital

	balance := startingCapital
	var discipline float64

	for _, r := range records {
		net := r.Net()
		balance += net
		st.Balances = append(st.Balances, balance)
		st.LifetimeNet += net

		if InWeek(r.Date, now) {
			st.WeeklyNet += net
		}

		if r.IsWithdrawal() {
			st.WithdrawalCount++
			st.TotalWithdrawn -= net
			continue
		}

		st.NetTotal += net
		st.TotalBrokerage += r.Brokerage
		st.TotalTax += r.Tax
		st.TotalTradeUnits += r.Units()
		if net > 0 {
			st.WinCount++
		}
		discipline += float64(r.RulesAdhered) / ChecklistItems * 100
		st.TradeCount++
	}
	st.Balance = balance

	if st.TradeCount > 0 {
		st.WinRate = float64(st.WinCount) / float64(st.TradeCount)
	}
	if len(records) > 0 {
		st.DisciplineScore = discipline / float64(len(records))
	}
	st.WeeklyProgressPct = progress(st.WeeklyNet, weeklyGoal)
	st.LifetimeProgressPct = progress(st.NetTotal, lifetimeTarget)
	return st
}

// Losses is the number of trades that did not make money.
func (s State) Losses() int {
	return s.TradeCount - s.WinCount
}

func progress(value, goal float64) float64 {
	if !(goal > 0) {
		return 0
	}
	pct := value / goal * 100
	if math.IsNaN(pct) {
		return 0
	}
	return math.Min(math.Max(pct, 0), 100)
}
