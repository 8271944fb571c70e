package server

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/rulebook/ledger"
)

var errMissingFields = errors.New("date and P&L are required")

func (req recordRequest) record(loc *time.Location) (ledger.TradeRecord, error) {
	if strings.TrimSpace(req.Date) == "" || strings.TrimSpace(req.PL) == "" {
		return ledger.TradeRecord{}, errMissingFields
	}
	day, err := ledger.ParseDate(req.Date, loc)
	if err != nil {
		return ledger.TradeRecord{}, fmt.Errorf("date must be YYYY-MM-DD")
	}
	pl, err := strconv.ParseFloat(strings.TrimSpace(req.PL), 64)
	if err != nil || math.IsNaN(pl) || math.IsInf(pl, 0) {
		return ledger.TradeRecord{}, fmt.Errorf("P&L must be a number")
	}

	kind := ledger.ParseKind(req.Kind)
	if kind == ledger.KindWithdrawal {
		return ledger.NewWithdrawal(day, pl, req.Notes), nil
	}

	return ledger.TradeRecord{
		Date:         day,
		GrossPL:      pl,
		Brokerage:    ledger.ParseAmount(req.Brokerage),
		Tax:          ledger.ParseAmount(req.Tax),
		Quantity:     ledger.ParseCount(req.Quantity),
		RulesAdhered: ledger.ParseCount(req.RulesAdhered),
		Kind:         kind,
		Notes:        req.Notes,
	}.Normalize(), nil
}
