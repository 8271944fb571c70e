package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rustyeddy/rulebook/ledger"
)

// CSVHeader is the column layout of an exported report.
var CSVHeader = []string{"Date", "P&L", "Brokerage", "Tax", "Net P&L"}

// WriteCSV writes one row per record in the order given.
func WriteCSV(w io.Writer, recs []ledger.TradeRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}

	for _, r := range recs {
		err := cw.Write([]string{
			r.Date.Format(ledger.DateLayout),
			f(r.GrossPL),
			f(r.Brokerage),
			f(r.Tax),
			f(r.Net()),
		})
		if err != nil {
			return fmt.Errorf("write record %s: %w", r.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportFileName names a report exported at now.
func ExportFileName(now time.Time) string {
	return "RuleBook_Report_" + now.Format(ledger.DateLayout) + ".csv"
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
