package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/rulebook/ledger"
)

// FormatRecordOrg renders a record as an Org-mode block. Facts go in the
// PROPERTIES drawer; notes become the body.
func FormatRecordOrg(r ledger.TradeRecord) string {
	heading := fmt.Sprintf("** %s %s (%s)", kindLabel(r.Kind), r.Date.Format(ledger.DateLayout), shortID(r.ID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":ID: %s\n", r.ID))
	b.WriteString(fmt.Sprintf(":KIND: %s\n", r.Kind))
	b.WriteString(fmt.Sprintf(":DATE: %s\n", r.Date.Format(ledger.DateLayout)))
	b.WriteString(fmt.Sprintf(":GROSS_PL: %.2f\n", r.GrossPL))
	if !r.IsWithdrawal() {
		b.WriteString(fmt.Sprintf(":BROKERAGE: %.2f\n", r.Brokerage))
		b.WriteString(fmt.Sprintf(":TAX: %.2f\n", r.Tax))
		b.WriteString(fmt.Sprintf(":QUANTITY: %d\n", r.Units()))
		b.WriteString(fmt.Sprintf(":RULES: %d/%d\n", r.RulesAdhered, ledger.ChecklistItems))
	}
	b.WriteString(fmt.Sprintf(":NET_PL: %.2f\n", r.Net()))
	b.WriteString(fmt.Sprintf(":CREATED: %s\n", r.CreatedAt.UTC().Format(time.RFC3339)))
	b.WriteString(":END:\n")
	if notes := strings.TrimSpace(r.Notes); notes != "" {
		b.WriteString("\n")
		b.WriteString(notes)
		b.WriteString("\n")
	}

	return b.String()
}

// FormatRecordsOrg renders multiple records separated by blank lines.
func FormatRecordsOrg(recs []ledger.TradeRecord) string {
	var b strings.Builder
	for i, r := range recs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatRecordOrg(r))
	}
	return b.String()
}

func kindLabel(k ledger.Kind) string {
	if k == ledger.KindWithdrawal {
		return "Withdrawal"
	}
	return "Trade"
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[len(full)-8:]
}
