package journal

import (
	"bytes"
	"fmt"
	"os"
	"text/template"
	"time"

	"github.com/rustyeddy/rulebook/ledger"
)

// Summary is the data behind an Org-mode ledger report.
type Summary struct {
	Name      string
	Generated time.Time
	State     ledger.State
	Recent    []ledger.TradeRecord
	ChartPNG  string
}

var summaryOrgFuncs = template.FuncMap{
	"mul100": func(x float64) float64 { return x * 100.0 },
	"day":    func(t time.Time) string { return t.Format(ledger.DateLayout) },
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

var summaryOrg = template.Must(template.New("summary").Funcs(summaryOrgFuncs).Parse(SummaryOrgTemplate))

// FormatSummaryOrg renders s with SummaryOrgTemplate.
func FormatSummaryOrg(s Summary) (string, error) {
	buf := new(bytes.Buffer)
	if err := summaryOrg.Execute(buf, s); err != nil {
		return "", fmt.Errorf("render summary: %w", err)
	}
	return buf.String(), nil
}

// WriteSummaryOrg renders s into path.
func WriteSummaryOrg(path string, s Summary) error {
	out, err := FormatSummaryOrg(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(out), 0644)
}

const SummaryOrgTemplate = `* LEDGER: {{if .Name}}{{.Name}}{{else}}(unnamed){{end}}
:PROPERTIES:
:START_CAP:   {{printf "%.2f" .State.StartingCapital}}
:BALANCE:     {{printf "%.2f" .State.Balance}}
:NET_PL:      {{printf "%.2f" .State.NetTotal}}
:LIFETIME:    {{printf "%.2f" .State.LifetimeNet}}
:WITHDRAWN:   {{printf "%.2f" .State.TotalWithdrawn}}
:TRADES:      {{.State.TradeCount}}
:UNITS:       {{.State.TotalTradeUnits}}
:WINS:        {{.State.WinCount}}
:LOSSES:      {{.State.Losses}}
:WIN_RATE:    {{printf "%.2f" (mul100 .State.WinRate)}}
:DISCIPLINE:  {{printf "%.2f" .State.DisciplineScore}}
:GENERATED:   [{{(orTime .Generated).Format "2006-01-02 Mon 15:04"}}]
:END:

** Performance Summary
- Net P/L:          *{{printf "%.2f" .State.NetTotal}}*
- Brokerage:        *{{printf "%.2f" .State.TotalBrokerage}}*
- Tax:              *{{printf "%.2f" .State.TotalTax}}*
- Win Rate:         *{{printf "%.2f" (mul100 .State.WinRate)}}%*
- Discipline Score: *{{printf "%.2f" .State.DisciplineScore}}%*

** Goals
| Goal     | Target | Progress |
|----------+--------+----------|
| Week of {{day .State.WeekStart}} | {{printf "%.2f" .State.WeeklyGoal}} | {{printf "%.1f" .State.WeeklyProgressPct}}% ({{printf "%.2f" .State.WeeklyNet}}) |
| Lifetime | {{printf "%.2f" .State.LifetimeTarget}} | {{printf "%.1f" .State.LifetimeProgressPct}}% ({{printf "%.2f" .State.NetTotal}}) |

** Equity Curve
{{- if .ChartPNG }}
[[file:{{.ChartPNG}}]]
{{- else }}
# rulebook chart -o balance.png
{{- end }}

** Trade Distribution
| Outcome     | Count |
|-------------+-------|
| Wins        | {{.State.WinCount}} |
| Losses      | {{.State.Losses}} |
| Withdrawals | {{.State.WithdrawalCount}} |
| Total       | {{.State.RecordCount}} |
{{- if .Recent }}

** Recent Entries
| Date | Kind | Net | Rules |
|------+------+-----+-------|
{{- range .Recent }}
| {{day .Date}} | {{.Kind}} | {{printf "%.2f" .Net}} | {{if .IsWithdrawal}}-{{else}}{{.RulesAdhered}}/3{{end}} |
{{- end }}
{{- end }}
`
