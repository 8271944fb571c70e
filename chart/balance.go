// Package chart draws the running-balance curve of a ledger.
package chart

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// RenderBalance renders a PNG line chart of balances against record index.
// balances[0] is the starting capital and is also drawn as a dashed
// baseline. Returns raw PNG bytes.
func RenderBalance(balances []float64) ([]byte, error) {
	if len(balances) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(balances))
	}

	xValues := make([]float64, len(balances))
	baseline := make([]float64, len(balances))
	lo, hi := balances[0], balances[0]
	for i, b := range balances {
		xValues[i] = float64(i)
		baseline[i] = balances[0]
		lo = min(lo, b)
		hi = max(hi, b)
	}

	balanceSeries := chart.ContinuousSeries{
		Name: "Balance",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: balances,
	}

	capitalSeries := chart.ContinuousSeries{
		Name: "Starting Capital",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: xValues,
		YValues: baseline,
	}

	yAxis := chart.YAxis{
		ValueFormatter: func(v interface{}) string {
			if f, ok := v.(float64); ok {
				return fmt.Sprintf("%.0f", f)
			}
			return ""
		},
	}
	if lo == hi {
		// go-chart refuses a zero-height range
		yAxis.Range = &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}

	graph := chart.Chart{
		Title:  "Equity Curve",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			Name: "Entry",
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		YAxis: yAxis,
		Series: []chart.Series{
			balanceSeries,
			capitalSeries,
		},
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
