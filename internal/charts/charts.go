// Package charts renders ledger series as PNG images.
package charts

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"hamanets/internal/core"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data to chart")

// minSliceShare hides pie slices below this fraction of the total.
const minSliceShare = 0.01

// Generator renders charts with a shared canvas size.
type Generator struct {
	Width  int
	Height int
}

// NewGenerator returns a generator with the default 800x400 canvas.
func NewGenerator() *Generator {
	return &Generator{Width: 800, Height: 400}
}

// SixMonths renders a bar chart with an income and an expense bar per
// month, in series order.
func (g *Generator) SixMonths(points []core.SeriesPoint) ([]byte, error) {
	bars := make([]chart.Value, 0, len(points)*2)
	nonZero := false
	for _, p := range points {
		in, out := p.Income.Float64(), p.Expenses.Float64()
		if in != 0 || out != 0 {
			nonZero = true
		}
		bars = append(bars,
			chart.Value{
				Label: p.Label + " +",
				Value: in,
				Style: chart.Style{FillColor: chart.ColorGreen, StrokeColor: chart.ColorGreen},
			},
			chart.Value{
				Label: p.Label + " -",
				Value: out,
				Style: chart.Style{FillColor: chart.ColorRed, StrokeColor: chart.ColorRed},
			},
		)
	}
	if !nonZero {
		return nil, ErrNoData
	}

	graph := chart.BarChart{
		Title:      "Income and expenses",
		Width:      g.Width,
		Height:     g.Height,
		BarWidth:   30,
		BarSpacing: 10,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
			FillColor: chart.ColorWhite,
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render six month chart: %w", err)
	}
	return buf.Bytes(), nil
}

// Categories renders the expense breakdown of s as a pie chart. Slices
// under one percent of the total are left out.
func (g *Generator) Categories(s core.Summary, categories []core.Category) ([]byte, error) {
	if !s.TotalExpenses.IsPositive() {
		return nil, ErrNoData
	}
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	values := make([]chart.Value, 0, len(s.ByCategory))
	for _, ca := range s.ByCategory {
		share := ca.Amount.Ratio(s.TotalExpenses)
		if share < minSliceShare {
			continue
		}
		name := names[ca.CategoryID]
		if name == "" {
			name = ca.CategoryID
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %s (%.1f%%)", name, ca.Amount.StringFixed(), share*100),
			Value: ca.Amount.Float64(),
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		})
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}

	pie := chart.PieChart{
		Title:  "Expenses by category",
		Width:  g.Height * 2,
		Height: g.Height * 2,
		Values: values,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render category chart: %w", err)
	}
	return buf.Bytes(), nil
}
