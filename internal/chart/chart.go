// Package chart renders portfolio performance as PNG images.
package chart

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/ndewijer/Stockbroker-Backend/internal/model"
)

// ErrNoPoints is returned when a performance has no samples to draw.
var ErrNoPoints = errors.New("performance has no data points")

// RenderPerformance renders one bar per performance sample, labelled with
// the sample date. Returns raw PNG bytes.
func RenderPerformance(perf model.Performance) ([]byte, error) {
	if len(perf.Points) == 0 {
		return nil, ErrNoPoints
	}

	bars := make([]chart.Value, len(perf.Points))
	top := 0.0
	for i, p := range perf.Points {
		bars[i] = chart.Value{
			Label: p.Date,
			Value: p.Value,
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex("2563eb"), // blue-600
				StrokeColor: drawing.ColorFromHex("1d4ed8"),
				StrokeWidth: 1,
			},
		}
		if p.Value > top {
			top = p.Value
		}
	}
	// go-chart needs a non-empty range, which an all-zero performance lacks.
	if top <= 0 {
		top = 1
	}

	title := fmt.Sprintf("%s: %s to %s", perf.Portfolio, perf.Start, perf.End)
	if perf.Scale > 0 {
		title = fmt.Sprintf("%s (scale $%d)", title, perf.Scale)
	}

	graph := chart.BarChart{
		Title:      title,
		Width:      900,
		Height:     400,
		BarWidth:   60,
		BarSpacing: 40,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: top * 1.1},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.0f", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
