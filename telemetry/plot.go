package telemetry

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// PlotPopulation renders cat and prey counts over time as a PNG, with
// per-tick predation events on a secondary axis.
func PlotPopulation(w io.Writer, snaps []TickSnapshot) error {
	if len(snaps) < 2 {
		return fmt.Errorf("plot needs at least 2 snapshots, got %d", len(snaps))
	}

	ticks := make([]float64, len(snaps))
	cats := make([]float64, len(snaps))
	prey := make([]float64, len(snaps))
	events := make([]float64, len(snaps))
	peak, peakEvents := 1.0, 1.0
	for i, s := range snaps {
		ticks[i] = float64(s.Tick)
		cats[i] = float64(s.LiveCats)
		prey[i] = float64(s.LivePrey)
		events[i] = float64(s.PredationThisTick)
		peak = max(peak, cats[i], prey[i])
		peakEvents = max(peakEvents, events[i])
	}

	graph := chart.Chart{
		Width:  1024,
		Height: 480,
		XAxis: chart.XAxis{
			Name:  "Tick",
			Style: chart.Style{FontSize: 10.0},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		YAxis: chart.YAxis{
			Name:  "Population",
			Style: chart.Style{FontSize: 10.0},
			// Fixed ranges: a flat series would otherwise have zero delta.
			Range: &chart.ContinuousRange{Min: 0, Max: peak},
		},
		YAxisSecondary: chart.YAxis{
			Name:  "Predation events",
			Style: chart.Style{FontSize: 10.0},
			Range: &chart.ContinuousRange{Min: 0, Max: peakEvents},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Prey",
				XValues: ticks,
				YValues: prey,
				Style:   chart.Style{StrokeColor: chart.ColorGreen, StrokeWidth: 2.0},
			},
			chart.ContinuousSeries{
				Name:    "Cats",
				XValues: ticks,
				YValues: cats,
				Style:   chart.Style{StrokeColor: chart.ColorRed, StrokeWidth: 2.0},
			},
			chart.ContinuousSeries{
				Name:    "Predation events",
				YAxis:   chart.YAxisSecondary,
				XValues: ticks,
				YValues: events,
				Style:   chart.Style{StrokeColor: drawing.Color{R: 255, G: 165, B: 0, A: 255}, StrokeWidth: 1.0},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render population plot: %w", err)
	}
	return nil
}
