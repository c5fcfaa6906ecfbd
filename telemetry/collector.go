// Package telemetry records per-tick population metrics and derives
// summaries, bookmarks, plots and CSV output from them.
package telemetry

import (
	"log/slog"
	"slices"
)

// TickSnapshot is the metrics record for one tick.
type TickSnapshot struct {
	Tick              int `csv:"tick" json:"tick" db:"tick"`
	LiveCats          int `csv:"cats" json:"cats" db:"cats"`
	LivePrey          int `csv:"prey" json:"prey" db:"prey"`
	PredationThisTick int `csv:"predation_events" json:"predation_events" db:"predation_events"`
	PredationTotal    int `csv:"predation_total" json:"predation_total" db:"predation_total"`
}

// LogValue implements slog.LogValuer for structured logging.
func (s TickSnapshot) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("tick", s.Tick),
		slog.Int("cats", s.LiveCats),
		slog.Int("prey", s.LivePrey),
		slog.Int("predation_events", s.PredationThisTick),
		slog.Int("predation_total", s.PredationTotal),
	)
}

// LogStats logs the snapshot using slog.
func (s TickSnapshot) LogStats() {
	slog.Info("stats",
		"tick", s.Tick,
		"cats", s.LiveCats,
		"prey", s.LivePrey,
		"predation_events", s.PredationThisTick,
		"predation_total", s.PredationTotal,
	)
}

// Counts are the values sampled at the end of a tick.
type Counts struct {
	Cats              int
	Prey              int
	PredationThisTick int
	PredationTotal    int
}

// Collector accumulates one snapshot per tick. The first snapshot is the
// initial state at tick 0, so Snapshots()[i].Tick == i.
type Collector struct {
	snapshots []TickSnapshot
}

// NewCollector creates a collector holding the tick-0 snapshot.
func NewCollector(initial Counts) *Collector {
	c := &Collector{}
	c.Collect(0, initial)
	return c
}

// Collect appends the snapshot for tick and returns it.
func (c *Collector) Collect(tick int, counts Counts) TickSnapshot {
	s := TickSnapshot{
		Tick:              tick,
		LiveCats:          counts.Cats,
		LivePrey:          counts.Prey,
		PredationThisTick: counts.PredationThisTick,
		PredationTotal:    counts.PredationTotal,
	}
	c.snapshots = append(c.snapshots, s)
	return s
}

// Snapshots returns a copy of every recorded snapshot in tick order.
func (c *Collector) Snapshots() []TickSnapshot {
	return slices.Clone(c.snapshots)
}

// Latest returns the most recent snapshot.
func (c *Collector) Latest() TickSnapshot {
	return c.snapshots[len(c.snapshots)-1]
}

// Len returns the number of recorded snapshots.
func (c *Collector) Len() int {
	return len(c.snapshots)
}
