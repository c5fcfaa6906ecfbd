// Package game wires a simulation to its collaborators: telemetry output,
// the run archive, the live stream and the terminal view.
package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/feralcats/config"
	"github.com/pthm-cable/feralcats/sim"
	"github.com/pthm-cable/feralcats/store"
	"github.com/pthm-cable/feralcats/stream"
	"github.com/pthm-cable/feralcats/telemetry"
)

// Options holds configuration for game initialization.
type Options struct {
	Config         *config.Config // nil uses defaults
	LogStats       bool           // log per-tick stats and perf windows via slog
	OutputDir      string         // CSV, config, summary and snapshot output; empty disables
	Plot           bool           // render population.png into OutputDir at Unload
	DBPath         string         // SQLite run archive; empty disables
	Hub            *stream.Hub    // receives a frame after every tick; may be nil
	StepsPerUpdate int            // simulation ticks per Update call
}

// Game holds a simulation and its collaborators.
type Game struct {
	sim   *sim.Simulation
	runID string

	logStats       bool
	plot           bool
	stepsPerUpdate int
	perfWindow     int

	// Telemetry
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	pendingMetrics   []telemetry.TickSnapshot

	db  *store.DB
	hub *stream.Hub

	unloaded bool
}

// NewGameWithOptions builds the simulation and opens every enabled output.
func NewGameWithOptions(opts Options) (*Game, error) {
	s, err := sim.New(opts.Config)
	if err != nil {
		return nil, err
	}
	cfg := s.Config()

	g := &Game{
		sim:            s,
		runID:          store.NewRunID(),
		logStats:       opts.LogStats,
		plot:           opts.Plot,
		stepsPerUpdate: max(1, opts.StepsPerUpdate),
		perfWindow:     max(1, cfg.Telemetry.PerfWindow),
		hub:            opts.Hub,
	}
	g.bookmarkDetector = telemetry.NewBookmarkDetector(telemetry.BookmarkConfig{
		HistorySize:   cfg.Telemetry.BookmarkHistorySize,
		PreyCrashDrop: cfg.Telemetry.PreyCrashDrop,
		PreyCrashMin:  cfg.Telemetry.PreyCrashMin,
	})

	if opts.LogStats || opts.OutputDir != "" {
		g.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
		s.SetPerfCollector(g.perfCollector)
	}

	g.outputManager, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("output: %w", err)
	}
	if err := g.outputManager.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	if opts.DBPath != "" {
		g.db, err = store.Open(opts.DBPath)
		if err != nil {
			g.outputManager.Close()
			return nil, fmt.Errorf("run archive: %w", err)
		}
	}

	g.afterTick()

	slog.Info("simulation initialised",
		"run_id", g.runID,
		"seed", s.Seed(),
		"width", cfg.World.Width,
		"height", cfg.World.Height,
		"cats", cfg.Population.Cats,
		"prey", cfg.Population.Prey,
	)
	return g, nil
}

// Update runs StepsPerUpdate simulation ticks, stopping early when the
// simulation stops.
func (g *Game) Update() {
	g.Advance(g.stepsPerUpdate)
}

// Advance runs up to n ticks.
func (g *Game) Advance(n int) {
	for i := 0; i < n && g.sim.IsRunning(); i++ {
		g.sim.Step()
		g.afterTick()
	}
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int {
	return g.sim.Tick()
}

// Running reports whether the simulation still has prey.
func (g *Game) Running() bool {
	return g.sim.IsRunning()
}

// RunID returns the identifier the run is archived under.
func (g *Game) RunID() string {
	return g.runID
}

// Simulation exposes the underlying engine.
func (g *Game) Simulation() *sim.Simulation {
	return g.sim
}

// Agents returns a copy of every agent.
func (g *Game) Agents() []sim.AgentView {
	return g.sim.AgentSnapshot()
}

// Fields returns a copy of the environment fields.
func (g *Game) Fields() sim.FieldView {
	return g.sim.FieldSnapshot()
}

// Latest returns the metrics of the current tick.
func (g *Game) Latest() telemetry.TickSnapshot {
	return g.sim.LatestMetrics()
}
