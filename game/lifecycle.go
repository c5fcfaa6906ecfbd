package game

import (
	"log/slog"

	"github.com/pthm-cable/feralcats/store"
	"github.com/pthm-cable/feralcats/telemetry"
)

// Unload finishes the run: it writes the summary and plot, archives the run
// and closes every output. Safe to call more than once.
func (g *Game) Unload() {
	if g.unloaded {
		return
	}
	g.unloaded = true

	if len(g.pendingMetrics) > 0 {
		g.flushMetrics()
	}

	metrics := g.sim.Metrics()
	summary := telemetry.Summarize(metrics)
	slog.Info("run finished", "run_id", g.runID, "summary", summary)

	if err := g.outputManager.WriteSummary(summary); err != nil {
		slog.Error("failed to write summary", "error", err)
	}
	if g.plot && len(metrics) >= 2 {
		if err := g.outputManager.WritePlot(metrics); err != nil {
			slog.Error("failed to write plot", "error", err)
		}
	}

	if g.db != nil {
		g.archive(summary, metrics)
		if err := g.db.Close(); err != nil {
			slog.Error("failed to close run archive", "error", err)
		}
	}

	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}

func (g *Game) archive(summary telemetry.Summary, metrics []telemetry.TickSnapshot) {
	cfgYAML, err := g.sim.Config().YAML()
	if err != nil {
		slog.Error("failed to encode config for archive", "error", err)
	}
	run := store.RunFromSummary(g.runID, g.sim.Seed(), summary, string(cfgYAML))
	if err := g.db.SaveRun(run, metrics); err != nil {
		slog.Error("failed to archive run", "run_id", g.runID, "error", err)
		return
	}
	slog.Info("run archived", "run_id", g.runID, "ticks", summary.Ticks)
}
