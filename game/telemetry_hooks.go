package game

import (
	"log/slog"

	"github.com/pthm-cable/feralcats/components"
	"github.com/pthm-cable/feralcats/stream"
	"github.com/pthm-cable/feralcats/telemetry"
)

// afterTick runs every per-tick observer on the newest metrics snapshot.
func (g *Game) afterTick() {
	snap := g.sim.LatestMetrics()

	if g.logStats {
		snap.LogStats()
	}

	if g.outputManager != nil {
		g.pendingMetrics = append(g.pendingMetrics, snap)
		if len(g.pendingMetrics) >= g.perfWindow || !g.sim.IsRunning() {
			g.flushMetrics()
		}
	}

	for _, bm := range g.bookmarkDetector.Check(snap) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
		if g.outputManager != nil {
			g.saveSnapshot(&bm)
		}
	}

	if snap.Tick > 0 && snap.Tick%g.perfWindow == 0 {
		g.flushPerf(snap.Tick)
	}

	if g.hub != nil {
		g.hub.Publish(stream.NewFrame(g.sim))
	}
}

// flushMetrics writes buffered snapshots to metrics.csv.
func (g *Game) flushMetrics() {
	if err := g.outputManager.WriteMetrics(g.pendingMetrics...); err != nil {
		slog.Error("failed to write metrics", "error", err)
	}
	g.pendingMetrics = g.pendingMetrics[:0]
}

// flushPerf logs and records the current perf window.
func (g *Game) flushPerf(tick int) {
	if g.perfCollector == nil {
		return
	}
	perfStats := g.perfCollector.Stats()
	if g.logStats {
		perfStats.LogStats()
	}
	if err := g.outputManager.WritePerf(perfStats, tick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}

// saveSnapshot creates and saves a snapshot to disk.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	path, err := g.outputManager.WriteSnapshot(g.createSnapshot(bookmark))
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "tick", g.sim.Tick())
}

// createSnapshot builds a snapshot from the current state.
func (g *Game) createSnapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	snapshot := &telemetry.Snapshot{
		Version:  telemetry.SnapshotVersion,
		Seed:     g.sim.Seed(),
		Tick:     g.sim.Tick(),
		Metrics:  g.sim.LatestMetrics(),
		Fields:   g.sim.FieldSnapshot(),
		Bookmark: bookmark,
	}

	for _, a := range g.sim.AgentSnapshot() {
		state := telemetry.AgentState{
			ID:   uint32(a.ID),
			Kind: a.Kind.String(),
			X:    a.Position.X,
			Y:    a.Position.Y,
		}
		if a.Kind == components.KindPrey {
			state.Sex = a.Sex.String()
		} else {
			state.Energy = a.Energy
		}
		snapshot.Agents = append(snapshot.Agents, state)
	}

	return snapshot
}
