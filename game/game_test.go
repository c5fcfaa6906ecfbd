package game

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/feralcats/config"
	"github.com/pthm-cable/feralcats/store"
)

func countLines(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		n++
	}
	return n
}

func TestHeadlessRunWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "runs.db")

	g, err := NewGameWithOptions(Options{
		Config:         config.Default().WithSeed(42),
		OutputDir:      dir,
		Plot:           true,
		DBPath:         dbPath,
		StepsPerUpdate: 10,
	})
	if err != nil {
		t.Fatalf("NewGameWithOptions failed: %v", err)
	}

	for i := 0; i < 5 && g.Running(); i++ {
		g.Update()
	}
	ticks := g.Tick()
	runID := g.RunID()
	g.Unload()
	g.Unload() // second call is a no-op

	if ticks == 0 {
		t.Fatal("no ticks were run")
	}

	for _, name := range []string{"config.yaml", "metrics.csv", "perf.csv", "bookmarks.csv", "summary.csv", "population.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	// header + tick 0 + one row per tick
	if got, want := countLines(t, filepath.Join(dir, "metrics.csv")), ticks+2; got != want {
		t.Errorf("metrics.csv has %d lines, want %d", got, want)
	}
	if got := countLines(t, filepath.Join(dir, "summary.csv")); got != 2 {
		t.Errorf("summary.csv has %d lines, want 2", got)
	}

	db, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("reopen archive: %v", err)
	}
	defer db.Close()

	run, err := db.GetRun(runID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Seed != 42 || run.Ticks != ticks {
		t.Errorf("archived run %+v, want seed 42 ticks %d", run, ticks)
	}
	snaps, err := db.LoadMetrics(runID)
	if err != nil {
		t.Fatalf("LoadMetrics: %v", err)
	}
	if len(snaps) != ticks+1 {
		t.Errorf("archived %d metrics rows, want %d", len(snaps), ticks+1)
	}
}

func TestAdvanceStopsWhenPreyGone(t *testing.T) {
	cfg := config.Default().WithSeed(1)
	cfg.Population.Prey = 0

	g, err := NewGameWithOptions(Options{Config: cfg})
	if err != nil {
		t.Fatalf("NewGameWithOptions failed: %v", err)
	}
	defer g.Unload()

	g.Advance(100)
	if g.Tick() != 0 || g.Running() {
		t.Errorf("tick=%d running=%v, want 0 and false", g.Tick(), g.Running())
	}
}

func TestInvalidConfigFails(t *testing.T) {
	cfg := config.Default()
	cfg.World.Width = -1

	if _, err := NewGameWithOptions(Options{Config: cfg}); err == nil {
		t.Error("expected error for invalid config")
	}
}

func TestBookmarkSnapshotsOnExtinction(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default().WithSeed(7)
	cfg.World.Width, cfg.World.Height = 3, 3
	cfg.Barrier.Mode = config.BarrierNone
	cfg.Population.Cats, cfg.Population.Prey = 6, 2
	cfg.Predation.Base = 1
	cfg.Prey.FleeProb = 0

	g, err := NewGameWithOptions(Options{Config: cfg, OutputDir: dir})
	if err != nil {
		t.Fatalf("NewGameWithOptions failed: %v", err)
	}
	for g.Running() && g.Tick() < 10000 {
		g.Update()
	}
	g.Unload()

	matches, err := filepath.Glob(filepath.Join(dir, "snapshots", "snapshot_*_prey_extinct.json"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) != 1 {
		t.Errorf("expected one prey extinction snapshot, found %v", matches)
	}
}
