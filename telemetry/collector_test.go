package telemetry

import "testing"

func TestCollectorStartsAtTickZero(t *testing.T) {
	c := NewCollector(Counts{Cats: 6, Prey: 40})

	snaps := c.Snapshots()
	if len(snaps) != 1 {
		t.Fatalf("expected 1 initial snapshot, got %d", len(snaps))
	}
	if snaps[0] != (TickSnapshot{Tick: 0, LiveCats: 6, LivePrey: 40}) {
		t.Errorf("unexpected initial snapshot %+v", snaps[0])
	}
}

func TestCollectorIndexMatchesTick(t *testing.T) {
	c := NewCollector(Counts{Cats: 1, Prey: 1})
	for tick := 1; tick <= 10; tick++ {
		c.Collect(tick, Counts{Cats: 1, Prey: tick, PredationTotal: tick / 2})
	}

	snaps := c.Snapshots()
	for i, s := range snaps {
		if s.Tick != i {
			t.Errorf("snapshot %d has tick %d", i, s.Tick)
		}
	}
	if c.Latest().LivePrey != 10 {
		t.Errorf("Latest().LivePrey = %d, want 10", c.Latest().LivePrey)
	}
	if c.Len() != 11 {
		t.Errorf("Len() = %d, want 11", c.Len())
	}
}

func TestCollectorSnapshotsAreCopies(t *testing.T) {
	c := NewCollector(Counts{Cats: 2, Prey: 3})
	snaps := c.Snapshots()
	snaps[0].LiveCats = 99

	if c.Snapshots()[0].LiveCats != 2 {
		t.Error("mutating returned slice changed collector state")
	}
}
