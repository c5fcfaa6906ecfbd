package systems

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/feralcats/components"
)

func openEnv(w, h, veg int) *Environment {
	vegetation := newIntGrid(w, h)
	for x := range vegetation {
		for y := range vegetation[x] {
			vegetation[x][y] = veg
		}
	}
	return NewEnvironment(w, h, nil, vegetation)
}

func TestEnvironmentClampsVegetation(t *testing.T) {
	veg := [][]int{{-3, 9}, {2, 4}}
	env := NewEnvironment(2, 2, nil, veg)

	tests := []struct {
		x, y int
		want int
	}{
		{0, 0, 0},
		{0, 1, 4},
		{1, 0, 2},
		{1, 1, 4},
	}
	for _, tt := range tests {
		if got := env.Vegetation(components.Position{X: tt.x, Y: tt.y}); got != tt.want {
			t.Errorf("vegetation(%d,%d) = %d, want %d", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestIsBlocked(t *testing.T) {
	barrier := newBoolGrid(3, 3)
	barrier[1][2] = true
	env := NewEnvironment(3, 3, barrier, nil)

	tests := []struct {
		name string
		p    components.Position
		want bool
	}{
		{"open cell", components.Position{X: 0, Y: 0}, false},
		{"barrier cell", components.Position{X: 1, Y: 2}, true},
		{"left of grid", components.Position{X: -1, Y: 0}, true},
		{"below grid", components.Position{X: 0, Y: 3}, true},
		{"right of grid", components.Position{X: 3, Y: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := env.IsBlocked(tt.p); got != tt.want {
				t.Errorf("IsBlocked(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestRefreshScent(t *testing.T) {
	env := openEnv(10, 10, 0)
	cat := components.Position{X: 2, Y: 2}
	env.RefreshScent([]components.Position{cat}, 2)

	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			p := components.Position{X: x, Y: y}
			want := components.Chebyshev(p, cat) <= 2
			if got := env.Scent(p); got != want {
				t.Errorf("scent(%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}

	// Full recompute: old scent must not linger
	env.RefreshScent(nil, 2)
	if env.Scent(cat) {
		t.Error("expected scent cleared with no cats")
	}
}

func TestTrailDecayAndMark(t *testing.T) {
	env := openEnv(3, 3, 0)
	p := components.Position{X: 1, Y: 1}

	if got := env.Trail(p); got != TrailStale {
		t.Fatalf("initial trail = %d, want %d", got, TrailStale)
	}

	env.MarkTrail(p)
	if got := env.Trail(p); got != TrailFresh {
		t.Fatalf("marked trail = %d, want %d", got, TrailFresh)
	}

	for i := 0; i < 10; i++ {
		env.DecayTrail()
		got := env.Trail(p)
		want := min(TrailFresh+i+1, TrailStale)
		if got != want {
			t.Errorf("after %d decays trail = %d, want %d", i+1, got, want)
		}
	}
}

func TestDepleteVegetationFloorsAtZero(t *testing.T) {
	env := openEnv(2, 2, 1)
	p := components.Position{X: 0, Y: 1}
	env.DepleteVegetation(p, 2)
	if got := env.Vegetation(p); got != 0 {
		t.Errorf("vegetation after over-depletion = %d, want 0", got)
	}
}

func TestRegrowVegetation(t *testing.T) {
	barrier := newBoolGrid(4, 1)
	barrier[3][0] = true
	veg := [][]int{{0}, {1}, {4}, {2}}
	env := NewEnvironment(4, 1, barrier, veg)

	// prob 1: every eligible cell grows
	env.RegrowVegetation(rand.New(rand.NewSource(1)), 1)

	want := []int{0, 2, 4, 2}
	for x, w := range want {
		if got := env.Vegetation(components.Position{X: x}); got != w {
			t.Errorf("vegetation[%d] = %d, want %d", x, got, w)
		}
	}

	// prob 0: nothing changes
	env.RegrowVegetation(rand.New(rand.NewSource(1)), 0)
	if got := env.Vegetation(components.Position{X: 1}); got != 2 {
		t.Errorf("vegetation changed with zero regrow prob: %d", got)
	}
}

func TestOpenMooreSkipsBlockedCells(t *testing.T) {
	barrier := newBoolGrid(3, 3)
	barrier[1][0] = true
	env := NewEnvironment(3, 3, barrier, nil)

	// Corner cell: 4 in-bounds cells, one of them barrier
	got := env.OpenMoore(components.Position{X: 0, Y: 0}, nil)
	want := []components.Position{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}
	if len(got) != len(want) {
		t.Fatalf("OpenMoore = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("OpenMoore[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if n := len(env.OpenMoore(components.Position{X: 1, Y: 1}, nil)); n != 8 {
		t.Errorf("centre cell should have 8 open cells, got %d", n)
	}
	if n := len(env.Neighbors8(components.Position{X: 1, Y: 1}, nil)); n != 8 {
		t.Errorf("Neighbors8 of centre should have 8 cells, got %d", n)
	}
}

func TestFieldsAreCopies(t *testing.T) {
	env := openEnv(2, 2, 3)
	f := env.Fields()
	f.Vegetation[0] = 0
	f.Trail[0] = TrailFresh

	if env.Vegetation(components.Position{}) != 3 {
		t.Error("mutating snapshot changed environment vegetation")
	}
	if env.Trail(components.Position{}) != TrailStale {
		t.Error("mutating snapshot changed environment trail")
	}
	if f.VegetationAt(1, 1) != 3 {
		t.Errorf("VegetationAt(1,1) = %d, want 3", f.VegetationAt(1, 1))
	}
}
