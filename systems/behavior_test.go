package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/feralcats/components"
	"github.com/pthm-cable/feralcats/config"
)

func newTestContext(env *Environment, seed int64) *Context {
	params := ParamsFromConfig(config.Default())
	return NewContext(
		rand.New(rand.NewSource(seed)),
		env,
		NewOccupancy(env.Width(), env.Height()),
		NewPopulation(),
		params,
	)
}

func begin(ctx *Context) {
	ctx.Begin(ctx.Pop.Ordered(nil))
}

func TestBehaviorFor(t *testing.T) {
	if _, ok := BehaviorFor(components.KindPrey).(PreyBehavior); !ok {
		t.Error("expected PreyBehavior for prey")
	}
	if _, ok := BehaviorFor(components.KindCat).(CatBehavior); !ok {
		t.Error("expected CatBehavior for cats")
	}
}

func TestPredationRate(t *testing.T) {
	ctx := newTestContext(openEnv(3, 3, 0), 42)
	ctx.Params.PredationBase = 0.2
	ctx.Params.PredationCoef = 0

	cell := components.Position{X: 1, Y: 1}
	catEntity := ctx.Pop.SpawnCat(cell, 1)
	state := ctx.Pop.Cat(catEntity)
	begin(ctx)

	const trials = 10000
	kills := 0
	for i := 0; i < trials; i++ {
		prey := ctx.Pop.SpawnPrey(cell, components.Female)
		ctx.Occupancy.Insert(prey, cell)
		if hunt(ctx, state, cell) {
			kills++
		} else {
			ctx.Occupancy.Remove(prey, cell)
		}
		ctx.Pop.Remove(prey)
	}

	rate := float64(kills) / trials
	if math.Abs(rate-0.2) > 0.02 {
		t.Errorf("predation rate = %.4f, want 0.2±0.02", rate)
	}
	if ctx.Stats.PredationTotal != kills {
		t.Errorf("PredationTotal = %d, want %d", ctx.Stats.PredationTotal, kills)
	}
}

func TestPredationVegetationCoefficient(t *testing.T) {
	// base 0, coef 0.25, vegetation 4 => p = 1
	ctx := newTestContext(openEnv(1, 1, 4), 7)
	ctx.Params.PredationBase = 0
	ctx.Params.PredationCoef = 0.25

	cell := components.Position{}
	catEntity := ctx.Pop.SpawnCat(cell, 1)
	prey := ctx.Pop.SpawnPrey(cell, components.Male)
	begin(ctx)

	state := ctx.Pop.Cat(catEntity)
	if !hunt(ctx, state, cell) {
		t.Fatal("expected certain kill")
	}
	if ctx.Pop.Alive(prey) {
		t.Error("victim should be marked dead")
	}
	if len(ctx.Occupancy.At(cell)) != 1 {
		t.Error("victim should be removed from occupancy")
	}
	if state.Energy != 2 || state.TicksSinceFeed != 0 {
		t.Errorf("cat state after kill = %+v", *state)
	}
	if len(ctx.Removals()) != 1 || ctx.Removals()[0] != prey {
		t.Errorf("removals = %v", ctx.Removals())
	}

	// Dead prey cannot be eaten twice
	if hunt(ctx, state, cell) {
		t.Error("hunt succeeded with no live prey")
	}
}

func TestCatEnergyCapped(t *testing.T) {
	ctx := newTestContext(openEnv(1, 1, 0), 1)
	ctx.Params.PredationBase = 1

	cell := components.Position{}
	catEntity := ctx.Pop.SpawnCat(cell, ctx.Params.MaxEnergy)
	ctx.Pop.SpawnPrey(cell, components.Female)
	begin(ctx)

	state := ctx.Pop.Cat(catEntity)
	hunt(ctx, state, cell)
	if state.Energy != ctx.Params.MaxEnergy {
		t.Errorf("energy = %d, want cap %d", state.Energy, ctx.Params.MaxEnergy)
	}
}

func TestCatStarvation(t *testing.T) {
	// 1x1 world with no prey: the cat can never feed
	ctx := newTestContext(openEnv(1, 1, 0), 3)
	catEntity := ctx.Pop.SpawnCat(components.Position{}, 3)
	state := ctx.Pop.Cat(catEntity)

	for tick := 1; tick <= 45; tick++ {
		begin(ctx)
		CatBehavior{}.Act(ctx, catEntity)

		wantEnergy := 3 - tick/15
		if state.Energy != wantEnergy {
			t.Fatalf("tick %d: energy = %d, want %d", tick, state.Energy, wantEnergy)
		}
		alive := ctx.Pop.Alive(catEntity)
		if tick < 45 && !alive {
			t.Fatalf("cat died early at tick %d", tick)
		}
		if tick == 45 && alive {
			t.Fatal("cat should starve at tick 45")
		}
	}
}

func TestCatSubStepsFollowEnergy(t *testing.T) {
	// With p=1 every sub-step on a prey cell succeeds; a 1x1 world keeps
	// every prey reachable. Energy 1 at turn start means exactly one hunt.
	ctx := newTestContext(openEnv(1, 1, 0), 5)
	ctx.Params.PredationBase = 1

	cell := components.Position{}
	catEntity := ctx.Pop.SpawnCat(cell, 1)
	for i := 0; i < 3; i++ {
		ctx.Pop.SpawnPrey(cell, components.Female)
	}
	begin(ctx)
	CatBehavior{}.Act(ctx, catEntity)

	if ctx.Stats.PredationThisTick != 1 {
		t.Errorf("kills with energy 1 = %d, want 1", ctx.Stats.PredationThisTick)
	}
	if got := ctx.Pop.Cat(catEntity).Energy; got != 2 {
		t.Errorf("energy after kill = %d, want 2", got)
	}
}

func TestCatNeverEntersBarrier(t *testing.T) {
	barrier := newBoolGrid(5, 5)
	for y := 0; y < 5; y++ {
		barrier[2][y] = true
	}
	ctx := newTestContext(NewEnvironment(5, 5, barrier, nil), 11)
	catEntity := ctx.Pop.SpawnCat(components.Position{X: 1, Y: 2}, 3)

	for i := 0; i < 200; i++ {
		begin(ctx)
		ctx.Pop.Cat(catEntity).Energy = 3
		CatBehavior{}.Act(ctx, catEntity)
		if p := *ctx.Pop.Position(catEntity); ctx.Env.IsBlocked(p) {
			t.Fatalf("cat entered blocked cell %v", p)
		}
	}
}

func TestFleeMaximizesDistance(t *testing.T) {
	// A one-row corridor: cat at x=1, prey at x=2. Only x=3 puts the prey
	// two cells from the cat.
	env := openEnv(5, 1, 1)
	ctx := newTestContext(env, 9)
	ctx.Params.FleeProb = 1

	cat := ctx.Pop.SpawnCat(components.Position{X: 1}, 3)
	prey := ctx.Pop.SpawnPrey(components.Position{X: 2}, components.Male)
	env.RefreshScent([]components.Position{*ctx.Pop.Position(cat)}, 2)

	for i := 0; i < 50; i++ {
		*ctx.Pop.Position(prey) = components.Position{X: 2}
		begin(ctx)
		PreyBehavior{}.Act(ctx, prey)

		if got := *ctx.Pop.Position(prey); got != (components.Position{X: 3}) {
			t.Fatalf("flee moved to %v, want (3,0)", got)
		}
	}
	if got := env.Vegetation(components.Position{X: 3}); got != 0 {
		t.Errorf("vegetation after flee = %d, want 0", got)
	}
	if got := env.Trail(components.Position{X: 3}); got != TrailFresh {
		t.Errorf("trail after flee = %d, want fresh", got)
	}
}

func TestFleeWithoutCatsIsUniform(t *testing.T) {
	ctx := newTestContext(openEnv(3, 3, 0), 13)
	candidates := ctx.Env.OpenMoore(components.Position{X: 1, Y: 1}, nil)

	seen := make(map[components.Position]bool)
	for i := 0; i < 500; i++ {
		seen[fleeTarget(ctx, candidates)] = true
	}
	if len(seen) != len(candidates) {
		t.Errorf("uniform flee visited %d of %d cells", len(seen), len(candidates))
	}
}

func TestForagePrefersVegetation(t *testing.T) {
	// One rich cell (weight 5) among eight bare ones (weight 1 each)
	veg := newIntGrid(3, 3)
	veg[2][2] = 4
	ctx := newTestContext(NewEnvironment(3, 3, nil, veg), 17)
	candidates := ctx.Env.OpenMoore(components.Position{X: 1, Y: 1}, nil)

	const trials = 13000
	rich := 0
	for i := 0; i < trials; i++ {
		if forageTarget(ctx, candidates) == (components.Position{X: 2, Y: 2}) {
			rich++
		}
	}
	got := float64(rich) / trials
	if math.Abs(got-5.0/13.0) > 0.03 {
		t.Errorf("rich cell chosen %.3f of the time, want ~%.3f", got, 5.0/13.0)
	}
}

func TestReproductionGate(t *testing.T) {
	at := components.Position{X: 2, Y: 2}

	tests := []struct {
		name        string
		sex         components.Sex
		ticks       int
		arrival     int
		maleAt      *components.Position
		wantBlocked bool
	}{
		{"no male", components.Female, 30, 4, nil, true},
		{"male in same cell only", components.Female, 30, 4, &at, true},
		{"adjacent male", components.Female, 30, 3, &components.Position{X: 3, Y: 2}, false},
		{"too young", components.Female, 29, 4, &components.Position{X: 1, Y: 1}, true},
		{"poor vegetation", components.Female, 30, 2, &components.Position{X: 1, Y: 1}, true},
		{"male parent", components.Male, 30, 4, &components.Position{X: 1, Y: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for seed := int64(0); seed < 20; seed++ {
				ctx := newTestContext(openEnv(5, 5, 0), seed)
				if tt.maleAt != nil {
					ctx.Pop.SpawnPrey(*tt.maleAt, components.Male)
				}
				begin(ctx)

				state := &components.PreyState{Sex: tt.sex, TicksSinceReproduction: tt.ticks}
				reproduce(ctx, state, at, tt.arrival)

				n := len(ctx.Births())
				if tt.wantBlocked {
					if n != 0 || state.TicksSinceReproduction != tt.ticks {
						t.Fatalf("seed %d: expected no reproduction, got %d births", seed, n)
					}
					continue
				}
				if n > 2 {
					t.Fatalf("seed %d: litter of %d exceeds 2", seed, n)
				}
				if state.TicksSinceReproduction != 0 {
					t.Fatalf("seed %d: counter not reset", seed)
				}
				for _, b := range ctx.Births() {
					if b.Pos != at {
						t.Fatalf("offspring at %v, want parent cell %v", b.Pos, at)
					}
				}
			}
		})
	}
}

func TestReproductionIgnoresDeadMale(t *testing.T) {
	ctx := newTestContext(openEnv(5, 5, 0), 1)
	male := ctx.Pop.SpawnPrey(components.Position{X: 3, Y: 3}, components.Male)
	begin(ctx)
	ctx.Kill(male)

	state := &components.PreyState{Sex: components.Female, TicksSinceReproduction: 40}
	reproduce(ctx, state, components.Position{X: 2, Y: 2}, 4)
	if len(ctx.Births()) != 0 || state.TicksSinceReproduction != 40 {
		t.Error("dead male should not enable reproduction")
	}
}

func TestForageTickReproduction(t *testing.T) {
	centre := components.Position{X: 2, Y: 2}

	tests := []struct {
		name       string
		ticks      int
		withMales  bool
		wantBirths bool
	}{
		{"mature female next to males", 29, true, true},
		{"no male nearby", 29, false, false},
		{"one tick too young", 28, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := 0
			for seed := int64(0); seed < 20; seed++ {
				env := openEnv(5, 5, MaxVegetation)
				ctx := newTestContext(env, seed)
				ctx.Params.FleeProb = 0

				female := ctx.Pop.SpawnPrey(centre, components.Female)
				ctx.Pop.Prey(female).TicksSinceReproduction = tt.ticks
				if tt.withMales {
					// Males on every cell around the female, so any arrival
					// cell has one in its neighbourhood.
					for _, c := range env.Neighbors8(centre, nil) {
						ctx.Pop.SpawnPrey(c, components.Male)
					}
				}
				begin(ctx)

				PreyBehavior{}.Act(ctx, female)

				to := *ctx.Pop.Position(female)
				if components.Chebyshev(to, centre) > 1 {
					t.Fatalf("seed %d: moved from %v to %v", seed, centre, to)
				}
				if got := env.Vegetation(to); got != MaxVegetation-2 {
					t.Fatalf("seed %d: arrival vegetation %d, want %d", seed, got, MaxVegetation-2)
				}
				if got := env.Trail(to); got != TrailFresh {
					t.Fatalf("seed %d: arrival trail %d, want fresh", seed, got)
				}

				state := ctx.Pop.Prey(female)
				births := ctx.Births()
				if !tt.wantBirths {
					if len(births) != 0 {
						t.Fatalf("seed %d: expected no births, got %d", seed, len(births))
					}
					if state.TicksSinceReproduction != tt.ticks+1 {
						t.Fatalf("seed %d: counter %d, want %d", seed, state.TicksSinceReproduction, tt.ticks+1)
					}
					continue
				}

				if state.TicksSinceReproduction != 0 {
					t.Fatalf("seed %d: counter %d not reset", seed, state.TicksSinceReproduction)
				}
				if len(births) > 2 {
					t.Fatalf("seed %d: litter of %d exceeds 2", seed, len(births))
				}
				for _, b := range births {
					if b.Pos != to {
						t.Fatalf("seed %d: offspring at %v, want arrival cell %v", seed, b.Pos, to)
					}
				}
				total += len(births)
			}
			if tt.wantBirths && total == 0 {
				t.Error("no offspring over 20 forage ticks")
			}
		})
	}
}

func TestLitterSizeCoversRange(t *testing.T) {
	sizes := make(map[int]int)
	for seed := int64(0); seed < 300; seed++ {
		ctx := newTestContext(openEnv(3, 3, 0), seed)
		ctx.Pop.SpawnPrey(components.Position{X: 0, Y: 0}, components.Male)
		begin(ctx)
		state := &components.PreyState{Sex: components.Female, TicksSinceReproduction: 30}
		reproduce(ctx, state, components.Position{X: 1, Y: 1}, 4)
		sizes[len(ctx.Births())]++
	}
	for n := 0; n <= 2; n++ {
		if sizes[n] == 0 {
			t.Errorf("litter size %d never drawn: %v", n, sizes)
		}
	}
}

func TestKillIsIdempotent(t *testing.T) {
	ctx := newTestContext(openEnv(2, 2, 0), 1)
	e := ctx.Pop.SpawnPrey(components.Position{}, components.Female)
	begin(ctx)
	ctx.Kill(e)
	ctx.Kill(e)
	if n := len(ctx.Removals()); n != 1 {
		t.Errorf("removals = %d, want 1", n)
	}
}
