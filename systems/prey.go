package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/feralcats/components"
)

// PreyBehavior makes one move per tick: flee from sensed cats or forage
// toward vegetation, then possibly reproduce.
type PreyBehavior struct{}

// Act implements Behavior.
func (PreyBehavior) Act(ctx *Context, e ecs.Entity) {
	state := ctx.Pop.Prey(e)
	from := *ctx.Pop.Position(e)

	candidates := ctx.Env.OpenMoore(from, ctx.cells[:0])
	ctx.cells = candidates

	fleeing := ctx.Env.Scent(from) && ctx.Rng.Float64() < ctx.Params.FleeProb

	var to components.Position
	if fleeing {
		to = fleeTarget(ctx, candidates)
	} else {
		to = forageTarget(ctx, candidates)
	}

	ctx.Move(e, to)
	ctx.Env.MarkTrail(to)
	state.TicksSinceReproduction++

	if fleeing {
		ctx.Env.DepleteVegetation(to, ctx.Params.FleeDepletion)
		return
	}

	arrival := ctx.Env.Vegetation(to)
	ctx.Env.DepleteVegetation(to, ctx.Params.ForageDepletion)
	reproduce(ctx, state, to, arrival)
}

// fleeTarget picks uniformly among the candidates farthest (Chebyshev) from
// the nearest live cat. With no cats alive every candidate ties.
func fleeTarget(ctx *Context, candidates []components.Position) components.Position {
	cats := ctx.LiveCatPositions(nil)

	best := math.MinInt
	var ties []components.Position
	for _, c := range candidates {
		d := math.MaxInt
		for _, cat := range cats {
			d = min(d, components.Chebyshev(c, cat))
		}
		switch {
		case d > best:
			best = d
			ties = append(ties[:0], c)
		case d == best:
			ties = append(ties, c)
		}
	}
	return ties[ctx.Rng.Intn(len(ties))]
}

// forageTarget samples a candidate with weight 1 + vegetation.
func forageTarget(ctx *Context, candidates []components.Position) components.Position {
	weights := ctx.weights[:0]
	for _, c := range candidates {
		weights = append(weights, float64(1+ctx.Env.Vegetation(c)))
	}
	ctx.weights = weights
	return candidates[weightedIndex(ctx.Rng, weights)]
}

// reproduce queues a litter when a mature female forages onto rich ground
// next to a live male. arrival is the vegetation found on arrival, before
// the forage depletion.
func reproduce(ctx *Context, state *components.PreyState, at components.Position, arrival int) {
	p := ctx.Params
	if state.Sex != components.Female ||
		arrival <= p.ReproductionVegetation ||
		state.TicksSinceReproduction < p.ReproductionAge ||
		!hasMaleNeighbor(ctx, at) {
		return
	}

	n := ctx.Rng.Intn(p.MaxOffspring + 1)
	for i := 0; i < n; i++ {
		sex := components.Male
		if ctx.Rng.Float64() < p.FemaleRatio {
			sex = components.Female
		}
		ctx.QueueBirth(at, sex)
	}
	state.TicksSinceReproduction = 0
}

// hasMaleNeighbor reports whether a live male prey occupies one of the eight
// cells around p.
func hasMaleNeighbor(ctx *Context, p components.Position) bool {
	var buf [8]components.Position
	for _, c := range ctx.Env.Neighbors8(p, buf[:0]) {
		for _, other := range ctx.Occupancy.At(c) {
			if !ctx.Pop.Alive(other) {
				continue
			}
			if s := ctx.Pop.Prey(other); s != nil && s.Sex == components.Male {
				return true
			}
		}
	}
	return false
}
