package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/feralcats/components"
)

// trailWeightCeiling makes fresh trail (1) weigh 5 and stale trail (5) weigh 1.
const trailWeightCeiling = 6

// CatBehavior takes one move-and-hunt sub-step per energy point, then
// applies starvation.
type CatBehavior struct{}

// Act implements Behavior.
func (CatBehavior) Act(ctx *Context, e ecs.Entity) {
	state := ctx.Pop.Cat(e)

	// Sub-step count is fixed at the start of the turn.
	steps := state.Energy
	for i := 0; i < steps; i++ {
		to := trackTarget(ctx, *ctx.Pop.Position(e))
		ctx.Move(e, to)
		hunt(ctx, state, to)
	}

	state.TicksSinceFeed++
	if state.TicksSinceFeed >= ctx.Params.StarvationTicks {
		state.Energy--
		state.TicksSinceFeed = 0
	}
	if state.Energy <= 0 {
		ctx.Kill(e)
	}
}

// trackTarget samples a neighbouring cell, favouring fresh prey trail.
func trackTarget(ctx *Context, from components.Position) components.Position {
	candidates := ctx.Env.OpenMoore(from, ctx.cells[:0])
	ctx.cells = candidates

	weights := ctx.weights[:0]
	for _, c := range candidates {
		weights = append(weights, float64(max(trailWeightCeiling-ctx.Env.Trail(c), 1)))
	}
	ctx.weights = weights
	return candidates[weightedIndex(ctx.Rng, weights)]
}

// hunt attempts to catch one prey at cell. Returns true on a kill.
func hunt(ctx *Context, state *components.CatState, cell components.Position) bool {
	targets := ctx.prey[:0]
	for _, other := range ctx.Occupancy.At(cell) {
		if ctx.Pop.Alive(other) && ctx.Pop.Identity(other).Kind == components.KindPrey {
			targets = append(targets, other)
		}
	}
	ctx.prey = targets
	if len(targets) == 0 {
		return false
	}

	victim := targets[ctx.Rng.Intn(len(targets))]
	p := ctx.Params.PredationBase + ctx.Params.PredationCoef*float64(ctx.Env.Vegetation(cell))
	if ctx.Rng.Float64() >= p {
		return false
	}

	ctx.Kill(victim)
	ctx.Stats.RecordPredation()
	state.Energy = min(state.Energy+1, ctx.Params.MaxEnergy)
	state.TicksSinceFeed = 0
	return true
}
