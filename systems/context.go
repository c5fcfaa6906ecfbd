package systems

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/feralcats/components"
	"github.com/pthm-cable/feralcats/config"
)

// Params are the behaviour parameters resolved from configuration.
type Params struct {
	FleeProb               float64
	FemaleRatio            float64
	FleeDepletion          int
	ForageDepletion        int
	ReproductionAge        int
	ReproductionVegetation int
	MaxOffspring           int

	PredationBase float64
	PredationCoef float64

	MaxEnergy       int
	StarvationTicks int
}

// ParamsFromConfig extracts behaviour parameters from cfg.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		FleeProb:               cfg.Prey.FleeProb,
		FemaleRatio:            cfg.Prey.FemaleRatio,
		FleeDepletion:          cfg.Prey.FleeDepletion,
		ForageDepletion:        cfg.Prey.ForageDepletion,
		ReproductionAge:        cfg.Prey.ReproductionAge,
		ReproductionVegetation: cfg.Prey.ReproductionVegetation,
		MaxOffspring:           cfg.Prey.MaxOffspring,
		PredationBase:          cfg.Predation.Base,
		PredationCoef:          cfg.Predation.Coef,
		MaxEnergy:              cfg.Cat.MaxEnergy,
		StarvationTicks:        cfg.Cat.StarvationTicks,
	}
}

// TickStats counts predation events.
type TickStats struct {
	PredationThisTick int
	PredationTotal    int // never decreases
}

// BeginTick resets the per-tick counter.
func (s *TickStats) BeginTick() {
	s.PredationThisTick = 0
}

// RecordPredation counts one successful capture.
func (s *TickStats) RecordPredation() {
	s.PredationThisTick++
	s.PredationTotal++
}

// Birth is a queued offspring, created at commit time.
type Birth struct {
	Pos components.Position
	Sex components.Sex
}

// Context is everything a behaviour may read or write during one tick.
// Changes to the population set are buffered here and committed by the
// scheduler after every agent has acted.
type Context struct {
	Rng       *rand.Rand
	Env       *Environment
	Occupancy *Occupancy
	Pop       *Population
	Params    Params
	Stats     TickStats

	cats     []ecs.Entity // cats present at tick start
	births   []Birth
	removals []ecs.Entity

	// Scratch buffers reused across decisions.
	cells   []components.Position
	weights []float64
	prey    []ecs.Entity
}

// NewContext wires a context over the given state.
func NewContext(rng *rand.Rand, env *Environment, occ *Occupancy, pop *Population, params Params) *Context {
	return &Context{
		Rng:       rng,
		Env:       env,
		Occupancy: occ,
		Pop:       pop,
		Params:    params,
	}
}

// Begin resets the commit buffer and rebuilds the occupancy index from
// order, which must be the tick's agent list in AgentID order.
func (c *Context) Begin(order []ecs.Entity) {
	c.Stats.BeginTick()
	c.births = c.births[:0]
	c.removals = c.removals[:0]
	c.cats = c.cats[:0]

	c.Occupancy.Clear()
	for _, e := range order {
		c.Occupancy.Insert(e, *c.Pop.Position(e))
		if c.Pop.Identity(e).Kind == components.KindCat {
			c.cats = append(c.cats, e)
		}
	}
}

// Births returns offspring queued this tick.
func (c *Context) Births() []Birth { return c.births }

// Removals returns entities eaten or starved this tick.
func (c *Context) Removals() []ecs.Entity { return c.removals }

// QueueBirth schedules a new prey at pos.
func (c *Context) QueueBirth(pos components.Position, sex components.Sex) {
	c.births = append(c.births, Birth{Pos: pos, Sex: sex})
}

// Kill marks e dead, drops it from the occupancy index and queues its removal.
// A killed agent takes no further part in the tick.
func (c *Context) Kill(e ecs.Entity) {
	id := c.Pop.Identity(e)
	if !id.Alive {
		return
	}
	id.Alive = false
	c.Occupancy.Remove(e, *c.Pop.Position(e))
	c.removals = append(c.removals, e)
}

// Move relocates e to a non-blocked cell.
func (c *Context) Move(e ecs.Entity, to components.Position) {
	pos := c.Pop.Position(e)
	c.Occupancy.Move(e, *pos, to)
	*pos = to
}

// LiveCatPositions appends the current cell of every cat still alive.
func (c *Context) LiveCatPositions(dst []components.Position) []components.Position {
	for _, e := range c.cats {
		if c.Pop.Identity(e).Alive {
			dst = append(dst, *c.Pop.Position(e))
		}
	}
	return dst
}
