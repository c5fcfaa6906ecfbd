package sim

import (
	"github.com/pthm-cable/feralcats/systems"
)

// Step advances the world by one tick. Step always advances the clock; once
// the prey are gone the world keeps ticking with no prey to act.
//
// Order within a tick:
//  1. reset the per-tick predation counter and rebuild occupancy
//  2. recompute scent from live cats
//  3. age the trail field
//  4. run every live agent once, in a shuffled order
//  5. commit removals, then births
//  6. regrow vegetation
//  7. record metrics and update the running flag
func (s *Simulation) Step() {
	s.perf.StartTick()
	s.tick++

	s.perf.StartPhase(systems.PhaseScent)
	s.order = s.pop.Ordered(s.order[:0])
	s.ctx.Begin(s.order)
	s.catsBuf = s.ctx.LiveCatPositions(s.catsBuf[:0])
	s.env.RefreshScent(s.catsBuf, s.cfg.Environment.ScentRadius)

	s.perf.StartPhase(systems.PhaseTrail)
	s.env.DecayTrail()

	s.perf.StartPhase(systems.PhaseAgents)
	s.rng.Shuffle(len(s.order), func(i, j int) {
		s.order[i], s.order[j] = s.order[j], s.order[i]
	})
	for _, e := range s.order {
		// Agents eaten earlier in this tick do not act.
		if !s.pop.Alive(e) {
			continue
		}
		systems.BehaviorFor(s.pop.Identity(e).Kind).Act(s.ctx, e)
	}

	s.perf.StartPhase(systems.PhaseCommit)
	s.commit()

	s.perf.StartPhase(systems.PhaseRegrow)
	s.env.RegrowVegetation(s.rng, s.cfg.Environment.RegrowProb)

	s.perf.StartPhase(systems.PhaseMetrics)
	s.collector.Collect(s.tick, s.counts())
	if s.pop.NumPrey() == 0 {
		s.running = false
	}

	s.perf.EndTick()
}

// commit applies buffered population changes: removals first, then births.
func (s *Simulation) commit() {
	for _, e := range s.ctx.Removals() {
		s.pop.Remove(e)
	}
	for _, b := range s.ctx.Births() {
		s.pop.SpawnPrey(b.Pos, b.Sex)
	}
}

// Run steps until the simulation stops or maxTicks further steps have run.
// maxTicks <= 0 means no cap. Returns the number of steps taken.
func (s *Simulation) Run(maxTicks int) int {
	n := 0
	for s.running && (maxTicks <= 0 || n < maxTicks) {
		s.Step()
		n++
	}
	return n
}
