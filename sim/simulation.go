// Package sim is the simulation engine: it owns the world state and advances
// it one tick at a time.
package sim

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/feralcats/components"
	"github.com/pthm-cable/feralcats/config"
	"github.com/pthm-cable/feralcats/systems"
	"github.com/pthm-cable/feralcats/telemetry"
)

// Simulation holds the complete world state. It is not safe for concurrent
// use; other goroutines should only receive the copies returned by the
// snapshot methods.
type Simulation struct {
	cfg  *config.Config
	seed int64
	rng  *rand.Rand

	env       *systems.Environment
	pop       *systems.Population
	occupancy *systems.Occupancy
	ctx       *systems.Context
	collector *telemetry.Collector
	perf      *telemetry.PerfCollector

	tick    int
	running bool

	// Reused per tick
	order   []ecs.Entity
	catsBuf []components.Position
}

// AgentView is a read-only copy of one agent.
type AgentView struct {
	ID       components.AgentID  `json:"id"`
	Kind     components.Kind     `json:"kind"`
	Position components.Position `json:"position"`
	Alive    bool                `json:"alive"`
	Sex      components.Sex      `json:"sex"`              // prey only
	Energy   int                 `json:"energy,omitempty"` // cats only
}

// FieldView is a read-only copy of the environment fields.
type FieldView = systems.Fields

// New validates cfg and builds the initial world. A nil cfg uses the
// embedded defaults. cfg is not retained; later changes have no effect.
func New(cfg *config.Config) (*Simulation, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	cfg = cfg.Clone()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := time.Now().UnixNano()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}
	cfg.Seed = &seed
	rng := rand.New(rand.NewSource(seed))

	w, h := cfg.World.Width, cfg.World.Height
	env := systems.NewEnvironment(w, h, buildBarrier(cfg), buildVegetation(cfg, rng))

	s := &Simulation{
		cfg:       cfg,
		seed:      seed,
		rng:       rng,
		env:       env,
		pop:       systems.NewPopulation(),
		occupancy: systems.NewOccupancy(w, h),
	}
	s.ctx = systems.NewContext(rng, env, s.occupancy, s.pop, systems.ParamsFromConfig(cfg))

	if err := s.placeAgents(); err != nil {
		return nil, err
	}

	s.collector = telemetry.NewCollector(s.counts())
	s.running = s.pop.NumPrey() > 0
	return s, nil
}

func buildBarrier(cfg *config.Config) [][]bool {
	if cfg.Barrier.Grid != nil {
		return cfg.Barrier.Grid
	}
	if cfg.Barrier.Mode == config.BarrierRiver {
		return systems.RiverBarrier(cfg.World.Width, cfg.World.Height, cfg.Barrier.Thickness, cfg.Barrier.Amplitude)
	}
	return nil
}

func buildVegetation(cfg *config.Config, rng *rand.Rand) [][]int {
	v := cfg.Vegetation
	switch {
	case v.Grid != nil:
		return v.Grid
	case v.Mode == config.VegetationNoise:
		return systems.NoiseVegetation(rng.Int63(), cfg.World.Width, cfg.World.Height, v.NoiseScale, v.Octaves)
	default:
		return systems.RandomVegetation(rng, cfg.World.Width, cfg.World.Height, v.Weights)
	}
}

// placeAgents drops prey, then cats, on uniformly chosen free cells.
func (s *Simulation) placeAgents() error {
	nPrey, nCats := s.cfg.Population.Prey, s.cfg.Population.Cats
	if nPrey+nCats == 0 {
		return nil
	}

	free := s.env.FreeCells()
	if len(free) == 0 {
		return fmt.Errorf("%w: %d agents requested but every cell is barrier",
			config.ErrInvalidConfiguration, nPrey+nCats)
	}

	for i := 0; i < nPrey; i++ {
		pos := free[s.rng.Intn(len(free))]
		sex := components.Male
		if s.rng.Float64() < s.cfg.Prey.FemaleRatio {
			sex = components.Female
		}
		s.pop.SpawnPrey(pos, sex)
	}
	for i := 0; i < nCats; i++ {
		pos := free[s.rng.Intn(len(free))]
		s.pop.SpawnCat(pos, s.cfg.Cat.InitialEnergy)
	}
	return nil
}

func (s *Simulation) counts() telemetry.Counts {
	return telemetry.Counts{
		Cats:              s.pop.NumCats(),
		Prey:              s.pop.NumPrey(),
		PredationThisTick: s.ctx.Stats.PredationThisTick,
		PredationTotal:    s.ctx.Stats.PredationTotal,
	}
}

// SetPerfCollector enables per-phase step timing. Pass nil to disable.
func (s *Simulation) SetPerfCollector(p *telemetry.PerfCollector) {
	s.perf = p
}

// IsRunning reports whether any prey remain. Once false it never becomes true.
func (s *Simulation) IsRunning() bool { return s.running }

// Tick returns the number of completed steps.
func (s *Simulation) Tick() int { return s.tick }

// Seed returns the seed actually used, including a time-derived one.
func (s *Simulation) Seed() int64 { return s.seed }

// Config returns a copy of the effective configuration, seed included.
func (s *Simulation) Config() *config.Config { return s.cfg.Clone() }

// Metrics returns a copy of every tick snapshot; index i holds tick i.
func (s *Simulation) Metrics() []telemetry.TickSnapshot {
	return s.collector.Snapshots()
}

// LatestMetrics returns the snapshot of the current tick.
func (s *Simulation) LatestMetrics() telemetry.TickSnapshot {
	return s.collector.Latest()
}

// AgentSnapshot returns a copy of every agent in AgentID order.
func (s *Simulation) AgentSnapshot() []AgentView {
	entities := s.pop.Ordered(nil)
	views := make([]AgentView, 0, len(entities))
	for _, e := range entities {
		id := s.pop.Identity(e)
		v := AgentView{
			ID:       id.ID,
			Kind:     id.Kind,
			Position: *s.pop.Position(e),
			Alive:    id.Alive,
		}
		if p := s.pop.Prey(e); p != nil {
			v.Sex = p.Sex
		}
		if c := s.pop.Cat(e); c != nil {
			v.Energy = c.Energy
		}
		views = append(views, v)
	}
	return views
}

// FieldSnapshot returns copies of the environment fields.
func (s *Simulation) FieldSnapshot() FieldView {
	return s.env.Fields()
}
