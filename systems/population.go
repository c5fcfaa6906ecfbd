package systems

import (
	"cmp"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/feralcats/components"
)

// Population is the agent registry. Every agent is one entity in an ark
// world carrying Identity and Position plus PreyState or CatState.
// Entity handles are the stable slots; AgentIDs give the canonical order.
type Population struct {
	world *ecs.World

	preyMapper *ecs.Map3[components.Identity, components.Position, components.PreyState]
	catMapper  *ecs.Map3[components.Identity, components.Position, components.CatState]
	agents     *ecs.Filter2[components.Identity, components.Position]

	identities *ecs.Map[components.Identity]
	positions  *ecs.Map[components.Position]
	preyStates *ecs.Map[components.PreyState]
	catStates  *ecs.Map[components.CatState]

	nextID  components.AgentID
	numPrey int
	numCats int
}

// NewPopulation creates an empty registry backed by a fresh world.
func NewPopulation() *Population {
	world := ecs.NewWorld()
	return &Population{
		world:      world,
		preyMapper: ecs.NewMap3[components.Identity, components.Position, components.PreyState](world),
		catMapper:  ecs.NewMap3[components.Identity, components.Position, components.CatState](world),
		agents:     ecs.NewFilter2[components.Identity, components.Position](world),
		identities: ecs.NewMap[components.Identity](world),
		positions:  ecs.NewMap[components.Position](world),
		preyStates: ecs.NewMap[components.PreyState](world),
		catStates:  ecs.NewMap[components.CatState](world),
	}
}

// SpawnPrey creates a live prey at pos.
func (p *Population) SpawnPrey(pos components.Position, sex components.Sex) ecs.Entity {
	id := components.Identity{ID: p.allocID(), Kind: components.KindPrey, Alive: true}
	state := components.PreyState{Sex: sex}
	p.numPrey++
	return p.preyMapper.NewEntity(&id, &pos, &state)
}

// SpawnCat creates a live cat at pos with the given energy.
func (p *Population) SpawnCat(pos components.Position, energy int) ecs.Entity {
	id := components.Identity{ID: p.allocID(), Kind: components.KindCat, Alive: true}
	state := components.CatState{Energy: energy}
	p.numCats++
	return p.catMapper.NewEntity(&id, &pos, &state)
}

// Remove deletes e from the world. Must not be called during a query.
func (p *Population) Remove(e ecs.Entity) {
	if !p.world.Alive(e) {
		return
	}
	if p.identities.Get(e).Kind == components.KindPrey {
		p.numPrey--
	} else {
		p.numCats--
	}
	p.world.RemoveEntity(e)
}

// Ordered appends every entity in the world to dst, sorted by AgentID.
func (p *Population) Ordered(dst []ecs.Entity) []ecs.Entity {
	type slot struct {
		id components.AgentID
		e  ecs.Entity
	}
	slots := make([]slot, 0, p.numPrey+p.numCats)

	query := p.agents.Query()
	for query.Next() {
		id, _ := query.Get()
		slots = append(slots, slot{id: id.ID, e: query.Entity()})
	}

	slices.SortFunc(slots, func(a, b slot) int { return cmp.Compare(a.id, b.id) })
	for _, s := range slots {
		dst = append(dst, s.e)
	}
	return dst
}

// Alive reports whether e exists and has not been eaten or starved this tick.
func (p *Population) Alive(e ecs.Entity) bool {
	return p.world.Alive(e) && p.identities.Get(e).Alive
}

// Identity returns e's identity component.
func (p *Population) Identity(e ecs.Entity) *components.Identity {
	return p.identities.Get(e)
}

// Position returns e's position component.
func (p *Population) Position(e ecs.Entity) *components.Position {
	return p.positions.Get(e)
}

// Prey returns e's prey state, or nil if e is a cat.
func (p *Population) Prey(e ecs.Entity) *components.PreyState {
	if !p.preyStates.Has(e) {
		return nil
	}
	return p.preyStates.Get(e)
}

// Cat returns e's cat state, or nil if e is prey.
func (p *Population) Cat(e ecs.Entity) *components.CatState {
	if !p.catStates.Has(e) {
		return nil
	}
	return p.catStates.Get(e)
}

// NumPrey returns the number of prey entities in the world.
func (p *Population) NumPrey() int { return p.numPrey }

// NumCats returns the number of cat entities in the world.
func (p *Population) NumCats() int { return p.numCats }

func (p *Population) allocID() components.AgentID {
	id := p.nextID
	p.nextID++
	return id
}
