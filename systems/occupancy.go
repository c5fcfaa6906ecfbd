package systems

import (
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/feralcats/components"
)

// Occupancy indexes live agents by cell. Any number of agents may share a
// cell; entities in a cell keep their insertion order.
type Occupancy struct {
	width, height int
	cells         [][]ecs.Entity // flat grid of entity lists
}

// NewOccupancy creates an empty index covering the grid.
func NewOccupancy(width, height int) *Occupancy {
	cells := make([][]ecs.Entity, width*height)
	for i := range cells {
		cells[i] = make([]ecs.Entity, 0, 2)
	}
	return &Occupancy{width: width, height: height, cells: cells}
}

// Clear removes all entities from the index.
func (o *Occupancy) Clear() {
	for i := range o.cells {
		o.cells[i] = o.cells[i][:0]
	}
}

// Insert adds e at p.
func (o *Occupancy) Insert(e ecs.Entity, p components.Position) {
	i := o.cellIndex(p)
	o.cells[i] = append(o.cells[i], e)
}

// Remove deletes e from p. It is a no-op if e is not indexed there.
func (o *Occupancy) Remove(e ecs.Entity, p components.Position) {
	i := o.cellIndex(p)
	if j := slices.Index(o.cells[i], e); j >= 0 {
		o.cells[i] = slices.Delete(o.cells[i], j, j+1)
	}
}

// Move re-indexes e from one cell to another.
func (o *Occupancy) Move(e ecs.Entity, from, to components.Position) {
	if from == to {
		return
	}
	o.Remove(e, from)
	o.Insert(e, to)
}

// At returns the entities at p. The slice is owned by the index and is only
// valid until the next mutation.
func (o *Occupancy) At(p components.Position) []ecs.Entity {
	return o.cells[o.cellIndex(p)]
}

// Count returns the number of indexed entities.
func (o *Occupancy) Count() int {
	n := 0
	for _, c := range o.cells {
		n += len(c)
	}
	return n
}

func (o *Occupancy) cellIndex(p components.Position) int {
	return p.Y*o.width + p.X
}
