// Package systems provides the per-tick rules of the simulation: environment
// fields, occupancy, the population registry and agent behaviours.
package systems

import (
	"math/rand"
	"slices"

	"github.com/pthm-cable/feralcats/components"
)

const (
	MaxVegetation = 4
	TrailFresh    = 1 // just walked over
	TrailStale    = 5 // untouched for four or more ticks
)

// Environment owns the grid fields. All fields are row-major flat slices
// indexed y*width+x. It never touches the population.
type Environment struct {
	width, height int

	barrier    []bool // immutable after construction
	vegetation []int8 // 0..MaxVegetation
	scent      []bool // recomputed every tick
	trail      []int8 // TrailFresh..TrailStale
}

// NewEnvironment builds the fields from [x][y] grids. A nil barrier means an
// open field; vegetation values are clamped to [0, MaxVegetation]. Trails
// start stale.
func NewEnvironment(width, height int, barrier [][]bool, vegetation [][]int) *Environment {
	n := width * height
	e := &Environment{
		width:      width,
		height:     height,
		barrier:    make([]bool, n),
		vegetation: make([]int8, n),
		scent:      make([]bool, n),
		trail:      make([]int8, n),
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if barrier != nil {
				e.barrier[i] = barrier[x][y]
			}
			if vegetation != nil {
				e.vegetation[i] = int8(clampInt(vegetation[x][y], 0, MaxVegetation))
			}
			e.trail[i] = TrailStale
		}
	}
	return e
}

// Width returns the grid width in cells.
func (e *Environment) Width() int { return e.width }

// Height returns the grid height in cells.
func (e *Environment) Height() int { return e.height }

// InBounds reports whether p lies on the grid.
func (e *Environment) InBounds(p components.Position) bool {
	return p.X >= 0 && p.X < e.width && p.Y >= 0 && p.Y < e.height
}

// IsBlocked reports whether p is off the grid or on a barrier cell.
func (e *Environment) IsBlocked(p components.Position) bool {
	return !e.InBounds(p) || e.barrier[e.index(p)]
}

// Barrier reports whether p is a barrier cell. p must be in bounds.
func (e *Environment) Barrier(p components.Position) bool {
	return e.barrier[e.index(p)]
}

// Vegetation returns the vegetation level at p. p must be in bounds.
func (e *Environment) Vegetation(p components.Position) int {
	return int(e.vegetation[e.index(p)])
}

// Scent reports whether a cat was within scent radius of p at tick start.
func (e *Environment) Scent(p components.Position) bool {
	return e.scent[e.index(p)]
}

// Trail returns the trail staleness at p.
func (e *Environment) Trail(p components.Position) int {
	return int(e.trail[e.index(p)])
}

// RefreshScent recomputes the scent field. A cell is scented iff its
// Chebyshev distance to the nearest cat is at most radius.
func (e *Environment) RefreshScent(cats []components.Position, radius int) {
	clear(e.scent)
	for _, c := range cats {
		x0, x1 := max(0, c.X-radius), min(e.width-1, c.X+radius)
		y0, y1 := max(0, c.Y-radius), min(e.height-1, c.Y+radius)
		for y := y0; y <= y1; y++ {
			row := y * e.width
			for x := x0; x <= x1; x++ {
				e.scent[row+x] = true
			}
		}
	}
}

// DecayTrail ages every trail cell by one, saturating at TrailStale.
func (e *Environment) DecayTrail() {
	for i, t := range e.trail {
		if t < TrailStale {
			e.trail[i] = t + 1
		}
	}
}

// MarkTrail freshens the trail at p.
func (e *Environment) MarkTrail(p components.Position) {
	e.trail[e.index(p)] = TrailFresh
}

// DepleteVegetation removes amount from p, flooring at zero.
func (e *Environment) DepleteVegetation(p components.Position, amount int) {
	i := e.index(p)
	e.vegetation[i] = int8(max(0, int(e.vegetation[i])-amount))
}

// RegrowVegetation gives every non-barrier cell with some vegetation an
// independent chance prob of growing one level, capped at MaxVegetation.
// Cells are visited in row-major order so the random stream is consumed
// in a fixed order.
func (e *Environment) RegrowVegetation(rng *rand.Rand, prob float64) {
	for i, v := range e.vegetation {
		if e.barrier[i] || v <= 0 {
			continue
		}
		if rng.Float64() < prob && v < MaxVegetation {
			e.vegetation[i] = v + 1
		}
	}
}

// mooreOffsets lists the 3x3 neighbourhood in row-major order, centre included.
var mooreOffsets = [9][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {0, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// OpenMoore appends the non-blocked cells of p's 3x3 neighbourhood,
// including p itself, to dst.
func (e *Environment) OpenMoore(p components.Position, dst []components.Position) []components.Position {
	for _, o := range mooreOffsets {
		c := p.Add(o[0], o[1])
		if !e.IsBlocked(c) {
			dst = append(dst, c)
		}
	}
	return dst
}

// Neighbors8 appends the in-bounds cells adjacent to p, excluding p, to dst.
func (e *Environment) Neighbors8(p components.Position, dst []components.Position) []components.Position {
	for _, o := range mooreOffsets {
		if o[0] == 0 && o[1] == 0 {
			continue
		}
		c := p.Add(o[0], o[1])
		if e.InBounds(c) {
			dst = append(dst, c)
		}
	}
	return dst
}

// FreeCells returns every non-barrier cell in row-major order.
func (e *Environment) FreeCells() []components.Position {
	var cells []components.Position
	for y := 0; y < e.height; y++ {
		for x := 0; x < e.width; x++ {
			if !e.barrier[y*e.width+x] {
				cells = append(cells, components.Position{X: x, Y: y})
			}
		}
	}
	return cells
}

// TotalVegetation sums the vegetation field.
func (e *Environment) TotalVegetation() int {
	total := 0
	for _, v := range e.vegetation {
		total += int(v)
	}
	return total
}

// Fields is a read-only copy of every grid field, row-major.
type Fields struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Vegetation []int8 `json:"vegetation"`
	Barrier    []bool `json:"barrier"`
	Scent      []bool `json:"scent"`
	Trail      []int8 `json:"trail"`
}

// Fields returns copies of the current field state.
func (e *Environment) Fields() Fields {
	return Fields{
		Width:      e.width,
		Height:     e.height,
		Vegetation: slices.Clone(e.vegetation),
		Barrier:    slices.Clone(e.barrier),
		Scent:      slices.Clone(e.scent),
		Trail:      slices.Clone(e.trail),
	}
}

// VegetationAt returns the copied vegetation level at (x, y).
func (f Fields) VegetationAt(x, y int) int { return int(f.Vegetation[y*f.Width+x]) }

// BarrierAt reports whether (x, y) is a barrier cell.
func (f Fields) BarrierAt(x, y int) bool { return f.Barrier[y*f.Width+x] }

// ScentAt reports whether (x, y) was scented.
func (f Fields) ScentAt(x, y int) bool { return f.Scent[y*f.Width+x] }

// TrailAt returns the copied trail staleness at (x, y).
func (f Fields) TrailAt(x, y int) int { return int(f.Trail[y*f.Width+x]) }

func (e *Environment) index(p components.Position) int {
	return p.Y*e.width + p.X
}
