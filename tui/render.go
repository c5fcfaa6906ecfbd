// Package tui draws the simulation in a terminal using tcell.
package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/feralcats/components"
	"github.com/pthm-cable/feralcats/sim"
	"github.com/pthm-cable/feralcats/systems"
	"github.com/pthm-cable/feralcats/telemetry"
)

// Glyphs used for grid cells.
const (
	GlyphCat     = 'C'
	GlyphFemale  = 'f'
	GlyphMale    = 'm'
	GlyphBarrier = '~'
	GlyphEmpty   = ' '
	GlyphScent   = '.'
)

// vegetationBg shades empty ground by vegetation level 0..4.
var vegetationBg = [systems.MaxVegetation + 1]tcell.Color{
	tcell.NewRGBColor(60, 45, 30),
	tcell.NewRGBColor(50, 70, 30),
	tcell.NewRGBColor(40, 95, 30),
	tcell.NewRGBColor(30, 120, 30),
	tcell.NewRGBColor(20, 150, 30),
}

var (
	barrierStyle = tcell.StyleDefault.Foreground(tcell.ColorLightBlue).Background(tcell.NewRGBColor(20, 40, 120))
	statusStyle  = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	catFg        = tcell.ColorRed
	preyFg       = tcell.ColorWhite
	scentFg      = tcell.NewRGBColor(200, 160, 160)
)

// Renderer draws frames onto a tcell screen. Each grid cell takes one
// terminal column; the status line sits under the grid.
type Renderer struct {
	screen tcell.Screen
	cells  []rune // per-cell glyph scratch, row-major
}

// NewRenderer creates a renderer for an initialised screen.
func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{screen: screen}
}

// Draw renders one frame. Cats hide prey on the same cell. Cells outside
// the visible screen are clipped.
func (r *Renderer) Draw(agents []sim.AgentView, fields sim.FieldView, m telemetry.TickSnapshot, status string) {
	r.screen.Clear()

	n := fields.Width * fields.Height
	if cap(r.cells) < n {
		r.cells = make([]rune, n)
	}
	r.cells = r.cells[:n]
	clear(r.cells)

	for _, a := range agents {
		i := a.Position.Y*fields.Width + a.Position.X
		switch {
		case a.Kind == components.KindCat:
			r.cells[i] = GlyphCat
		case r.cells[i] == GlyphCat:
		case a.Sex == components.Female:
			r.cells[i] = GlyphFemale
		default:
			r.cells[i] = GlyphMale
		}
	}

	for y := 0; y < fields.Height; y++ {
		for x := 0; x < fields.Width; x++ {
			ch, style := r.cell(fields, x, y)
			r.screen.SetContent(x, y, ch, nil, style)
		}
	}

	line := fmt.Sprintf("tick %d  cats %d  prey %d  predation %d (+%d)  %s",
		m.Tick, m.LiveCats, m.LivePrey, m.PredationTotal, m.PredationThisTick, status)
	r.drawText(0, fields.Height+1, line, statusStyle)

	r.screen.Show()
}

func (r *Renderer) cell(f sim.FieldView, x, y int) (rune, tcell.Style) {
	if f.BarrierAt(x, y) {
		return GlyphBarrier, barrierStyle
	}
	style := tcell.StyleDefault.Background(vegetationBg[f.VegetationAt(x, y)])

	switch ch := r.cells[y*f.Width+x]; ch {
	case GlyphCat:
		return ch, style.Foreground(catFg).Bold(true)
	case GlyphFemale, GlyphMale:
		return ch, style.Foreground(preyFg)
	}
	if f.ScentAt(x, y) {
		return GlyphScent, style.Foreground(scentFg)
	}
	return GlyphEmpty, style
}

func (r *Renderer) drawText(x, y int, s string, style tcell.Style) {
	for i, ch := range []rune(s) {
		r.screen.SetContent(x+i, y, ch, nil, style)
	}
}
