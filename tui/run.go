package tui

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/feralcats/sim"
	"github.com/pthm-cable/feralcats/telemetry"
)

// Source is what the terminal loop drives and displays.
type Source interface {
	Advance(steps int)
	Running() bool
	Agents() []sim.AgentView
	Fields() sim.FieldView
	Latest() telemetry.TickSnapshot
}

const maxSpeed = 64

// Controls is the interactive state changed by key presses.
type Controls struct {
	Paused bool
	Speed  int // ticks per frame, 1..maxSpeed
}

// HandleKey applies a key press. It returns false when the user asked to quit.
func (c *Controls) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return false
		case ' ':
			c.Paused = !c.Paused
		case '+', '=':
			c.Speed = min(maxSpeed, c.Speed*2)
		case '-', '_':
			c.Speed = max(1, c.Speed/2)
		}
	}
	return true
}

func (c *Controls) status(running bool) string {
	switch {
	case !running:
		return "[finished]  q quit"
	case c.Paused:
		return "[paused]  space resume  q quit"
	}
	return fmt.Sprintf("x%d  space pause  +/- speed  q quit", c.Speed)
}

// Run drives src at fps frames per second until the user quits. The screen
// must already be initialised; Run does not finalise it.
func Run(screen tcell.Screen, src Source, fps int) {
	r := NewRenderer(screen)
	ctl := &Controls{Speed: 1}

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go screen.ChannelEvents(events, quit)

	ticker := time.NewTicker(time.Second / time.Duration(max(1, fps)))
	defer ticker.Stop()

	draw := func() {
		r.Draw(src.Agents(), src.Fields(), src.Latest(), ctl.status(src.Running()))
	}
	draw()

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !ctl.HandleKey(ev) {
					return
				}
				draw()
			case *tcell.EventResize:
				screen.Sync()
				draw()
			}
		case <-ticker.C:
			if !ctl.Paused && src.Running() {
				src.Advance(ctl.Speed)
				draw()
			}
		}
	}
}
