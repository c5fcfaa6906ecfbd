package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/feralcats/components"
)

// Behavior is the decision policy of one species. Act runs a single agent's
// turn for the current tick.
type Behavior interface {
	Act(ctx *Context, e ecs.Entity)
}

var (
	preyBehavior Behavior = PreyBehavior{}
	catBehavior  Behavior = CatBehavior{}
)

// BehaviorFor returns the policy for kind.
func BehaviorFor(kind components.Kind) Behavior {
	if kind == components.KindCat {
		return catBehavior
	}
	return preyBehavior
}
