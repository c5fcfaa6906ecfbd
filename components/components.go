// Package components defines ECS components for the simulation.
package components

// Kind distinguishes the two agent species.
type Kind uint8

const (
	KindPrey Kind = iota
	KindCat
)

// String returns the lowercase species name.
func (k Kind) String() string {
	switch k {
	case KindPrey:
		return "prey"
	case KindCat:
		return "cat"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Sex of a prey agent.
type Sex uint8

const (
	Female Sex = iota
	Male
)

// String returns "female" or "male".
func (s Sex) String() string {
	if s == Male {
		return "male"
	}
	return "female"
}

// MarshalText encodes the sex by name.
func (s Sex) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// AgentID is a stable identifier assigned in creation order. IDs are never reused.
type AgentID uint32

// Identity is carried by every agent.
// Alive is cleared the moment an agent is eaten or starves; the entity itself
// is removed from the world at commit time.
type Identity struct {
	ID    AgentID
	Kind  Kind
	Alive bool
}

// PreyState holds prey-only state.
type PreyState struct {
	Sex                    Sex
	TicksSinceReproduction int
}

// CatState holds predator-only state.
type CatState struct {
	Energy         int // 0..max, 0 is terminal
	TicksSinceFeed int
}
