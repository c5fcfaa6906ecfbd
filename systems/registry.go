package systems

// Step phase identifiers, in execution order.
const (
	PhaseScent   = "scent"
	PhaseTrail   = "trail"
	PhaseAgents  = "agents"
	PhaseCommit  = "commit"
	PhaseRegrow  = "regrow"
	PhaseMetrics = "metrics"
)

// SystemInfo describes a step phase for display.
type SystemInfo struct {
	ID          string // Internal identifier (used for perf tracking)
	Name        string // Display name
	Description string // What this phase does
	Category    string // Grouping (e.g., "environment", "agents")
}

// SystemRegistry holds metadata about all step phases.
// This centralizes naming so the TUI and perf tracker stay in sync.
type SystemRegistry struct {
	systems []SystemInfo
	byID    map[string]SystemInfo
}

// NewSystemRegistry creates a registry with every step phase.
func NewSystemRegistry() *SystemRegistry {
	reg := &SystemRegistry{
		byID: make(map[string]SystemInfo),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds the step phases in execution order.
// Update this when adding new phases.
func (r *SystemRegistry) registerDefaults() {
	r.Register(SystemInfo{ID: PhaseScent, Name: "Scent", Description: "Recomputes cat scent field", Category: "environment"})
	r.Register(SystemInfo{ID: PhaseTrail, Name: "Trail", Description: "Ages prey trail field", Category: "environment"})
	r.Register(SystemInfo{ID: PhaseAgents, Name: "Agents", Description: "Runs prey and cat behaviours", Category: "agents"})
	r.Register(SystemInfo{ID: PhaseCommit, Name: "Commit", Description: "Removes dead agents and spawns offspring", Category: "agents"})
	r.Register(SystemInfo{ID: PhaseRegrow, Name: "Regrow", Description: "Regrows vegetation", Category: "environment"})
	r.Register(SystemInfo{ID: PhaseMetrics, Name: "Metrics", Description: "Records tick snapshot", Category: "internal"})
}

// Register adds a phase to the registry.
func (r *SystemRegistry) Register(info SystemInfo) {
	r.systems = append(r.systems, info)
	r.byID[info.ID] = info
}

// Get returns phase info by ID.
func (r *SystemRegistry) Get(id string) (SystemInfo, bool) {
	info, ok := r.byID[id]
	return info, ok
}

// GetName returns the display name for a phase ID.
// Falls back to the ID itself if not found.
func (r *SystemRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// All returns all registered phases.
func (r *SystemRegistry) All() []SystemInfo {
	return r.systems
}

// IDs returns all phase IDs in execution order.
func (r *SystemRegistry) IDs() []string {
	ids := make([]string, len(r.systems))
	for i, info := range r.systems {
		ids[i] = info.ID
	}
	return ids
}
