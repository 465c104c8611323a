package behavior

// UpdateMode classifies how much work an agent's container does on a given
// world step.
type UpdateMode int

const (
	// ModeSkip does no processing at all this step.
	ModeSkip UpdateMode = iota
	// ModeActive runs every due handle with a single-step delta.
	ModeActive
	// ModeCatchUp runs every due handle, integrating the elapsed steps
	// accumulated while the agent was skipped.
	ModeCatchUp
)

func (m UpdateMode) String() string {
	switch m {
	case ModeSkip:
		return "skip"
	case ModeActive:
		return "active"
	case ModeCatchUp:
		return "catch_up"
	default:
		return "unknown"
	}
}
