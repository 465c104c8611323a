package behavior

// Agent is the minimal view of a simulated entity the behavior core needs.
// The host world owns the concrete type.
type Agent interface {
	// ID is the host-assigned identity, stable for the agent's lifetime.
	ID() string
	// StableID is a numeric identity used by the stagger formula. It must
	// not change while the agent lives.
	StableID() uint64
	// StepCount is the agent's own step counter, incremented once per
	// world step while the agent exists.
	StepCount() uint64
	// ProfileKey names the behavior profile for this agent's type.
	ProfileKey() string
	// Interactive reports whether the agent is under direct interactive
	// control (tamed, ridden, player-adjacent). Interactive agents are
	// never time-dilated.
	Interactive() bool
}
