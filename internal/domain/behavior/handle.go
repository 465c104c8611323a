package behavior

// Container is the per-agent state the dispatcher passes to every handle
// invocation. Implemented by the agent state container in internal/app.
type Container interface {
	// Record lazily initializes the handle and returns its mutable state
	// record. The returned reference is stable for the current step.
	Record(id string) Record
	// SetRecord replaces a handle's record, subject to validation, value
	// comparison, version bump and listener notification.
	SetRecord(id string, rec Record)

	// ElapsedSteps is the clamped number of steps since the agent was
	// last processed. 1 on a regular active step.
	ElapsedSteps() uint64
	// Mode is the update mode the scheduler chose for this step.
	Mode() UpdateMode
	// WakeReason says why the agent is being processed this step.
	WakeReason() string

	AddDependency(id, requiredID string)
	HasUnmetDependencies(id string) bool
	Dependencies(id string) []string

	IsHandleInitialized(id string) bool
	HandleVersion(id string) uint64
}

// Handle is a named, stateless strategy implementing one trait's per-agent
// state updates. All mutable state lives in the container, keyed by the
// handle's id; a handle may read another handle's record through the
// container, which is a declared coupling backed by the dependency graph.
//
// Handles are registered once at process start and invoked across many
// agents; implementations must hold no per-agent state of their own.
type Handle interface {
	ID() string
	// Supports reports whether this handle applies to the given profile.
	Supports(p *Profile) bool
	// Initialize is called exactly once, lazily, on first access to the
	// handle's record for a given agent.
	Initialize(a Agent, c Container, p *Profile)
	// Tick is called when the handle is due this step. Implementations
	// honor the catch-up safety contract: never let an elapsed-scaled
	// change cross a terminal boundary in one jump; clamp to the nearest
	// safe value instead.
	Tick(a Agent, c Container, p *Profile)
	// TickInterval is the number of steps between invocations, >= 1.
	TickInterval() int
	// ReadState and WriteState are persistence hooks, invoked at
	// save/load boundaries independent of the scheduler.
	ReadState(a Agent, c Container, p *Profile, rec Record)
	WriteState(a Agent, c Container, p *Profile, rec Record)
	// OverrideFoodCheck lets a handle veto or extend the host's edibility
	// query. It receives the running value and returns the new one.
	OverrideFoodCheck(a Agent, c Container, p *Profile, item string, current bool) bool
}

// BaseHandle provides no-op defaults for embedding.
type BaseHandle struct{}

func (BaseHandle) Supports(*Profile) bool                    { return false }
func (BaseHandle) Initialize(Agent, Container, *Profile)     {}
func (BaseHandle) Tick(Agent, Container, *Profile)           {}
func (BaseHandle) TickInterval() int                         { return 1 }
func (BaseHandle) ReadState(Agent, Container, *Profile, Record)  {}
func (BaseHandle) WriteState(Agent, Container, *Profile, Record) {}
func (BaseHandle) OverrideFoodCheck(_ Agent, _ Container, _ *Profile, _ string, current bool) bool {
	return current
}
