package runtime

import (
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
)

// SimAgent is the runtime's concrete behavior.Agent. The identity fields are
// immutable; position, interactivity, and the step stamp are written by the
// control plane while the step loop reads them, so those go through the
// agent's own mutex. Agents never outlive their world.
type SimAgent struct {
	id         string
	stableID   uint64
	profileKey string

	mu          sync.Mutex
	interactive bool
	x, y        float64
	stepCount   uint64
}

func newSimAgent(profileKey string, x, y float64, interactive bool) *SimAgent {
	id := uuid.NewString()
	return &SimAgent{
		id:          id,
		stableID:    stableIDFor(id),
		profileKey:  profileKey,
		interactive: interactive,
		x:           x,
		y:           y,
	}
}

// stableIDFor derives the stagger identity from the agent id, so the same
// agent lands in the same stagger bucket across restarts.
func stableIDFor(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

func (a *SimAgent) ID() string         { return a.id }
func (a *SimAgent) StableID() uint64   { return a.stableID }
func (a *SimAgent) ProfileKey() string { return a.profileKey }

func (a *SimAgent) StepCount() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stepCount
}

func (a *SimAgent) Interactive() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.interactive
}

func (a *SimAgent) Position() (x, y float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.x, a.y
}

func (a *SimAgent) setStepCount(step uint64) {
	a.mu.Lock()
	a.stepCount = step
	a.mu.Unlock()
}

func (a *SimAgent) setInteractive(interactive bool) {
	a.mu.Lock()
	a.interactive = interactive
	a.mu.Unlock()
}

func (a *SimAgent) setPosition(x, y float64) {
	a.mu.Lock()
	a.x = x
	a.y = y
	a.mu.Unlock()
}
