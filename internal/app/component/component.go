// Package component holds the per-agent behavior state container: handle
// records, lazy initialization bookkeeping, validators, change listeners,
// version counters and the advisory dependency graph.
package component

import (
	"go.uber.org/zap"

	"wildcore/internal/app/ports"
	"wildcore/internal/domain/behavior"
)

// Validator checks a record before SetRecord accepts it. A non-nil error
// rejects the write: the value is not stored, no version bump happens and no
// listener fires.
type Validator interface {
	Validate(handleID string, rec behavior.Record) error
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(handleID string, rec behavior.Record) error

func (f ValidatorFunc) Validate(handleID string, rec behavior.Record) error {
	return f(handleID, rec)
}

// ChangeListener observes accepted record replacements. old is nil when the
// handle had no record before.
type ChangeListener func(handleID string, old, new behavior.Record)

const noGeneration = ^uint64(0)

// Component is one agent's behavior state container. It is exclusively owned
// by that agent's lifecycle wrapper; nothing here is safe for concurrent use.
// The simulation is single-threaded per world step.
type Component struct {
	agent    behavior.Agent
	registry *behavior.Registry
	profiles ports.ProfileSource
	log      *zap.Logger
	metrics  ports.StepMetrics

	profile  *behavior.Profile
	handles  []behavior.Handle
	override []behavior.Handle

	handleData  map[string]behavior.Record
	recordCache map[string]behavior.Record
	fastSlots   [behavior.FastSlots]behavior.Record
	initialized map[string]struct{}

	validators map[string]Validator
	listeners  []*listenerEntry
	deps       map[string][]string

	versions          map[string]uint64
	componentVersion  uint64
	profileGeneration uint64

	cacheStep      uint64
	cacheStepValid bool

	lastUpdateStep int64
	elapsedSteps   uint64
	mode           behavior.UpdateMode
	wakeReason     string
}

type listenerEntry struct {
	fn ChangeListener
}

// New builds a container and resolves it against the current generation.
func New(agent behavior.Agent, registry *behavior.Registry, profiles ports.ProfileSource, log *zap.Logger) *Component {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Component{
		agent:             agent,
		registry:          registry,
		profiles:          profiles,
		log:               log,
		handleData:        make(map[string]behavior.Record),
		recordCache:       make(map[string]behavior.Record),
		initialized:       make(map[string]struct{}),
		validators:        make(map[string]Validator),
		deps:              make(map[string][]string),
		versions:          make(map[string]uint64),
		profileGeneration: noGeneration,
		lastUpdateStep:    -1,
		mode:              behavior.ModeActive,
		wakeReason:        "unknown",
		elapsedSteps:      1,
	}
	c.Refresh()
	return c
}

// SetMetrics attaches an optional metrics recorder.
func (c *Component) SetMetrics(m ports.StepMetrics) {
	c.metrics = m
}

func (c *Component) Agent() behavior.Agent {
	return c.agent
}

func (c *Component) HasProfile() bool {
	return c.profile != nil
}

func (c *Component) Profile() *behavior.Profile {
	return c.profile
}

// Handles is the resolved invocation list: profile handles merged with the
// per-agent override list, override wins on id collision.
func (c *Component) Handles() []behavior.Handle {
	return c.handles
}

// SetOverrideHandles declares an explicit per-agent handle list that takes
// precedence over profile resolution for colliding ids. Triggers an
// immediate re-resolve.
func (c *Component) SetOverrideHandles(handles []behavior.Handle) {
	c.override = handles
	c.Refresh()
}

// RefreshIfNeeded re-resolves when the global configuration generation moved
// and rolls the per-step caches when the agent entered a new step. Cheap when
// nothing changed.
func (c *Component) RefreshIfNeeded() {
	if c.profileGeneration != c.profiles.Generation() {
		c.Refresh()
	}
	step := c.agent.StepCount()
	if !c.cacheStepValid || c.cacheStep != step {
		c.cacheStep = step
		c.cacheStepValid = true
		clear(c.recordCache)
		c.fastSlots = [behavior.FastSlots]behavior.Record{}
	}
}

// Refresh re-resolves the handle list against the current generation.
//
// All handle data and initialization bookkeeping is dropped: a reload is a
// hard reset, matching the source system. Surviving handles re-run
// Initialize exactly once on next access. Per-handle version counters
// survive for ids that persist; new ids are seeded at the bumped global
// version.
func (c *Component) Refresh() {
	c.profileGeneration = c.profiles.Generation()

	profile, ok := c.profiles.ProfileFor(c.agent.ProfileKey())
	if !ok {
		profile = nil
	}
	c.profile = profile
	c.handles = behavior.MergeHandles(c.registry.Resolve(profile), c.override)

	c.componentVersion++

	next := make(map[string]uint64, len(c.handles))
	for _, h := range c.handles {
		if v, exists := c.versions[h.ID()]; exists {
			next[h.ID()] = v
		} else {
			next[h.ID()] = c.componentVersion
		}
	}
	c.versions = next

	if len(c.handleData) > 0 {
		// Live data discarded on reload; surfaced, not silently fixed.
		c.log.Warn("refresh discarded live handle data",
			zap.String("agent_id", c.agent.ID()),
			zap.Int("records", len(c.handleData)))
	}
	clear(c.handleData)
	clear(c.recordCache)
	c.fastSlots = [behavior.FastSlots]behavior.Record{}
	clear(c.initialized)

	clear(c.deps)
	if profile != nil {
		for id, required := range profile.HandleDependencies {
			if len(required) > 0 {
				c.deps[id] = append([]string(nil), required...)
			}
		}
	}

	if c.metrics != nil {
		c.metrics.RecordRefresh()
	}
}

// Record returns the handle's mutable state record, creating it on first
// access and running the handle's Initialize exactly once. The reference is
// cached for the remainder of the step: a fixed array slot for the hottest
// handle ids, a map cache for the rest.
func (c *Component) Record(id string) behavior.Record {
	c.InitializeHandle(id)

	if slot := c.registry.SlotIndex(id); slot >= 0 {
		if rec := c.fastSlots[slot]; rec != nil {
			return rec
		}
		rec := c.recordFor(id)
		c.fastSlots[slot] = rec
		return rec
	}

	if rec, ok := c.recordCache[id]; ok {
		return rec
	}
	rec := c.recordFor(id)
	c.recordCache[id] = rec
	return rec
}

func (c *Component) recordFor(id string) behavior.Record {
	rec, ok := c.handleData[id]
	if !ok {
		rec = behavior.NewRecord()
		c.handleData[id] = rec
	}
	return rec
}

// SetRecord validates, compares by value, stores, bumps the handle version
// and notifies listeners. A rejected write is logged and dropped without
// mutation; the caller observes unchanged state rather than an error.
func (c *Component) SetRecord(id string, rec behavior.Record) {
	if v, ok := c.validators[id]; ok {
		if err := v.Validate(id, rec); err != nil {
			c.log.Warn("record validation failed",
				zap.String("agent_id", c.agent.ID()),
				zap.String("handle_id", id),
				zap.Error(err))
			if c.metrics != nil {
				c.metrics.RecordValidationReject(id)
			}
			return
		}
	}

	old, existed := c.handleData[id]
	changed := !existed || !old.Equal(rec)

	c.handleData[id] = rec
	if slot := c.registry.SlotIndex(id); slot >= 0 {
		c.fastSlots[slot] = nil
	}
	delete(c.recordCache, id)

	if !changed {
		return
	}
	c.versions[id]++
	var oldForListeners behavior.Record
	if existed {
		oldForListeners = old
	}
	c.notifyListeners(id, oldForListeners, rec)
}

func (c *Component) notifyListeners(id string, old, new behavior.Record) {
	for _, entry := range c.listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.log.Error("change listener panicked",
						zap.String("agent_id", c.agent.ID()),
						zap.String("handle_id", id),
						zap.Any("panic", r))
				}
			}()
			entry.fn(id, old, new)
		}()
	}
}

// AddListener registers a change listener and returns its removal func.
func (c *Component) AddListener(l ChangeListener) (remove func()) {
	if l == nil {
		return func() {}
	}
	entry := &listenerEntry{fn: l}
	c.listeners = append(c.listeners, entry)
	return func() {
		for i, e := range c.listeners {
			if e == entry {
				c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

// InitializeHandle runs a handle's one-time setup. Idempotent: the handle is
// marked initialized before Initialize runs, so a re-entrant Record call
// during initialization does not recurse.
func (c *Component) InitializeHandle(id string) {
	if _, done := c.initialized[id]; done {
		return
	}
	var handle behavior.Handle
	for _, h := range c.handles {
		if h.ID() == id {
			handle = h
			break
		}
	}
	if handle == nil {
		// Not resolved for this agent; plain scratch access is fine.
		return
	}
	c.initialized[id] = struct{}{}

	defer func() {
		if r := recover(); r != nil {
			c.log.Error("handle initialize panicked",
				zap.String("agent_id", c.agent.ID()),
				zap.String("handle_id", id),
				zap.Any("panic", r))
			if c.metrics != nil {
				c.metrics.RecordHandleFault(id)
			}
		}
	}()
	handle.Initialize(c.agent, c, c.profile)
}

func (c *Component) IsHandleInitialized(id string) bool {
	_, ok := c.initialized[id]
	return ok
}

// ClearInitializedHandles allows handles to re-run Initialize on next
// access. Test hook.
func (c *Component) ClearInitializedHandles() {
	clear(c.initialized)
}

func (c *Component) RegisterValidator(id string, v Validator) {
	if v == nil {
		return
	}
	c.validators[id] = v
}

func (c *Component) UnregisterValidator(id string) {
	delete(c.validators, id)
}

// ValidateHandle re-checks a handle's current record. True when no
// validator is registered.
func (c *Component) ValidateHandle(id string) bool {
	v, ok := c.validators[id]
	if !ok {
		return true
	}
	rec, ok := c.handleData[id]
	if !ok {
		rec = behavior.NewRecord()
	}
	return v.Validate(id, rec) == nil
}

// ValidateAll returns handle id -> error message for every failing
// validator. Empty when everything passes.
func (c *Component) ValidateAll() map[string]string {
	errors := make(map[string]string)
	for id, v := range c.validators {
		rec, ok := c.handleData[id]
		if !ok {
			rec = behavior.NewRecord()
		}
		if err := v.Validate(id, rec); err != nil {
			errors[id] = err.Error()
		}
	}
	return errors
}

// AddDependency declares that handle id requires requiredID to be resolved.
func (c *Component) AddDependency(id, requiredID string) {
	c.deps[id] = append(c.deps[id], requiredID)
}

// HasUnmetDependencies reports whether any declared dependency of id is
// missing from the resolved handle list. Advisory: the container never
// skips or removes a handle over this; each handle checks and
// short-circuits on its own.
func (c *Component) HasUnmetDependencies(id string) bool {
	required := c.deps[id]
	if len(required) == 0 {
		return false
	}
	for _, dep := range required {
		if !c.hasHandle(dep) {
			c.log.Warn("handle dependency unmet",
				zap.String("agent_id", c.agent.ID()),
				zap.String("handle_id", id),
				zap.String("requires", dep))
			return true
		}
	}
	return false
}

func (c *Component) hasHandle(id string) bool {
	for _, h := range c.handles {
		if h.ID() == id {
			return true
		}
	}
	return false
}

func (c *Component) Dependencies(id string) []string {
	required := c.deps[id]
	if len(required) == 0 {
		return nil
	}
	return append([]string(nil), required...)
}

// ComponentVersion is the global counter, bumped on every refresh.
func (c *Component) ComponentVersion() uint64 {
	return c.componentVersion
}

// HandleVersion is bumped on every accepted, value-changing SetRecord.
func (c *Component) HandleVersion(id string) uint64 {
	return c.versions[id]
}

// IsHandleOutdated supports external caches keyed off "changed since I last
// read". An unknown handle id counts as outdated.
func (c *Component) IsHandleOutdated(id string, knownVersion uint64) bool {
	current, ok := c.versions[id]
	if !ok {
		return true
	}
	return current > knownVersion
}

func (c *Component) ProfileGeneration() uint64 {
	return c.profileGeneration
}

func (c *Component) LastUpdateStep() int64 {
	return c.lastUpdateStep
}

// MarkUpdated stamps the scheduling watermark after a processed step.
func (c *Component) MarkUpdated(step uint64) {
	c.lastUpdateStep = int64(step)
}

func (c *Component) ElapsedSteps() uint64 {
	return c.elapsedSteps
}

func (c *Component) SetElapsedSteps(elapsed uint64) {
	c.elapsedSteps = elapsed
}

func (c *Component) Mode() behavior.UpdateMode {
	return c.mode
}

func (c *Component) SetMode(mode behavior.UpdateMode) {
	c.mode = mode
}

func (c *Component) WakeReason() string {
	return c.wakeReason
}

func (c *Component) SetWakeReason(reason string) {
	c.wakeReason = reason
}
