// Package dispatch decides, per agent per world step, whether to update
// fully, fast-forward accumulated time, or skip, and invokes the resolved
// handles accordingly.
package dispatch

import (
	"go.uber.org/zap"

	"wildcore/internal/app/component"
	"wildcore/internal/app/ports"
	"wildcore/internal/domain/behavior"
)

// Dispatcher drives one agent's container through a world step and through
// the save/load boundaries. It holds no per-agent state; the host calls it
// for every agent, single-threaded, inside each step.
type Dispatcher struct {
	Observers ports.ObserverLocator
	Metrics   ports.StepMetrics
	Log       *zap.Logger
	Config    Config
}

func (d Dispatcher) logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

// Step processes one agent for the current world step. Agents with no
// profile and no handles are skipped before any container work. A handle
// panic aborts the remaining handles for this agent this step only; the
// watermark is still stamped so the fault cannot wedge the agent into a
// permanent forced catch-up.
func (d Dispatcher) Step(c *component.Component) behavior.UpdateMode {
	c.RefreshIfNeeded()
	if !c.HasProfile() && len(c.Handles()) == 0 {
		return behavior.ModeSkip
	}

	agent := c.Agent()
	cfg := d.Config.withDefaults()

	in := ModeInput{
		Interactive:    agent.Interactive(),
		CurrentStep:    agent.StepCount(),
		LastUpdateStep: c.LastUpdateStep(),
		StableID:       agent.StableID(),
	}
	if d.Observers != nil {
		in.ObserverDistance, in.HasObserver = d.Observers.NearestObserverDistance(agent)
	}
	mode, reason := DetermineUpdateMode(in, cfg)

	if d.Metrics != nil {
		d.Metrics.RecordMode(mode)
	}
	if mode == behavior.ModeSkip {
		return mode
	}

	step := agent.StepCount()
	c.SetElapsedSteps(ElapsedSteps(step, c.LastUpdateStep(), cfg))
	c.SetMode(mode)
	c.SetWakeReason(reason)

	d.runHandles(c, step)
	c.MarkUpdated(step)
	return mode
}

func (d Dispatcher) runHandles(c *component.Component, step uint64) {
	agent := c.Agent()
	profile := c.Profile()
	current := ""
	defer func() {
		if r := recover(); r != nil {
			d.logger().Error("handle tick panicked",
				zap.String("agent_id", agent.ID()),
				zap.String("handle_id", current),
				zap.Uint64("step", step),
				zap.Any("panic", r))
			if d.Metrics != nil {
				d.Metrics.RecordHandleFault(current)
			}
		}
	}()
	for _, h := range c.Handles() {
		interval := h.TickInterval()
		if interval < 1 {
			interval = 1
		}
		if step%uint64(interval) != 0 {
			continue
		}
		current = h.ID()
		h.Tick(agent, c, profile)
	}
}

// OnSave collects every handle's written record into a snapshot. Invoked by
// the host's persistence lifecycle, independent of the step scheduler.
func (d Dispatcher) OnSave(c *component.Component) ports.BehaviorSnapshot {
	c.RefreshIfNeeded()
	agent := c.Agent()
	snapshot := ports.BehaviorSnapshot{
		AgentID:        agent.ID(),
		Records:        make(map[string]behavior.Record),
		LastUpdateStep: c.LastUpdateStep(),
	}
	if !c.HasProfile() && len(c.Handles()) == 0 {
		return snapshot
	}
	profile := c.Profile()
	for _, h := range c.Handles() {
		rec := c.Record(h.ID())
		h.WriteState(agent, c, profile, rec)
		if !rec.IsEmpty() {
			snapshot.Records[h.ID()] = rec.Clone()
		}
	}
	return snapshot
}

// OnLoad pushes a persisted snapshot back through the container and stamps
// the watermark at the current step: freshly loaded agents must not be
// treated as dormant for the whole unloaded interval.
func (d Dispatcher) OnLoad(c *component.Component, snapshot ports.BehaviorSnapshot) {
	c.RefreshIfNeeded()
	agent := c.Agent()
	if c.HasProfile() || len(c.Handles()) > 0 {
		profile := c.Profile()
		for _, h := range c.Handles() {
			rec, ok := snapshot.Records[h.ID()]
			if !ok {
				continue
			}
			c.SetRecord(h.ID(), rec.Clone())
			h.ReadState(agent, c, profile, c.Record(h.ID()))
		}
	}
	c.MarkUpdated(agent.StepCount())
}

// OverrideFoodCheck fans the host's edibility query out to every handle in
// invocation order, threading the running value; the last handle wins.
func (d Dispatcher) OverrideFoodCheck(c *component.Component, item string, original bool) bool {
	c.RefreshIfNeeded()
	if !c.HasProfile() && len(c.Handles()) == 0 {
		return original
	}
	agent := c.Agent()
	profile := c.Profile()
	value := original
	for _, h := range c.Handles() {
		value = h.OverrideFoodCheck(agent, c, profile, item, value)
	}
	return value
}
