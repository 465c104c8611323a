package handles

import "wildcore/internal/domain/behavior"

const (
	ConditionID = "condition"

	DefaultConditionBlend = 0.1
)

// ConditionHandle derives body condition (0..1) from the hunger handle's
// record. The cross-handle read is declared as a dependency so the coupling
// is queryable; when hunger is not resolved for this agent the handle
// short-circuits, per the advisory dependency model.
type ConditionHandle struct {
	behavior.BaseHandle
}

func (ConditionHandle) ID() string { return ConditionID }

func (ConditionHandle) Supports(p *behavior.Profile) bool { return p.HasHandle(ConditionID) }

func (ConditionHandle) Initialize(a behavior.Agent, c behavior.Container, p *behavior.Profile) {
	c.AddDependency(ConditionID, HungerID)
	rec := c.Record(ConditionID)
	if _, ok := rec["value"]; !ok {
		rec.SetFloat("value", 1.0)
	}
}

func (ConditionHandle) Tick(a behavior.Agent, c behavior.Container, p *behavior.Profile) {
	if c.HasUnmetDependencies(ConditionID) {
		return
	}
	rec := c.Record(ConditionID)
	hunger := c.Record(HungerID).Float("value", DefaultHungerInitial)

	target := hunger / DefaultHungerInitial
	if target > 1 {
		target = 1
	}
	if target < 0 {
		target = 0
	}

	blend := p.FloatParam(ConditionID, "blend", DefaultConditionBlend)
	value := rec.Float("value", 1.0)
	next := value + (target-value)*blend
	if next == value {
		return
	}
	out := rec.Clone()
	out.SetFloat("value", next)
	c.SetRecord(ConditionID, out)
}
