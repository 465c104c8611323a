package handles

import "wildcore/internal/domain/behavior"

const (
	ProductionID = "production"

	DefaultGrowthPerStep = 0.01
	productionReadyAt    = 100.0
)

// ProductionHandle grows a harvestable resource (wool-style) gated on body
// condition: a starved animal grows nothing. Dependencies on social and
// condition come from the profile; unmet dependencies short-circuit the tick
// but never remove the handle from the active list.
type ProductionHandle struct {
	behavior.BaseHandle
}

func (ProductionHandle) ID() string { return ProductionID }

func (ProductionHandle) Supports(p *behavior.Profile) bool { return p.HasHandle(ProductionID) }

func (ProductionHandle) Tick(a behavior.Agent, c behavior.Container, p *behavior.Profile) {
	if c.HasUnmetDependencies(ProductionID) {
		return
	}
	rec := c.Record(ProductionID)
	if rec.Bool("ready", false) {
		return
	}

	condition := c.Record(ConditionID).Float("value", 1.0)
	rate := p.FloatParam(ProductionID, "growth_per_step", DefaultGrowthPerStep)
	progress := rec.Float("progress", 0) + rate*condition*float64(c.ElapsedSteps())

	ready := false
	if progress >= productionReadyAt {
		progress = productionReadyAt
		ready = true
	}

	out := rec.Clone()
	out.SetFloat("progress", progress)
	if ready {
		out.SetBool("ready", true)
	}
	c.SetRecord(ProductionID, out)
}

// WriteState keeps only durable fields; transient scratch the host may have
// written (e.g. a pending-harvest marker) stays out of saves.
func (ProductionHandle) WriteState(a behavior.Agent, c behavior.Container, p *behavior.Profile, rec behavior.Record) {
	delete(rec, "pending_harvest")
}
