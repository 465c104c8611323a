package handles

import "wildcore/internal/domain/behavior"

const (
	EnergyID = "energy"

	DefaultEnergyInitial      = 100.0
	DefaultEnergyDrainPerStep = 0.005
	DefaultEnergyMax          = 100.0
)

// EnergyHandle drains slowly while awake and recovers while the agent is
// dormant: skipped time is treated as rest, so catch-up integrates recovery
// rather than drain. Zero energy is exhaustion, not death, so a plain clamp
// suffices and no catch-up floor is needed.
type EnergyHandle struct {
	behavior.BaseHandle
}

func (EnergyHandle) ID() string { return EnergyID }

func (EnergyHandle) Supports(p *behavior.Profile) bool { return p.HasHandle(EnergyID) }

func (EnergyHandle) Initialize(a behavior.Agent, c behavior.Container, p *behavior.Profile) {
	rec := c.Record(EnergyID)
	if _, ok := rec["value"]; !ok {
		rec.SetFloat("value", p.FloatParam(EnergyID, "initial", DefaultEnergyInitial))
	}
}

func (EnergyHandle) Tick(a behavior.Agent, c behavior.Container, p *behavior.Profile) {
	rec := c.Record(EnergyID)
	value := rec.Float("value", DefaultEnergyInitial)
	max := p.FloatParam(EnergyID, "max", DefaultEnergyMax)

	var next float64
	if c.Mode() == behavior.ModeCatchUp {
		recovery := p.FloatParam(EnergyID, "recovery_per_step", DefaultEnergyDrainPerStep)
		next = value + recovery*float64(c.ElapsedSteps())
	} else {
		drain := p.FloatParam(EnergyID, "drain_per_step", DefaultEnergyDrainPerStep)
		next = value - drain
	}
	if next > max {
		next = max
	}
	if next < 0 {
		next = 0
	}
	if next == value {
		return
	}
	out := rec.Clone()
	out.SetFloat("value", next)
	c.SetRecord(EnergyID, out)
}
