// Package handles contains the built-in trait handles. Each one is a thin
// consumer of the behavior contract: stateless, reading and writing only its
// own record slice unless a cross-handle read is declared through the
// dependency graph.
package handles

import "wildcore/internal/domain/behavior"

const (
	HungerID = "hunger"

	DefaultHungerInitial      = 100.0
	DefaultHungerDecayPerStep = 0.01
	DefaultStarvingBelow      = 10.0

	// CatchUpHungerFloor is the safe boundary for fast-forwarded decay:
	// a continuously simulated agent could have found food or been fed,
	// so a catch-up never starves it outright. The shortfall is carried
	// in the record and drained on later active steps.
	CatchUpHungerFloor = 1.0
)

type HungerHandle struct {
	behavior.BaseHandle
}

func (HungerHandle) ID() string { return HungerID }

func (HungerHandle) Supports(p *behavior.Profile) bool { return p.HasHandle(HungerID) }

func (HungerHandle) Initialize(a behavior.Agent, c behavior.Container, p *behavior.Profile) {
	rec := c.Record(HungerID)
	if _, ok := rec["value"]; !ok {
		rec.SetFloat("value", p.FloatParam(HungerID, "initial", DefaultHungerInitial))
	}
}

func (HungerHandle) Tick(a behavior.Agent, c behavior.Container, p *behavior.Profile) {
	rec := c.Record(HungerID)
	rate := p.FloatParam(HungerID, "decay_per_step", DefaultHungerDecayPerStep)
	value := rec.Float("value", DefaultHungerInitial)
	deficit := rec.Float("deficit", 0)

	next := value - rate*float64(c.ElapsedSteps())
	if c.Mode() == behavior.ModeCatchUp {
		if next < CatchUpHungerFloor {
			deficit += CatchUpHungerFloor - next
			next = CatchUpHungerFloor
		}
	} else {
		// Active steps pay down carried catch-up shortfall one rate
		// unit at a time, so the clamp error stays bounded.
		if deficit > 0 {
			pay := rate
			if pay > deficit {
				pay = deficit
			}
			deficit -= pay
			next -= pay
		}
		if next < 0 {
			next = 0
		}
	}

	if next == value && deficit == rec.Float("deficit", 0) {
		return
	}
	out := rec.Clone()
	out.SetFloat("value", next)
	if deficit > 0 {
		out.SetFloat("deficit", deficit)
	} else {
		delete(out, "deficit")
	}
	c.SetRecord(HungerID, out)
}

// OverrideFoodCheck widens edibility when starving: below the threshold the
// agent will take any offered item as food.
func (HungerHandle) OverrideFoodCheck(a behavior.Agent, c behavior.Container, p *behavior.Profile, item string, current bool) bool {
	rec := c.Record(HungerID)
	if rec.Float("value", DefaultHungerInitial) < p.FloatParam(HungerID, "starving_below", DefaultStarvingBelow) {
		return true
	}
	return current
}
