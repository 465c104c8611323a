package handles

import "wildcore/internal/domain/behavior"

const (
	AgeID = "age"

	DefaultAdultAtSteps = 24000
)

// AgeHandle is a pure step counter and the cleanest fast-forward case: age
// advances by the full elapsed count, and a maturity threshold crossed
// during dormancy takes effect on the wake step.
type AgeHandle struct {
	behavior.BaseHandle
}

func (AgeHandle) ID() string { return AgeID }

func (AgeHandle) Supports(p *behavior.Profile) bool { return p.HasHandle(AgeID) }

func (AgeHandle) Tick(a behavior.Agent, c behavior.Container, p *behavior.Profile) {
	rec := c.Record(AgeID)
	steps := rec.Int("steps", 0) + int64(c.ElapsedSteps())
	adult := rec.Bool("adult", false)

	out := rec.Clone()
	out.SetInt("steps", steps)
	if !adult && steps >= p.IntParam(AgeID, "adult_at", DefaultAdultAtSteps) {
		out.SetBool("adult", true)
	}
	c.SetRecord(AgeID, out)
}

func (AgeHandle) ReadState(a behavior.Agent, c behavior.Container, p *behavior.Profile, rec behavior.Record) {
	if rec.Int("steps", 0) < 0 {
		rec.SetInt("steps", 0)
	}
}
