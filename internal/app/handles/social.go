package handles

import "wildcore/internal/domain/behavior"

const (
	SocialID = "social"

	DefaultLonelinessPerStep = 0.002
	DefaultLonelinessMax     = 100.0

	// Social pressure changes slowly; checking every step buys nothing.
	socialTickInterval = 20
)

// SocialHandle tracks loneliness, a slowly accumulating pressure relieved by
// companionship signals the host writes into the record ("company" count).
type SocialHandle struct {
	behavior.BaseHandle
}

func (SocialHandle) ID() string { return SocialID }

func (SocialHandle) Supports(p *behavior.Profile) bool { return p.HasHandle(SocialID) }

func (SocialHandle) TickInterval() int { return socialTickInterval }

func (SocialHandle) Tick(a behavior.Agent, c behavior.Container, p *behavior.Profile) {
	rec := c.Record(SocialID)
	loneliness := rec.Float("loneliness", 0)
	max := p.FloatParam(SocialID, "loneliness_max", DefaultLonelinessMax)
	rate := p.FloatParam(SocialID, "loneliness_per_step", DefaultLonelinessPerStep)

	if rec.Int("company", 0) > 0 {
		// Companions present: pressure bleeds off at double rate.
		loneliness -= 2 * rate * float64(c.ElapsedSteps())
	} else {
		loneliness += rate * float64(c.ElapsedSteps())
	}
	if loneliness > max {
		loneliness = max
	}
	if loneliness < 0 {
		loneliness = 0
	}

	if loneliness == rec.Float("loneliness", 0) {
		return
	}
	out := rec.Clone()
	out.SetFloat("loneliness", loneliness)
	c.SetRecord(SocialID, out)
}
