// Package status reports scheduler-wide runtime facts.
package status

import "context"

// ProfileLister is the read side of the profile source the status page
// needs; yamlfs.Source satisfies it.
type ProfileLister interface {
	Generation() uint64
	Keys() []string
}

// Population is the world-side view: how many agents are hosted and what
// step the loop is on.
type Population interface {
	AgentCount() int
	CurrentStep() uint64
}

type UseCase struct {
	Profiles   ProfileLister
	Population Population
}

func (u UseCase) Execute(_ context.Context) (Response, error) {
	resp := Response{}
	if u.Profiles != nil {
		resp.ProfileGeneration = u.Profiles.Generation()
		resp.ProfileKeys = u.Profiles.Keys()
	}
	if u.Population != nil {
		resp.AgentCount = u.Population.AgentCount()
		resp.CurrentStep = u.Population.CurrentStep()
	}
	return resp, nil
}
