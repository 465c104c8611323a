package ports

import "wildcore/internal/domain/behavior"

// ObserverLocator answers the scheduler's proximity question. The second
// return is false when no observer exists at all.
type ObserverLocator interface {
	NearestObserverDistance(a behavior.Agent) (float64, bool)
}
