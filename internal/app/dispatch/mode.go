package dispatch

import "wildcore/internal/domain/behavior"

// Wake reasons, set on the container for handles that care why the agent is
// being processed this step.
const (
	WakeInteractive = "interactive"
	WakeObserver    = "observer"
	WakeForced      = "forced"
	WakeStagger     = "stagger"
)

// ModeInput is everything the mode decision depends on. The decision is a
// pure function of this value.
type ModeInput struct {
	Interactive      bool
	HasObserver      bool
	ObserverDistance float64
	CurrentStep      uint64
	// LastUpdateStep is -1 when the agent has never been processed.
	LastUpdateStep int64
	StableID       uint64
}

// DetermineUpdateMode implements the per-step state machine:
//
//  1. interactive control -> Active
//  2. observer within ActiveDistance -> Active
//  3. elapsed >= MaxSleepSteps -> CatchUp, regardless of stagger phase
//  4. stagger formula due -> CatchUp, else Skip
func DetermineUpdateMode(in ModeInput, cfg Config) (behavior.UpdateMode, string) {
	cfg = cfg.withDefaults()

	if in.Interactive {
		return behavior.ModeActive, WakeInteractive
	}
	if in.HasObserver && in.ObserverDistance <= cfg.ActiveDistance {
		return behavior.ModeActive, WakeObserver
	}

	if rawElapsed(in.CurrentStep, in.LastUpdateStep) >= cfg.MaxSleepSteps {
		return behavior.ModeCatchUp, WakeForced
	}

	if in.CurrentStep%cfg.StaggerInterval == in.StableID%cfg.StaggerInterval {
		return behavior.ModeCatchUp, WakeStagger
	}
	return behavior.ModeSkip, ""
}

// ElapsedSteps is the step count handed to handles: the true gap since the
// last processed step, clamped to MaxSleepSteps so a single fast-forward is
// bounded no matter how long the agent was dormant.
func ElapsedSteps(currentStep uint64, lastUpdateStep int64, cfg Config) uint64 {
	cfg = cfg.withDefaults()
	elapsed := rawElapsed(currentStep, lastUpdateStep)
	if elapsed > cfg.MaxSleepSteps {
		elapsed = cfg.MaxSleepSteps
	}
	return elapsed
}

func rawElapsed(currentStep uint64, lastUpdateStep int64) uint64 {
	if lastUpdateStep < 0 {
		return 1
	}
	last := uint64(lastUpdateStep)
	if currentStep <= last {
		// Clock went backwards or stamped this step already; safe default.
		return 1
	}
	return currentStep - last
}
