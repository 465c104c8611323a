package dispatch

// Scheduling bounds. ActiveDistance is the observer radius inside which an
// agent is simulated every step. StaggerInterval spreads the due-steps of
// distant agents so they do not wake in the same step. MaxSleepSteps is the
// hard consistency ceiling: no agent goes unexamined longer than this, and
// no single catch-up integrates more than this many steps.
const (
	ActiveDistance  = 64.0
	StaggerInterval = 20
	MaxSleepSteps   = 1200
)

type Config struct {
	ActiveDistance  float64
	StaggerInterval uint64
	MaxSleepSteps   uint64
}

func DefaultConfig() Config {
	return Config{
		ActiveDistance:  ActiveDistance,
		StaggerInterval: StaggerInterval,
		MaxSleepSteps:   MaxSleepSteps,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.ActiveDistance <= 0 {
		c.ActiveDistance = def.ActiveDistance
	}
	if c.StaggerInterval == 0 {
		c.StaggerInterval = def.StaggerInterval
	}
	if c.MaxSleepSteps == 0 {
		c.MaxSleepSteps = def.MaxSleepSteps
	}
	return c
}
