package handles

import "wildcore/internal/domain/behavior"

// RegisterBuiltin registers the built-in handles. Registration order is tick
// order and also assigns the container fast-path slots, so the
// highest-traffic handles go first.
func RegisterBuiltin(reg *behavior.Registry) {
	reg.Register(HungerHandle{})
	reg.Register(EnergyHandle{})
	reg.Register(AgeHandle{})
	reg.Register(SocialHandle{})
	reg.Register(ConditionHandle{})
	reg.Register(ProductionHandle{})
}
