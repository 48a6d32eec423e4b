package applier

import (
	"github.com/udisondev/unitbalance/internal/model"
)

// ShrimpUnit is the template targeted by the shrimp_disable_aim toggle.
const ShrimpUnit = "Shrimp"

// Toggles applies boolean feature switches.
type Toggles struct{}

func (Toggles) Name() string { return "toggles" }

func (Toggles) Apply(p *Pass) int {
	if !p.State.ShrimpDisableAim {
		return 0
	}
	n := 0
	for _, t := range p.units() {
		if t.DisplayName() != ShrimpUnit {
			continue
		}
		for _, c := range t.Components() {
			var ok bool
			switch c.Kind() {
			case model.KindCreatureDecapod:
				ok = p.set(direct(c), "AIMeleeDistance", model.Float(0))
			case model.KindSensor:
				ok = p.set(direct(c), "TargetingDistance", model.Float(0))
			case model.KindAIAiming:
				ok = p.set(direct(c), "AimPaused", model.Bool(true))
			}
			if ok {
				n++
			}
		}
	}
	return n
}
