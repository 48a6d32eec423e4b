package applier

import (
	"github.com/udisondev/unitbalance/internal/model"
)

// Strafe scales lateral movement: StrafeSpeed on air vehicles, FlyMoveScaleSide on creatures.
type Strafe struct{}

func (Strafe) Name() string { return "strafe" }

func (Strafe) Apply(p *Pass) int {
	n := 0
	for _, t := range p.units() {
		m, ok := p.State.StrafeSpeed.Lookup(t.DisplayName())
		if !ok {
			continue
		}
		touched := false
		for _, c := range t.Components() {
			switch c.Kind() {
			case model.KindVehicleAir:
				if model.IsDeclared(c, "StrafeSpeed") {
					touched = p.scalePositive(onTemplate(t, c), "StrafeSpeed", m) || touched
				}
			case model.KindCreatureDecapod:
				touched = p.scalePositive(onTemplate(t, c), "FlyMoveScaleSide", m) || touched
			}
		}
		if touched {
			n++
		}
	}
	return n
}
