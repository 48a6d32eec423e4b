package applier

import (
	"github.com/udisondev/unitbalance/internal/model"
)

// TurnRadius scales VehicleWheeled.TurningCircleRadius.
type TurnRadius struct{}

func (TurnRadius) Name() string { return "turn_radius" }

func (TurnRadius) Apply(p *Pass) int {
	n := 0
	for _, t := range p.units() {
		m, ok := p.State.TurnRadius.Lookup(t.DisplayName())
		if !ok {
			continue
		}
		c, ok := t.FirstComponent(model.KindVehicleWheeled)
		if !ok {
			continue
		}
		if p.scalePositive(onTemplate(t, c), "TurningCircleRadius", m) {
			n++
		}
	}
	return n
}
