package applier

import (
	"github.com/udisondev/unitbalance/internal/model"
)

// Dispenser sets the global dispense timeout on every VehicleDispenser.
type Dispenser struct{}

func (Dispenser) Name() string { return "dispenser" }

func (Dispenser) Apply(p *Pass) int {
	timeout := p.State.DispenseTimeout
	if timeout < 0 {
		return 0
	}
	n := 0
	for _, t := range p.Templates {
		for _, c := range t.Components() {
			if c.Kind() != model.KindVehicleDispenser {
				continue
			}
			if p.set(onTemplate(t, c), "DispenseTimeout", model.Float(timeout)) {
				n++
			}
		}
	}
	return n
}
