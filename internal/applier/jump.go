package applier

import (
	"github.com/udisondev/unitbalance/internal/model"
)

// Jump scales JumpSpeed on the first movement component that has one.
type Jump struct{}

func (Jump) Name() string { return "jump" }

func (Jump) Apply(p *Pass) int {
	n := 0
	for _, t := range p.units() {
		m, ok := p.State.JumpSpeed.Lookup(t.DisplayName())
		if !ok {
			continue
		}
		for _, c := range t.Components() {
			switch c.Kind() {
			case model.KindSoldier, model.KindPlayerMovement, model.KindFPSMovement:
			default:
				continue
			}
			if p.scalePositive(onTemplate(t, c), "JumpSpeed", m) {
				n++
				break
			}
		}
	}
	return n
}
