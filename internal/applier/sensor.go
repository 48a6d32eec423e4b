package applier

import (
	"github.com/udisondev/unitbalance/internal/balance"
	"github.com/udisondev/unitbalance/internal/model"
)

// TargetDistance sets Sensor.TargetingDistance to the configured absolute.
type TargetDistance struct{}

func (TargetDistance) Name() string { return "target_distance" }

func (TargetDistance) Apply(p *Pass) int {
	return p.sensorAbsolute(p.State.TargetDistance, "TargetingDistance")
}

// FowDistance sets Sensor.FogOfWarViewDistance to the configured absolute.
type FowDistance struct{}

func (FowDistance) Name() string { return "fow_distance" }

func (FowDistance) Apply(p *Pass) int {
	return p.sensorAbsolute(p.State.FowDistance, "FogOfWarViewDistance")
}

func (p *Pass) sensorAbsolute(tbl balance.Absolute, attr string) int {
	n := 0
	for _, t := range p.units() {
		v, ok := tbl.Lookup(t.DisplayName())
		if !ok {
			continue
		}
		c, ok := t.FirstComponent(model.KindSensor)
		if !ok {
			p.logger().Debug("no sensor", "unit", t.DisplayName(), "attr", attr)
			continue
		}
		if p.set(onTemplate(t, c), attr, model.Float(v)) {
			n++
		}
	}
	return n
}
