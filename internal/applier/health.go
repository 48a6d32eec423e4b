package applier

import (
	"github.com/udisondev/unitbalance/internal/model"
	"github.com/udisondev/unitbalance/internal/override"
)

var healthFields = []string{"Health", "MaxHealth", "m_MaxHealth"}

// Health scales the first positive health field of DamageManagerData.
type Health struct{}

func (Health) Name() string { return "health" }

func (Health) Apply(p *Pass) int {
	n := 0
	for _, t := range p.units() {
		m, ok := p.State.Health.Lookup(t.DisplayName())
		if !ok {
			continue
		}
		dm := t.DamageManager()
		if dm == nil {
			p.logger().Debug("no damage manager", "unit", t.DisplayName())
			continue
		}
		d := dest{
			obj:    dm,
			target: override.AssetTarget(string(model.AssetDamageManager) + "_" + dm.Name()),
			family: override.FamilyHealth,
		}
		for _, f := range healthFields {
			o, ok := p.baseFloat(dm, f)
			if !ok || o <= 0 {
				continue
			}
			if p.set(d, f, model.Float(o*m)) {
				n++
			}
			break
		}
	}
	return n
}
