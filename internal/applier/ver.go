package applier

import (
	"github.com/udisondev/unitbalance/internal/balance"
	"github.com/udisondev/unitbalance/internal/model"
)

// VisibleEventRadius scales how far turret projectile events are visible.
// Instant-hit projectiles also carry the weapon range factor, so the result is
// baseline × range × radius multiplier.
type VisibleEventRadius struct{}

func (VisibleEventRadius) Name() string { return "visible_event_radius" }

func (VisibleEventRadius) Apply(p *Pass) int {
	n := 0
	for _, t := range p.units() {
		name := t.DisplayName()
		m, ok := p.State.VisibleEventRadius.Lookup(name)
		if !ok {
			continue
		}
		for _, c := range t.Components() {
			if c.Kind() != model.KindVehicleTurret {
				continue
			}
			for _, f := range turretProjectileFields {
				pd, ok := c.Ref(f)
				if !ok || p.isSeen(pd) {
					continue
				}
				p.markSeen(pd)
				if p.scalePositive(onAsset(pd), "VisibleEventRadius", m*p.rangeFactor(pd, name, balance.SlotForField(f))) {
					n++
				}
			}
		}
	}
	return n
}

// rangeFactor returns the range multiplier an instant-hit projectile's event radius
// already carries, or 1 for ballistic projectiles.
func (p *Pass) rangeFactor(pd *model.Asset, unit string, slot balance.Slot) float64 {
	if r, ok := p.verRange[pd]; ok {
		return r
	}
	if instant, _ := model.GetBool(pd, "m_InstantHit"); !instant {
		return 1
	}
	return p.State.Range.Resolve(unit, slot)
}
